package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeAPI struct {
	puts     []*s3.PutObjectInput
	body     string
	deletes  []string
	headErr  error
	putErr   error
	presigns []time.Duration
}

func (f *fakeAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeAPI) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.presigns = append(f.presigns, opts.Expires)
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + *params.Bucket + "/" + *params.Key}, nil
}

func TestPutForwardsContentTypeAndLength(t *testing.T) {
	api := &fakeAPI{}
	client := newWithAPI(api, api, "gallery", "https://cdn.example", ReadOptions{})

	if err := client.Put(context.Background(), "media/a.png", "image/png", strings.NewReader("png!"), 4); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if len(api.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(api.puts))
	}
	put := api.puts[0]
	if *put.Bucket != "gallery" || *put.Key != "media/a.png" || *put.ContentType != "image/png" || *put.ContentLength != 4 {
		t.Fatalf("unexpected put input %+v", put)
	}
	if api.body != "png!" {
		t.Fatalf("unexpected body %q", api.body)
	}
}

func TestPutWrapsErrors(t *testing.T) {
	api := &fakeAPI{putErr: errors.New("denied")}
	client := newWithAPI(api, api, "gallery", "https://cdn.example", ReadOptions{})
	if err := client.Put(context.Background(), "k", "image/png", strings.NewReader(""), 0); err == nil {
		t.Fatal("expected put error")
	}
}

func TestReadURLPublicAndSigned(t *testing.T) {
	api := &fakeAPI{}
	public := newWithAPI(api, api, "gallery", "https://cdn.example/", ReadOptions{})
	u, err := public.ReadURL(context.Background(), "media/my photo.jpg")
	if err != nil {
		t.Fatalf("ReadURL returned error: %v", err)
	}
	if u != "https://cdn.example/media/my%20photo.jpg" {
		t.Fatalf("unexpected public url %q", u)
	}

	signed := newWithAPI(api, api, "gallery", "", ReadOptions{Signed: true, Expiry: 10 * time.Minute})
	u, err = signed.ReadURL(context.Background(), "media/a.jpg")
	if err != nil {
		t.Fatalf("ReadURL returned error: %v", err)
	}
	if u != "https://signed.example/gallery/media/a.jpg" {
		t.Fatalf("unexpected signed url %q", u)
	}
	if len(api.presigns) != 1 || api.presigns[0] != 10*time.Minute {
		t.Fatalf("expected presign expiry to be forwarded, got %v", api.presigns)
	}
}

func TestDeleteAndPing(t *testing.T) {
	api := &fakeAPI{}
	client := newWithAPI(api, api, "gallery", "https://cdn.example", ReadOptions{})
	if err := client.Delete(context.Background(), "media/a.jpg"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(api.deletes) != 1 || api.deletes[0] != "media/a.jpg" {
		t.Fatalf("unexpected deletes %v", api.deletes)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	api.headErr = errors.New("no such bucket")
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}
