package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}

func staticToken() *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "token", time.Now().Add(time.Hour), nil
	}}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		httpClient:  srv.Client(),
		bucket:      "bucket",
		tokenSource: staticToken(),
		read:        ReadOptions{Expiry: time.Hour},
		apiBase:     srv.URL + "/storage/v1",
		uploadBase:  srv.URL + "/upload/storage/v1",
		publicBase:  "https://storage.googleapis.com",
	}
}

func TestPutUsesMediaUpload(t *testing.T) {
	var gotBody, gotType, gotName, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload/storage/v1/b/bucket/o" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotName = r.URL.Query().Get("name")
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	if err := client.Put(context.Background(), "media/2025/08/a.png", "image/png", strings.NewReader("png"), 3); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if gotName != "media/2025/08/a.png" || gotType != "image/png" || gotBody != "png" {
		t.Fatalf("unexpected upload name=%q type=%q body=%q", gotName, gotType, gotBody)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestPutReportsFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})
	err := client.Put(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected upload failure with body, got %v", err)
	}
}

func TestDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusNotFound} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			if !strings.HasSuffix(r.URL.EscapedPath(), "/b/bucket/o/media%2Fa.png") {
				t.Errorf("unexpected object path %s", r.URL.EscapedPath())
			}
			w.WriteHeader(status)
		})
		if err := client.Delete(context.Background(), "media/a.png"); err != nil {
			t.Fatalf("status %d: Delete returned error: %v", status, err)
		}
	}

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if err := failing.Delete(context.Background(), "media/a.png"); err == nil {
		t.Fatal("expected server error to surface")
	}
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("maxResults") != "1" {
			t.Errorf("expected maxResults=1")
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}

	if err := (&Client{}).Ping(context.Background()); err == nil {
		t.Fatal("expected uninitialized client to fail ping")
	}
}

func TestReadURLPublic(t *testing.T) {
	client := &Client{bucket: "bucket", publicBase: "https://storage.googleapis.com"}
	u, err := client.ReadURL(context.Background(), "media/my file.jpg")
	if err != nil {
		t.Fatalf("ReadURL returned error: %v", err)
	}
	if u != "https://storage.googleapis.com/bucket/media/my%20file.jpg" {
		t.Fatalf("unexpected url %q", u)
	}
}

func TestSignedReadURLVerifies(t *testing.T) {
	key := mustGenerateKey(t)
	client := &Client{
		bucket:         "bucket",
		publicBase:     "https://storage.googleapis.com",
		serviceAccount: &serviceAccountInfo{clientEmail: "signer@example.com", privateKey: key},
		read:           ReadOptions{Signed: true, Expiry: 5 * time.Minute},
	}

	urlStr, err := client.ReadURL(context.Background(), "media/file.jpg")
	if err != nil {
		t.Fatalf("ReadURL returned error: %v", err)
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	values := parsed.Query()
	if got := values.Get("GoogleAccessId"); got != "signer@example.com" {
		t.Fatalf("unexpected GoogleAccessId %q", got)
	}
	expires := values.Get("Expires")
	if expires == "" {
		t.Fatal("Expires missing")
	}

	rawSig, err := base64.StdEncoding.DecodeString(values.Get("Signature"))
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	hash := sha256.Sum256([]byte("GET\n\n\n" + expires + "\n/bucket/media/file.jpg"))
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], rawSig); err != nil {
		t.Fatalf("verify read signature: %v", err)
	}
}

func TestSignedReadURLRequiresServiceAccount(t *testing.T) {
	client := &Client{bucket: "bucket", read: ReadOptions{Signed: true}}
	if _, err := client.ReadURL(context.Background(), "media/a.jpg"); err == nil {
		t.Fatal("expected error without service account")
	}
	if _, err := client.ReadURL(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestTokenSourceCachesUntilNearExpiry(t *testing.T) {
	calls := 0
	ts := &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		calls++
		return "t", time.Now().Add(time.Hour), nil
	}}
	for i := 0; i < 3; i++ {
		if _, err := ts.Token(context.Background()); err != nil {
			t.Fatalf("Token returned error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
}
