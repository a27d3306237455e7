package gcs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/logger"
)

const (
	apiBase     = "https://storage.googleapis.com/storage/v1"
	uploadBase  = "https://storage.googleapis.com/upload/storage/v1"
	publicBase  = "https://storage.googleapis.com"
	pingTimeout = 5 * time.Second
)

// ReadOptions controls how read URLs are produced.
type ReadOptions struct {
	Signed bool
	Expiry time.Duration
}

// Client talks to the Cloud Storage JSON API over plain HTTP.
type Client struct {
	httpClient     *http.Client
	bucket         string
	tokenSource    *tokenSource
	serviceAccount *serviceAccountInfo
	read           ReadOptions

	apiBase    string
	uploadBase string
	publicBase string
}

func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, read ReadOptions, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}

	creds := gcp.CredentialsJSON
	if creds == "" && gcp.ApplicationCredentials != "" {
		raw, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		creds = string(raw)
	}

	client := &Client{
		httpClient: httpClient,
		bucket:     cfg.BucketName,
		read:       read,
		apiBase:    apiBase,
		uploadBase: uploadBase,
		publicBase: publicBase,
	}
	if creds != "" {
		sa, err := parseServiceAccount(creds)
		if err != nil {
			return nil, err
		}
		client.serviceAccount = sa
		client.tokenSource = newServiceAccountTokenSource(httpClient, sa)
	} else {
		if read.Signed {
			return nil, errors.New("signed read urls require service account credentials")
		}
		client.tokenSource = newMetadataTokenSource(httpClient)
	}
	if client.read.Expiry <= 0 {
		client.read.Expiry = time.Hour
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs bucket %s unreachable: %w", cfg.BucketName, err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"bucket": cfg.BucketName, "signed_reads": read.Signed}), "storage.gcs.ready")
	}
	return client, nil
}

// Put uploads the object with a single media upload request.
func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	q := url.Values{"uploadType": {"media"}, "name": {key}}
	endpoint := c.uploadBase + "/b/" + url.PathEscape(c.bucket) + "/o?" + q.Encode()
	return c.do(ctx, "upload "+key, http.MethodPost, endpoint, body, func(req *http.Request) {
		req.Header.Set("Content-Type", contentType)
		if size >= 0 {
			req.ContentLength = size
		}
	}, http.StatusOK)
}

// Delete removes the object; a missing object counts as deleted.
func (c *Client) Delete(ctx context.Context, key string) error {
	endpoint := c.apiBase + "/b/" + url.PathEscape(c.bucket) + "/o/" + url.PathEscape(key)
	return c.do(ctx, "delete "+key, http.MethodDelete, endpoint, nil, nil,
		http.StatusOK, http.StatusNoContent, http.StatusNotFound)
}

// ReadURL returns the public object URL, or a V2 signed one in signed mode.
func (c *Client) ReadURL(_ context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("object key is required")
	}
	if c.read.Signed {
		return c.signedReadURL(key, time.Now().Add(c.read.Expiry))
	}
	return c.publicBase + "/" + c.bucket + "/" + escapeObject(key), nil
}

// Ping lists at most one object, which proves both credentials and bucket access.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	endpoint := c.apiBase + "/b/" + url.PathEscape(c.bucket) + "/o?maxResults=1"
	return c.do(ctx, "bucket check", http.MethodGet, endpoint, nil, func(req *http.Request) {
		req.Header.Set("Accept", "application/json")
	}, http.StatusOK)
}

// do sends one authorized request and maps any status outside ok to an error
// carrying the start of the response body.
func (c *Client) do(ctx context.Context, op, method, endpoint string, body io.Reader, configure func(*http.Request), ok ...int) error {
	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return fmt.Errorf("gcs %s: token: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("gcs %s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if configure != nil {
		configure(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gcs %s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if slices.Contains(ok, resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(snippet)); msg != "" {
		return fmt.Errorf("gcs %s: %s: %s", op, resp.Status, msg)
	}
	return fmt.Errorf("gcs %s: %s", op, resp.Status)
}

// signedReadURL builds a V2 signed GET URL valid until expires.
func (c *Client) signedReadURL(key string, expires time.Time) (string, error) {
	if c.serviceAccount == nil {
		return "", errors.New("service account credentials required for signed urls")
	}
	exp := strconv.FormatInt(expires.Unix(), 10)
	payload := "GET\n\n\n" + exp + "\n/" + c.bucket + "/" + key
	sig, err := signRS256(payload, c.serviceAccount.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}

	q := url.Values{
		"GoogleAccessId": {c.serviceAccount.clientEmail},
		"Expires":        {exp},
		"Signature":      {base64.StdEncoding.EncodeToString(sig)},
	}
	return c.publicBase + "/" + c.bucket + "/" + escapeObject(key) + "?" + q.Encode(), nil
}

func escapeObject(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
