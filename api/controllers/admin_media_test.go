package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/moments-backend/internal/media"
	"github.com/angelmondragon/moments-backend/internal/uploaders"
	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"github.com/angelmondragon/moments-backend/pkg/enums"
)

func TestAdminMediaListNormalizesFilter(t *testing.T) {
	svc := &stubMediaService{adminResult: &media.AdminListResult{Filter: "pending"}}
	handler := AdminMediaList(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/media?status=Pending", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.adminFilter != "pending" {
		t.Fatalf("expected normalized filter, got %q", svc.adminFilter)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/media", nil))
	if svc.adminFilter != media.FilterAll {
		t.Fatalf("expected default filter all, got %q", svc.adminFilter)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/media?status=archived", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminMediaStats(t *testing.T) {
	svc := &stubMediaService{stats: &media.Stats{Total: 5, Pending: 1, Approved: 3, Rejected: 1, TotalUsers: 5, RecentUploads: 2}}
	handler := AdminMediaStats(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/media/stats", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var env struct {
		Data media.Stats `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data != *svc.stats {
		t.Fatalf("unexpected stats %+v", env.Data)
	}
}

func TestAdminMediaBulkStatus(t *testing.T) {
	svc := &stubMediaService{bulkResult: &media.BulkResult{Status: enums.MediaStatusRejected, Succeeded: 2}}
	handler := AdminMediaBulkStatus(svc, nil)

	body := `{"ids":["a","b"],"status":"rejected"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/admin/media/bulk-status", strings.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.bulkIDs) != 2 || svc.statusValue != enums.MediaStatusRejected {
		t.Fatalf("unexpected call ids=%v status=%s", svc.bulkIDs, svc.statusValue)
	}
}

func TestAdminMediaBulkStatusPassesMalformedIDsThrough(t *testing.T) {
	svc := &stubMediaService{bulkResult: &media.BulkResult{Status: enums.MediaStatusApproved, Succeeded: 1, Failed: 2}}
	body := `{"ids":["", "` + strings.Repeat("x", 200) + `", "a"],"status":"approved"}`

	resp := httptest.NewRecorder()
	AdminMediaBulkStatus(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/admin/media/bulk-status", strings.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.bulkIDs) != 3 || svc.bulkIDs[0] != "" || svc.bulkIDs[2] != "a" {
		t.Fatalf("expected every id forwarded, got %v", svc.bulkIDs)
	}
}

func TestAdminMediaBulkStatusValidatesBody(t *testing.T) {
	cases := map[string]string{
		"empty ids":      `{"ids":[],"status":"approved"}`,
		"pending target": `{"ids":["a"],"status":"pending"}`,
		"unknown field":  `{"ids":["a"],"status":"approved","extra":1}`,
	}
	for name, body := range cases {
		svc := &stubMediaService{}
		resp := httptest.NewRecorder()
		AdminMediaBulkStatus(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, resp.Code)
		}
		if svc.bulkIDs != nil {
			t.Fatalf("%s: service must not be called", name)
		}
	}
}

type stubUploaderService struct {
	items []uploaders.UploaderDTO
}

func (s stubUploaderService) Upsert(context.Context, string, string, time.Time) (*models.Uploader, error) {
	return nil, errors.New("not used")
}

func (s stubUploaderService) List(context.Context) ([]uploaders.UploaderDTO, error) {
	return s.items, nil
}

func (s stubUploaderService) Count(context.Context) (int64, error) {
	return int64(len(s.items)), nil
}

func TestAdminUploaders(t *testing.T) {
	svc := stubUploaderService{items: []uploaders.UploaderDTO{{ID: "user_alice_abc", Name: "Alice", TotalUploads: 2}}}
	resp := httptest.NewRecorder()
	AdminUploaders(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/uploaders", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "user_alice_abc") {
		t.Fatalf("expected uploader in body, got %s", resp.Body.String())
	}
}

type stubResetter struct {
	calls int
	err   error
}

func (s *stubResetter) Reset(context.Context) error {
	s.calls++
	return s.err
}

func TestAdminDataReset(t *testing.T) {
	resetter := &stubResetter{}
	resp := httptest.NewRecorder()
	AdminDataReset(resetter, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/data", nil))
	if resp.Code != http.StatusOK || resetter.calls != 1 {
		t.Fatalf("expected one reset and 200, got %d calls=%d", resp.Code, resetter.calls)
	}

	failing := &stubResetter{err: errors.New("db down")}
	resp = httptest.NewRecorder()
	AdminDataReset(failing, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/data", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
