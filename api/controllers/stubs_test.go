package controllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/moments-backend/internal/auth"
	"github.com/angelmondragon/moments-backend/internal/media"
	"github.com/angelmondragon/moments-backend/pkg/auth/session"
	"github.com/angelmondragon/moments-backend/pkg/enums"
)

type stubMediaService struct {
	uploadInput  media.UploadInput
	uploadBody   string
	uploadResult *media.UploadResult
	listed       []media.MediaDTO
	adminFilter  string
	adminResult  *media.AdminListResult
	statusID     string
	statusValue  enums.MediaStatus
	statusResult *media.StatusResult
	bulkIDs      []string
	bulkResult   *media.BulkResult
	removeID     string
	stats        *media.Stats
	err          error
}

func (s *stubMediaService) Upload(_ context.Context, input media.UploadInput) (*media.UploadResult, error) {
	s.uploadInput = input
	if input.File != nil {
		buf := make([]byte, 64)
		n, _ := input.File.Read(buf)
		s.uploadBody = string(buf[:n])
	}
	return s.uploadResult, s.err
}

func (s *stubMediaService) ListApproved(context.Context) ([]media.MediaDTO, error) {
	return s.listed, s.err
}

func (s *stubMediaService) ListAll(_ context.Context, filter string) (*media.AdminListResult, error) {
	s.adminFilter = filter
	return s.adminResult, s.err
}

func (s *stubMediaService) SetStatus(_ context.Context, id string, status enums.MediaStatus) (*media.StatusResult, error) {
	s.statusID = id
	s.statusValue = status
	return s.statusResult, s.err
}

func (s *stubMediaService) BulkSetStatus(_ context.Context, ids []string, status enums.MediaStatus) (*media.BulkResult, error) {
	s.bulkIDs = ids
	s.statusValue = status
	return s.bulkResult, s.err
}

func (s *stubMediaService) Remove(_ context.Context, id string) (*media.RemoveResult, error) {
	s.removeID = id
	if s.err != nil {
		return nil, s.err
	}
	return &media.RemoveResult{Message: "Media deleted successfully"}, nil
}

func (s *stubMediaService) Stats(context.Context) (*media.Stats, error) {
	return s.stats, s.err
}

type stubAuthService struct {
	loginReq     auth.LoginRequest
	loginResp    *auth.LoginResponse
	record       *session.Record
	loggedOut    []string
	sessionToken string
	err          error
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.loginReq = req
	return s.loginResp, s.err
}

func (s *stubAuthService) Authenticate(_ context.Context, token string) (*session.Record, error) {
	return s.record, s.err
}

func (s *stubAuthService) IsAuthenticated(_ context.Context, token string) bool {
	return s.err == nil && s.record != nil
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return s.err
}

func (s *stubAuthService) Session(_ context.Context, token string) (*session.Record, error) {
	s.sessionToken = token
	return s.record, s.err
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, resp.Body.String())
	}
	return env
}
