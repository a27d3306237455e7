package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/moments-backend/internal/uploaders"
	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"github.com/angelmondragon/moments-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/google/uuid"
)

var pngHeader = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 56)...)

type stubStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	putErr    error
	deleteErr error
}

func newStubStore() *stubStore {
	return &stubStore{objects: map[string][]byte{}}
}

func (s *stubStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *stubStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *stubStore) ReadURL(ctx context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *stubStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type failingInsertRepo struct {
	*MemoryRepository
}

func (failingInsertRepo) Insert(ctx context.Context, media *models.Media) error {
	return errors.New("insert failed")
}

type failingUploaders struct{}

func (failingUploaders) Upsert(ctx context.Context, userID, name string, at time.Time) (*models.Uploader, error) {
	return nil, errors.New("uploaders unavailable")
}

func (failingUploaders) Count(ctx context.Context) (int64, error) { return 0, nil }

type rejectingUploaders struct{}

func (rejectingUploaders) Upsert(ctx context.Context, userID, name string, at time.Time) (*models.Uploader, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "userName is required")
}

func (rejectingUploaders) Count(ctx context.Context) (int64, error) { return 0, nil }

// racingRepo loses the compare-and-swap a fixed number of times.
type racingRepo struct {
	*MemoryRepository
	losses int
	calls  int
}

func (r *racingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expected int64, status enums.MediaStatus, at time.Time) (bool, error) {
	r.calls++
	if r.losses > 0 {
		r.losses--
		return false, nil
	}
	return r.MemoryRepository.UpdateStatus(ctx, id, expected, status, at)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	svc       *service
	repo      *MemoryRepository
	store     *stubStore
	uploaders *uploaders.MemoryRepository
	clock     *fakeClock
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, NewMemoryRepository(), nil)
}

func newTestEnvWith(t *testing.T, repo mediaRepository, recorder uploaderRecorder) *testEnv {
	t.Helper()

	env := &testEnv{
		store:     newStubStore(),
		uploaders: uploaders.NewMemoryRepository(),
		clock:     &fakeClock{now: time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC)},
	}
	if mem, ok := repo.(*MemoryRepository); ok {
		env.repo = mem
	}
	if recorder == nil {
		recorder = env.uploaders
	}
	svc, err := NewService(ServiceParams{
		Logger:         testLogger(),
		Repo:           repo,
		Uploaders:      recorder,
		Store:          env.store,
		MaxUploadBytes: 1024 * 1024,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	env.svc = svc.(*service)
	env.svc.now = env.clock.Now
	return env
}

func (e *testEnv) upload(t *testing.T, name string) *UploadResult {
	t.Helper()
	res, err := e.svc.Upload(context.Background(), pngUpload(name))
	if err != nil {
		t.Fatalf("Upload(%s): %v", name, err)
	}
	return res
}

func pngUpload(name string) UploadInput {
	return UploadInput{
		File:     bytes.NewReader(pngHeader),
		FileName: "holiday photo.png",
		Size:     int64(len(pngHeader)),
		UserName: name,
	}
}

func TestUploadStoresPendingRecord(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	res := env.upload(t, "  Alice Johnson ")

	if res.Status != enums.MediaStatusPending {
		t.Fatalf("expected pending status, got %s", res.Status)
	}
	if res.Message != "Media uploaded successfully and is pending approval" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if !strings.HasPrefix(res.UserID, "user_alice_johnson_") {
		t.Fatalf("unexpected user id %q", res.UserID)
	}
	if res.Media.Description != "Shared by Alice Johnson" {
		t.Fatalf("unexpected description %q", res.Media.Description)
	}
	if res.Media.Type != enums.MediaTypeImage || res.Media.ContentType != "image/png" {
		t.Fatalf("unexpected type %s/%s", res.Media.Type, res.Media.ContentType)
	}
	if res.Media.FileName != "holiday-photo.png" {
		t.Fatalf("unexpected file name %q", res.Media.FileName)
	}
	if !strings.HasPrefix(res.Media.URL, "https://cdn.test/media/2025/08/"+res.ID.String()) {
		t.Fatalf("unexpected url %q", res.Media.URL)
	}
	if !res.Media.UploadedAt.Equal(env.clock.Now()) || !res.Media.UpdatedAt.Equal(env.clock.Now()) {
		t.Fatalf("unexpected timestamps %v %v", res.Media.UploadedAt, res.Media.UpdatedAt)
	}
	if env.store.count() != 1 {
		t.Fatalf("expected one stored object, got %d", env.store.count())
	}
	for _, data := range env.store.objects {
		if !bytes.Equal(data, pngHeader) {
			t.Fatal("stored bytes differ from upload")
		}
	}

	approved, err := env.svc.ListApproved(context.Background())
	if err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if len(approved) != 0 {
		t.Fatalf("pending upload leaked into gallery: %+v", approved)
	}

	stats, err := env.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 || stats.Pending != 1 || stats.TotalUsers != 1 || stats.RecentUploads != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestUploadRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	big := UploadInput{File: bytes.NewReader(pngHeader), Size: 2 * 1024 * 1024, UserName: "Bob"}
	cases := map[string]UploadInput{
		"missing file": {Size: 10, UserName: "Bob"},
		"empty file":   {File: bytes.NewReader(nil), UserName: "Bob"},
		"too large":    big,
		"blank name":   {File: bytes.NewReader(pngHeader), Size: int64(len(pngHeader)), UserName: "   "},
		"text content": {File: strings.NewReader("just some notes"), Size: 15, UserName: "Bob"},
		"bad user id":  {File: bytes.NewReader(pngHeader), Size: int64(len(pngHeader)), UserName: "Bob", UserID: "admin"},
	}
	for name, input := range cases {
		env := newTestEnv(t)
		_, err := env.svc.Upload(context.Background(), input)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
		if env.store.count() != 0 {
			t.Fatalf("%s: object stored for rejected upload", name)
		}
		rows, _ := env.repo.List(context.Background(), ListFilter{})
		if len(rows) != 0 {
			t.Fatalf("%s: record inserted for rejected upload", name)
		}
	}
}

func TestUploadSurfacesStoreFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.store.putErr = errors.New("bucket offline")

	_, err := env.svc.Upload(context.Background(), pngUpload("Carol"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	rows, _ := env.repo.List(context.Background(), ListFilter{})
	if len(rows) != 0 {
		t.Fatal("record inserted despite store failure")
	}
}

func TestUploadCompensatesWhenInsertFails(t *testing.T) {
	t.Parallel()

	env := newTestEnvWith(t, failingInsertRepo{NewMemoryRepository()}, nil)
	_, err := env.svc.Upload(context.Background(), pngUpload("Dave"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if env.store.count() != 0 || len(env.store.deleted) != 1 {
		t.Fatalf("expected stored object to be removed, objects=%d deleted=%v", env.store.count(), env.store.deleted)
	}
	if n, _ := env.uploaders.Count(context.Background()); n != 0 {
		t.Fatalf("uploader recorded for failed upload")
	}
}

func TestUploadCompensatesWhenUploaderFails(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	env := newTestEnvWith(t, repo, failingUploaders{})
	_, err := env.svc.Upload(context.Background(), pngUpload("Erin"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	rows, _ := repo.List(context.Background(), ListFilter{})
	if len(rows) != 0 {
		t.Fatalf("record kept after uploader failure: %+v", rows)
	}
	if env.store.count() != 0 {
		t.Fatal("object kept after uploader failure")
	}
}

func TestUploadKeepsUploaderErrorCode(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	env := newTestEnvWith(t, repo, rejectingUploaders{})
	_, err := env.svc.Upload(context.Background(), pngUpload("Erin"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if env.store.count() != 0 {
		t.Fatal("object kept after uploader rejection")
	}
}

func TestUploadAcceptsMaximumLengthUserName(t *testing.T) {
	t.Parallel()

	recorder, err := uploaders.NewService(uploaders.NewMemoryRepository(), testLogger())
	if err != nil {
		t.Fatalf("uploaders.NewService: %v", err)
	}
	env := newTestEnvWith(t, NewMemoryRepository(), recorder)

	res := env.upload(t, strings.Repeat("a", 128))
	if !uploaders.ValidID(res.UserID) {
		t.Fatalf("returned user id %q does not validate", res.UserID)
	}
	if env.store.count() != 1 {
		t.Fatalf("expected one stored object, got %d", env.store.count())
	}
	if n, _ := recorder.Count(context.Background()); n != 1 {
		t.Fatalf("expected one uploader, got %d", n)
	}

	again := pngUpload("a second name")
	again.UserID = res.UserID
	if _, err := env.svc.Upload(context.Background(), again); err != nil {
		t.Fatalf("upload with returned user id: %v", err)
	}
}

func TestUploadWithReturnedUserIDIncrementsUploader(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	first := env.upload(t, "Frank")

	input := pngUpload("Frank")
	input.UserID = first.UserID
	second, err := env.svc.Upload(context.Background(), input)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if second.UserID != first.UserID {
		t.Fatalf("expected user id reuse, got %s and %s", first.UserID, second.UserID)
	}
	rows, _ := env.uploaders.List(context.Background())
	if len(rows) != 1 || rows[0].TotalUploads != 2 {
		t.Fatalf("unexpected uploaders %+v", rows)
	}

	third := env.upload(t, "Frank")
	if third.UserID == first.UserID {
		t.Skip("generated suffix collided with the first upload")
	}
	if n, _ := env.uploaders.Count(context.Background()); n != 2 {
		t.Fatalf("expected a fresh uploader row for a generated id, got %d", n)
	}
}

func TestSetStatusSequenceKeepsLastWriteAndAdvancesUpdatedAt(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	res := env.upload(t, "Grace")
	id := res.ID.String()

	prev := res.Media.UpdatedAt
	sequence := []enums.MediaStatus{
		enums.MediaStatusApproved,
		enums.MediaStatusRejected,
		enums.MediaStatusRejected,
		enums.MediaStatusApproved,
	}
	for _, status := range sequence {
		out, err := env.svc.SetStatus(context.Background(), id, status)
		if err != nil {
			t.Fatalf("SetStatus(%s): %v", status, err)
		}
		if !out.Media.UpdatedAt.After(prev) {
			t.Fatalf("updated_at did not advance: %v then %v", prev, out.Media.UpdatedAt)
		}
		prev = out.Media.UpdatedAt
	}

	stored, err := env.repo.FindByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Status != enums.MediaStatusApproved {
		t.Fatalf("expected final status approved, got %s", stored.Status)
	}
	if stored.Version != int64(len(sequence))+1 {
		t.Fatalf("expected version %d, got %d", len(sequence)+1, stored.Version)
	}
	if !stored.UploadedAt.Equal(res.Media.UploadedAt) {
		t.Fatal("uploaded_at changed on status write")
	}
}

func TestSetStatusMessages(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.upload(t, "Heidi").ID.String()

	out, err := env.svc.SetStatus(context.Background(), id, enums.MediaStatusApproved)
	if err != nil || out.Message != "Media approved successfully" {
		t.Fatalf("unexpected approve result %+v %v", out, err)
	}
	env.clock.Advance(time.Minute)
	out, err = env.svc.SetStatus(context.Background(), id, enums.MediaStatusRejected)
	if err != nil || out.Message != "Media rejected" {
		t.Fatalf("unexpected reject result %+v %v", out, err)
	}
	if !out.Media.UpdatedAt.Equal(env.clock.Now()) {
		t.Fatalf("expected updated_at to follow the clock, got %v", out.Media.UpdatedAt)
	}
}

func TestSetStatusRejectsPendingTarget(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.upload(t, "Ivan").ID.String()

	for _, status := range []enums.MediaStatus{enums.MediaStatusPending, "archived"} {
		_, err := env.svc.SetStatus(context.Background(), id, status)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("status %q: expected validation error, got %v", status, err)
		}
	}
}

func TestUnknownIDsReturnNotFoundAndLeaveCollectionUnchanged(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.upload(t, "Judy")
	before, _ := env.repo.List(context.Background(), ListFilter{})

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		if _, err := env.svc.SetStatus(context.Background(), id, enums.MediaStatusApproved); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("SetStatus(%q): expected not found, got %v", id, err)
		}
		if _, err := env.svc.Remove(context.Background(), id); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("Remove(%q): expected not found, got %v", id, err)
		}
	}

	after, _ := env.repo.List(context.Background(), ListFilter{})
	if len(before) != len(after) || before[0].Status != after[0].Status || before[0].Version != after[0].Version {
		t.Fatalf("collection changed: before=%+v after=%+v", before, after)
	}
}

func TestSetStatusRetriesLostRace(t *testing.T) {
	t.Parallel()

	repo := &racingRepo{MemoryRepository: NewMemoryRepository(), losses: 2}
	env := newTestEnvWith(t, repo, nil)
	res, err := env.svc.Upload(context.Background(), pngUpload("Karl"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := env.svc.SetStatus(context.Background(), res.ID.String(), enums.MediaStatusApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if repo.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.calls)
	}
}

func TestSetStatusGivesUpWithConflict(t *testing.T) {
	t.Parallel()

	repo := &racingRepo{MemoryRepository: NewMemoryRepository(), losses: 10}
	env := newTestEnvWith(t, repo, nil)
	res, err := env.svc.Upload(context.Background(), pngUpload("Liam"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, err = env.svc.SetStatus(context.Background(), res.ID.String(), enums.MediaStatusRejected)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.calls != maxStatusAttempts {
		t.Fatalf("expected %d attempts, got %d", maxStatusAttempts, repo.calls)
	}
}

func TestRemoveDeletesRecordAndObject(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	res := env.upload(t, "Mona")

	out, err := env.svc.Remove(context.Background(), res.ID.String())
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if out.Message != "Media deleted successfully" {
		t.Fatalf("unexpected message %q", out.Message)
	}
	if env.store.count() != 0 {
		t.Fatal("object not deleted")
	}
	if _, err := env.svc.SetStatus(context.Background(), res.ID.String(), enums.MediaStatusApproved); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected deleted record to be gone, got %v", err)
	}
	if _, err := env.svc.Remove(context.Background(), res.ID.String()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected second remove to be not found, got %v", err)
	}
}

func TestRemoveSucceedsWhenObjectDeleteFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	res := env.upload(t, "Nina")
	env.store.deleteErr = errors.New("bucket offline")

	if _, err := env.svc.Remove(context.Background(), res.ID.String()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := env.repo.FindByID(context.Background(), res.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record still present: %v", err)
	}
}

func TestBulkSetStatusReportsEachItem(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	a := env.upload(t, "Olga").ID.String()
	b := env.upload(t, "Pete").ID.String()
	missing := uuid.NewString()

	res, err := env.svc.BulkSetStatus(context.Background(), []string{a, missing, b, "nope"}, enums.MediaStatusApproved)
	if err != nil {
		t.Fatalf("BulkSetStatus: %v", err)
	}
	if res.Succeeded != 2 || res.Failed != 2 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if len(res.Items) != 4 || res.Items[0].ID != a || res.Items[1].ID != missing {
		t.Fatalf("items out of order: %+v", res.Items)
	}
	if !res.Items[0].OK || res.Items[1].OK || res.Items[1].Code != string(pkgerrors.CodeNotFound) || res.Items[3].Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected item outcomes %+v", res.Items)
	}

	approved, err := env.svc.ListApproved(context.Background())
	if err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if len(approved) != 2 {
		t.Fatalf("expected 2 approved records, got %d", len(approved))
	}
}

func TestBulkSetStatusMarksMalformedIDsNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	a := env.upload(t, "Quinn").ID.String()
	ids := []string{"", strings.Repeat("x", 200), a}

	res, err := env.svc.BulkSetStatus(context.Background(), ids, enums.MediaStatusRejected)
	if err != nil {
		t.Fatalf("BulkSetStatus: %v", err)
	}
	if res.Succeeded != 1 || res.Failed != 2 {
		t.Fatalf("unexpected counts %+v", res)
	}
	for _, item := range res.Items[:2] {
		if item.OK || item.Code != string(pkgerrors.CodeNotFound) {
			t.Fatalf("expected not found for %q, got %+v", item.ID, item)
		}
	}
	if !res.Items[2].OK {
		t.Fatalf("valid id failed alongside malformed ones: %+v", res.Items[2])
	}
}

func TestBulkSetStatusValidatesRequest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if _, err := env.svc.BulkSetStatus(context.Background(), nil, enums.MediaStatusApproved); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty ids, got %v", err)
	}
	if _, err := env.svc.BulkSetStatus(context.Background(), []string{uuid.NewString()}, enums.MediaStatusPending); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for pending, got %v", err)
	}
	ids := make([]string, maxBulkItems+1)
	if _, err := env.svc.BulkSetStatus(context.Background(), ids, enums.MediaStatusApproved); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for oversized batch, got %v", err)
	}
}

func TestStatsCountsAddUp(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ids := make([]string, 0, 5)
	for _, name := range []string{"Quinn", "Rita", "Sam", "Tina", "Uma"} {
		ids = append(ids, env.upload(t, name).ID.String())
	}
	if _, err := env.svc.SetStatus(context.Background(), ids[0], enums.MediaStatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := env.svc.SetStatus(context.Background(), ids[1], enums.MediaStatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := env.svc.Remove(context.Background(), ids[2]); err != nil {
		t.Fatalf("remove: %v", err)
	}

	stats, err := env.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pending+stats.Approved+stats.Rejected != stats.Total {
		t.Fatalf("counts do not add up: %+v", stats)
	}
	if stats.Total != 4 || stats.Approved != 1 || stats.Rejected != 1 || stats.Pending != 2 || stats.TotalUsers != 5 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestStatsRecentUploadsUsesStrictWindow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.upload(t, "Vera")
	env.clock.Advance(24 * time.Hour)

	stats, err := env.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.RecentUploads != 0 {
		t.Fatalf("upload exactly 24h old counted as recent: %+v", stats)
	}

	env.clock.Advance(-time.Microsecond)
	stats, err = env.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.RecentUploads != 1 {
		t.Fatalf("expected one recent upload, got %+v", stats)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	base := ServiceParams{
		Logger:         testLogger(),
		Repo:           NewMemoryRepository(),
		Uploaders:      uploaders.NewMemoryRepository(),
		Store:          newStubStore(),
		MaxUploadBytes: 1,
	}
	mutations := map[string]func(p *ServiceParams){
		"logger":    func(p *ServiceParams) { p.Logger = nil },
		"repo":      func(p *ServiceParams) { p.Repo = nil },
		"uploaders": func(p *ServiceParams) { p.Uploaders = nil },
		"store":     func(p *ServiceParams) { p.Store = nil },
		"max bytes": func(p *ServiceParams) { p.MaxUploadBytes = 0 },
	}
	for name, mutate := range mutations {
		params := base
		mutate(&params)
		if _, err := NewService(params); err == nil {
			t.Fatalf("expected error when %s is missing", name)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"sunset.jpg":              "sunset.jpg",
		"  my holiday pic.png ":   "my-holiday-pic.png",
		"../../etc/passwd":        "passwd",
		`C:\Users\me\clip.mp4`:    "clip.mp4",
		"..":                      "",
		"":                        "",
		"name\x00with\x07ctl.gif": "namewithctl.gif",
	}
	for input, want := range cases {
		if got := sanitizeFileName(input); got != want {
			t.Fatalf("sanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}
