package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

type stubActionsRepo struct {
	records []model.ActionRecord
	err     error
	since   time.Time
}

func (r *stubActionsRepo) ListActionsSince(_ context.Context, _ int64, since time.Time) ([]model.ActionRecord, error) {
	r.since = since
	return r.records, r.err
}

type stubStorage struct {
	key         string
	body        []byte
	contentType string
	uploadErr   error
	link        string
}

func (s *stubStorage) Upload(_ context.Context, key string, body []byte, contentType string) error {
	s.key = key
	s.body = body
	s.contentType = contentType
	return s.uploadErr
}

func (s *stubStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.link == "" {
		return "https://example.test/" + key, nil
	}
	return s.link, nil
}

func TestExportWindowRendersCSV(t *testing.T) {
	strikes := 2
	repo := &stubActionsRepo{
		records: []model.ActionRecord{
			{
				ChatID:      -100123,
				UserID:      555,
				Action:      enums.ActionMuted,
				Reason:      "Crypto Address Detected",
				StrikeCount: &strikes,
				CreatedAt:   time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
			},
			{
				ChatID:    -100123,
				UserID:    555,
				Action:    enums.ActionStrikesReset,
				Reason:    "Strikes reset by admin",
				CreatedAt: time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
			},
		},
	}
	storage := &stubStorage{}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newService(repo, storage, func() time.Time { return now })

	link, err := svc.ExportWindow(context.Background(), -100123, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link == "" {
		t.Fatalf("expected a download link")
	}

	if want := now.Add(-7 * 24 * time.Hour); !repo.since.Equal(want) {
		t.Fatalf("expected window lower bound %v, got %v", want, repo.since)
	}
	if storage.contentType != "text/csv" {
		t.Fatalf("expected text/csv upload, got %q", storage.contentType)
	}
	if !strings.HasPrefix(storage.key, "exports/-100123/actions-") || !strings.HasSuffix(storage.key, ".csv") {
		t.Fatalf("unexpected object key %q", storage.key)
	}

	lines := strings.Split(strings.TrimSpace(string(storage.body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "timestamp,chat_id,user_id,action,reason,strike_count" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "muted") || !strings.HasSuffix(lines[1], ",2") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "strikes_reset") || !strings.HasSuffix(lines[2], ",") {
		t.Fatalf("expected empty strike count for reset row: %q", lines[2])
	}
}

func TestExportWindowWithoutStorage(t *testing.T) {
	svc := NewService(&stubActionsRepo{}, nil)

	_, err := svc.ExportWindow(context.Background(), 1, time.Hour)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestExportWindowRepoError(t *testing.T) {
	repoErr := errors.New("query failed")
	svc := NewService(&stubActionsRepo{err: repoErr}, &stubStorage{})

	_, err := svc.ExportWindow(context.Background(), 1, time.Hour)
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestExportWindowUploadError(t *testing.T) {
	uploadErr := errors.New("upload failed")
	svc := NewService(&stubActionsRepo{}, &stubStorage{uploadErr: uploadErr})

	_, err := svc.ExportWindow(context.Background(), 1, time.Hour)
	if !errors.Is(err, uploadErr) {
		t.Fatalf("expected upload error, got %v", err)
	}
}
