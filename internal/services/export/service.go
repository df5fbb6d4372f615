package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

const linkTTL = 24 * time.Hour

var ErrNotConfigured = errors.New("export storage is not configured")

type ActionsRepo interface {
	ListActionsSince(ctx context.Context, chatID int64, since time.Time) ([]model.ActionRecord, error)
}

type Storage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Service renders a chat's recent action history as CSV, uploads it to
// object storage and returns a short-lived download link.
type Service struct {
	repo    ActionsRepo
	storage Storage
	nowFn   func() time.Time
}

func NewService(repo ActionsRepo, storage Storage) *Service {
	return newService(repo, storage, time.Now)
}

func newService(repo ActionsRepo, storage Storage, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{repo: repo, storage: storage, nowFn: nowFn}
}

func (s *Service) ExportWindow(ctx context.Context, chatID int64, window time.Duration) (string, error) {
	if s.storage == nil {
		return "", ErrNotConfigured
	}
	if s.repo == nil {
		return "", fmt.Errorf("actions repository is not configured")
	}
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}

	now := s.nowFn().UTC()
	records, err := s.repo.ListActionsSince(ctx, chatID, now.Add(-window))
	if err != nil {
		return "", fmt.Errorf("load action records: %w", err)
	}

	body, err := renderCSV(records)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/%d/actions-%s.csv", chatID, now.Format("20060102-150405"))
	if err := s.storage.Upload(ctx, key, body, "text/csv"); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	link, err := s.storage.PresignGet(ctx, key, linkTTL)
	if err != nil {
		return "", fmt.Errorf("presign export link: %w", err)
	}
	return link, nil
}

func renderCSV(records []model.ActionRecord) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	if err := writer.Write([]string{"timestamp", "chat_id", "user_id", "action", "reason", "strike_count"}); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}

	for _, record := range records {
		strikeCount := ""
		if record.StrikeCount != nil {
			strikeCount = strconv.Itoa(*record.StrikeCount)
		}
		row := []string{
			record.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(record.ChatID, 10),
			strconv.FormatInt(record.UserID, 10),
			string(record.Action),
			record.Reason,
			strikeCount,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}
	return buf.Bytes(), nil
}
