package stats

import (
	"context"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

// Window is the fixed trailing interval reported by /stats.
const Window = 7 * 24 * time.Hour

type Repo interface {
	WindowedCounts(ctx context.Context, chatID int64, since time.Time) (model.WindowedCounts, error)
}

type Service struct {
	repo  Repo
	nowFn func() time.Time
}

func NewService(repo Repo) *Service {
	return newService(repo, time.Now)
}

func newService(repo Repo, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{repo: repo, nowFn: nowFn}
}

// BuildReport aggregates the chat's action records over the trailing
// window. The lower bound is inclusive.
func (s *Service) BuildReport(ctx context.Context, chatID int64) (model.WindowedCounts, error) {
	if s.repo == nil {
		return model.WindowedCounts{}, nil
	}

	since := s.nowFn().UTC().Add(-Window)
	return s.repo.WindowedCounts(ctx, chatID, since)
}
