package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

// ActionsRepo owns the append-only enforcement log. Records are inserted
// and read, never updated or deleted.
type ActionsRepo struct {
	db *sql.DB
}

func NewActionsRepo(db *sql.DB) *ActionsRepo {
	return &ActionsRepo{db: db}
}

func (r *ActionsRepo) LogAction(ctx context.Context, record model.ActionRecord) error {
	if r.db == nil {
		return nil
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var strikeCount interface{}
	if record.StrikeCount != nil {
		strikeCount = *record.StrikeCount
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO actions (chat_id, user_id, action, reason, strike_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		record.ChatID,
		record.UserID,
		string(record.Action),
		record.Reason,
		strikeCount,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert action record: %w", err)
	}
	return nil
}

// WindowedCounts aggregates action records since the given instant,
// lower bound inclusive.
func (r *ActionsRepo) WindowedCounts(ctx context.Context, chatID int64, since time.Time) (model.WindowedCounts, error) {
	if r.db == nil {
		return model.WindowedCounts{}, nil
	}

	counts := model.WindowedCounts{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE action IN ('deleted', 'warned')) AS deleted_count,
			COUNT(*) FILTER (WHERE action = 'muted') AS muted_count,
			COUNT(*) FILTER (WHERE action = 'banned') AS banned_count
		FROM actions
		WHERE chat_id = $1
		  AND created_at >= $2
	`, chatID, since).Scan(&counts.Deleted, &counts.Muted, &counts.Banned)
	if err != nil {
		return model.WindowedCounts{}, fmt.Errorf("aggregate windowed action counts: %w", err)
	}

	return counts, nil
}

func (r *ActionsRepo) ListActionsSince(ctx context.Context, chatID int64, since time.Time) ([]model.ActionRecord, error) {
	if r.db == nil {
		return []model.ActionRecord{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chat_id, user_id, action, COALESCE(reason, ''), strike_count, created_at
		FROM actions
		WHERE chat_id = $1
		  AND created_at >= $2
		ORDER BY created_at ASC, id ASC
	`, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("list action records: %w", err)
	}
	defer rows.Close()

	records := make([]model.ActionRecord, 0, 64)
	for rows.Next() {
		var record model.ActionRecord
		var action string
		var strikeCount sql.NullInt64
		if err := rows.Scan(
			&record.ID,
			&record.ChatID,
			&record.UserID,
			&action,
			&record.Reason,
			&strikeCount,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan action record: %w", err)
		}
		record.Action = enums.ActionKind(action)
		if strikeCount.Valid {
			count := int(strikeCount.Int64)
			record.StrikeCount = &count
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action records: %w", err)
	}

	return records, nil
}
