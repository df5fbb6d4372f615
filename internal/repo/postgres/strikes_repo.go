package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

type StrikesRepo struct {
	db *sql.DB
}

func NewStrikesRepo(db *sql.DB) *StrikesRepo {
	return &StrikesRepo{db: db}
}

func (r *StrikesRepo) GetStrikes(ctx context.Context, chatID, userID int64) (int, error) {
	if r.db == nil {
		return 0, nil
	}

	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT strike_count
		FROM strikes
		WHERE chat_id = $1
		  AND user_id = $2
	`, chatID, userID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get strikes: %w", err)
	}
	return count, nil
}

// IncrementStrikes is a single-statement create-or-increment; concurrent
// callers for the same (chat, user) key never lose increments. The
// username is a display hint, last write wins.
func (r *StrikesRepo) IncrementStrikes(ctx context.Context, chatID, userID int64, username string) (int, error) {
	if r.db == nil {
		return 0, ErrLedgerUnavailable
	}

	var count int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO strikes (chat_id, user_id, strike_count, username)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (chat_id, user_id)
		DO UPDATE SET strike_count = strikes.strike_count + 1,
		              username = EXCLUDED.username
		RETURNING strike_count
	`, chatID, userID, nullableString(username)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment strikes: %w", err)
	}
	return count, nil
}

// ListStrikes returns the chat's current strike state, highest counts
// first.
func (r *StrikesRepo) ListStrikes(ctx context.Context, chatID int64, limit int) ([]model.StrikeRecord, error) {
	if r.db == nil {
		return []model.StrikeRecord{}, nil
	}
	if limit <= 0 {
		limit = 25
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, user_id, strike_count, COALESCE(username, '')
		FROM strikes
		WHERE chat_id = $1
		ORDER BY strike_count DESC, user_id ASC
		LIMIT $2
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list strikes: %w", err)
	}
	defer rows.Close()

	records := make([]model.StrikeRecord, 0, limit)
	for rows.Next() {
		var record model.StrikeRecord
		if err := rows.Scan(&record.ChatID, &record.UserID, &record.StrikeCount, &record.Username); err != nil {
			return nil, fmt.Errorf("scan strike record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strike records: %w", err)
	}

	return records, nil
}

func (r *StrikesRepo) ResetUser(ctx context.Context, chatID, userID int64) (bool, error) {
	if r.db == nil {
		return false, ErrLedgerUnavailable
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM strikes
		WHERE chat_id = $1
		  AND user_id = $2
	`, chatID, userID)
	if err != nil {
		return false, fmt.Errorf("reset user strikes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for reset user strikes: %w", err)
	}
	return affected > 0, nil
}

func (r *StrikesRepo) ResetAll(ctx context.Context, chatID int64) (int, error) {
	if r.db == nil {
		return 0, ErrLedgerUnavailable
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM strikes
		WHERE chat_id = $1
	`, chatID)
	if err != nil {
		return 0, fmt.Errorf("reset all strikes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for reset all strikes: %w", err)
	}
	return int(affected), nil
}
