package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mr1hm/go-raid-alerts/internal/models"
)

// AddSubscriber is idempotent.
func (s *SQLiteDB) AddSubscriber(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscribers (chat_id, added_at) VALUES (?, ?)`,
		chatID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("error adding subscriber %d: %w", chatID, err)
	}
	return nil
}

func (s *SQLiteDB) RemoveSubscriber(ctx context.Context, chatID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE chat_id = ?`, chatID)
	if err != nil {
		return false, fmt.Errorf("error removing subscriber %d: %w", chatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error removing subscriber %d: %w", chatID, err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id, added_at FROM subscribers ORDER BY added_at, chat_id`)
	if err != nil {
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscriber
	for rows.Next() {
		var (
			sub     models.Subscriber
			addedAt int64
		)
		if err := rows.Scan(&sub.ChatID, &addedAt); err != nil {
			return nil, fmt.Errorf("error scanning subscriber: %w", err)
		}
		sub.AddedAt = time.Unix(addedAt, 0).UTC()
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribers: %w", err)
	}
	return subs, nil
}
