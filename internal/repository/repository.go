package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-raid-alerts/internal/models"
)

var ErrNotFound = errors.New("not found")

type Filter struct {
	Limit   int
	Offset  int
	Since   *time.Time
	Primary *string // threat kind name
	Urgent  *bool
}

type AlertRepository interface {
	AddAlert(ctx context.Context, a *models.Alert) error
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListAlerts(ctx context.Context, opts Filter) ([]models.Alert, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type SubscriberRepository interface {
	AddSubscriber(ctx context.Context, chatID int64) error
	// RemoveSubscriber reports whether a subscriber was removed.
	RemoveSubscriber(ctx context.Context, chatID int64) (bool, error)
	ListSubscribers(ctx context.Context) ([]models.Subscriber, error)
}
