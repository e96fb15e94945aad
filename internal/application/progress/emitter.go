package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledfit-api/internal/domain"
	"github.com/ledfit-api/internal/pkg/id"
)

// Fallback texts for achievements stored without a title or description.
const (
	DefaultAchievementTitle   = "Achievement reached"
	DefaultAchievementContent = "You have reached a new achievement!"
)

type notificationWriter interface {
	// PutOnce stores n unless an item with the same ID exists.
	// An existing item is not an error; n is then overwritten with the stored copy.
	PutOnce(ctx context.Context, n *domain.Notification) error
}

// Emitter turns unlocked achievements into persisted notifications.
type Emitter struct {
	store notificationWriter
	now   func() time.Time
}

func NewEmitter(store notificationWriter) *Emitter {
	return &Emitter{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Emit creates one notification per unlocked achievement, in order.
// It stops at the first failed write and returns the error together with
// the notifications already stored.
func (e *Emitter) Emit(ctx context.Context, recipientID string, unlocked []domain.Achievement) ([]domain.Notification, error) {
	created := make([]domain.Notification, 0, len(unlocked))
	for _, a := range unlocked {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		n := NotificationFor(recipientID, a, e.now())
		if err := e.store.PutOnce(ctx, &n); err != nil {
			return created, fmt.Errorf("create notification for achievement %s/%s: %w", a.Kind, a.Key, err)
		}
		slog.DebugContext(ctx, "achievement notification stored", "user_id", recipientID, "kind", a.Kind, "key", a.Key)
		created = append(created, n)
	}
	return created, nil
}

// NotificationFor builds the notification announcing a. Its ID depends only on
// the recipient and the achievement, so the same unlock always maps to the same item.
func NotificationFor(recipientID string, a domain.Achievement, now time.Time) domain.Notification {
	title := a.Title
	if title == "" {
		title = DefaultAchievementTitle
	}
	content := a.Content
	if content == "" {
		content = DefaultAchievementContent
	}
	return domain.Notification{
		NotificationID: id.Derived(recipientID, string(a.Kind), a.Key),
		UserID:         recipientID,
		Title:          title,
		Content:        content,
		Kind:           a.Kind,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
