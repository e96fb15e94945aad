package http

import (
	"context"
	"time"

	"github.com/ledfit-api/internal/domain"
	"github.com/ledfit-api/internal/infrastructure/google"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	// CommitProgress is a conditional write on the stored version; a stale
	// expectedVersion yields domain.ErrConflict.
	CommitProgress(ctx context.Context, userID string, expectedVersion int64, totals domain.Totals, achievements []domain.Achievement) error
	AddFav(ctx context.Context, userID, workoutID string) error
	RemoveFav(ctx context.Context, userID string, index int, workoutID string) error
}

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
	PutOnce(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	SoftDelete(ctx context.Context, notificationID string) error
}

type ExerciseRepository interface {
	List(ctx context.Context) ([]domain.Exercise, error)
	Get(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	BatchGet(ctx context.Context, ids []string) ([]domain.Exercise, error)
}

type WorkoutRepository interface {
	List(ctx context.Context) ([]domain.Workout, error)
	Get(ctx context.Context, workoutID string) (*domain.Workout, error)
}

type BoardRepository interface {
	Get(ctx context.Context, boardID string) (*domain.Board, error)
}

// BoardCommander delivers workout commands and time syncs to boards.
type BoardCommander interface {
	SendCommand(ctx context.Context, boardID string, cmd domain.BoardCommand, clientTimestamp int64) error
	SyncTime(ctx context.Context, boardID string, sync domain.TimeSync) error
}

// ImageSigner turns stored image references into fetchable URLs.
type ImageSigner interface {
	ImageURL(ctx context.Context, ref string) (string, error)
}

// CatalogCache is the read-through cache in front of the catalog tables.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// UnlockPublisher fans out achievement unlocks after they are committed.
type UnlockPublisher interface {
	PublishUnlocked(ctx context.Context, n domain.Notification) error
}

// IDTokenVerifier checks third-party sign-in tokens.
type IDTokenVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}
