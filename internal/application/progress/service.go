package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledfit-api/internal/domain"
)

type Service interface {
	// UpdateMetrics records one finished session and announces any achievement it unlocks.
	UpdateMetrics(ctx context.Context, userID string, delta domain.MetricsDelta) (*domain.Totals, error)
	// UpdateAchievements re-checks the stored totals without adding a session.
	UpdateAchievements(ctx context.Context, userID string) ([]domain.Achievement, error)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	// CommitProgress writes totals and achievements only if the stored version
	// still equals expectedVersion, and returns domain.ErrConflict otherwise.
	CommitProgress(ctx context.Context, userID string, expectedVersion int64, totals domain.Totals, achievements []domain.Achievement) error
}

type unlockPublisher interface {
	PublishUnlocked(ctx context.Context, n domain.Notification) error
}

type service struct {
	users       profileStore
	emitter     *Emitter
	publisher   unlockPublisher
	maxAttempts int
}

type ServiceDeps struct {
	UserRepo         profileStore
	NotificationRepo notificationWriter
	// Publisher is optional.
	Publisher   unlockPublisher
	MaxAttempts int
}

func NewService(deps ServiceDeps) Service {
	attempts := deps.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &service{
		users:       deps.UserRepo,
		emitter:     NewEmitter(deps.NotificationRepo),
		publisher:   deps.Publisher,
		maxAttempts: attempts,
	}
}

func (s *service) UpdateMetrics(ctx context.Context, userID string, delta domain.MetricsDelta) (*domain.Totals, error) {
	if _, err := ApplyMetrics(domain.Totals{}, delta); err != nil {
		return nil, err
	}
	u, err := s.commit(ctx, userID, &delta)
	if err != nil {
		return nil, err
	}
	return &u.Totals, nil
}

func (s *service) UpdateAchievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	u, err := s.commit(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return u.Achievements, nil
}

// commit runs read → accumulate → evaluate → notify → conditional write,
// starting over from a fresh read when another request committed first.
// Notifications are written before the profile; a retry after a failed
// profile write regenerates the same notification IDs, so nothing is duplicated.
func (s *service) commit(ctx context.Context, userID string, delta *domain.MetricsDelta) (*domain.User, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			return nil, err
		}

		totals := u.Totals
		if delta != nil {
			if totals, err = ApplyMetrics(u.Totals, *delta); err != nil {
				return nil, err
			}
		}
		ev := Evaluate(totals, u.Achievements)
		if delta == nil && len(ev.Unlocked) == 0 {
			return u, nil
		}

		created, err := s.emitter.Emit(ctx, userID, ev.Unlocked)
		if err != nil {
			return nil, err
		}

		err = s.users.CommitProgress(ctx, userID, u.Version, totals, ev.Updated)
		if err == nil {
			slog.DebugContext(ctx, "progress committed", "user_id", userID, "version", u.Version+1,
				"totals", totals, "unlocked", len(ev.Unlocked))
			u.Totals = totals
			u.Achievements = ev.Updated
			u.Version++
			s.publish(ctx, created)
			return u, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("commit progress: %w", err)
		}
		slog.InfoContext(ctx, "progress write conflict", "user_id", userID, "attempt", attempt)
		lastErr = err
	}
	return nil, fmt.Errorf("progress for user %s changed concurrently: %w", userID, lastErr)
}

func (s *service) publish(ctx context.Context, created []domain.Notification) {
	if s.publisher == nil {
		return
	}
	for _, n := range created {
		if err := s.publisher.PublishUnlocked(ctx, n); err != nil {
			slog.WarnContext(ctx, "could not publish achievement unlock", "user_id", n.UserID, "notification_id", n.NotificationID, "err", err)
		}
	}
}
