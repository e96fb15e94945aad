package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/ledfit-api/internal/domain"
)

// Cache keys. Entries hold the stored records; image URLs are signed per response.
const (
	keyExercises      = "catalog:exercises"
	keyWorkouts       = "catalog:workouts"
	keyExercisePrefix = "catalog:exercise:"
	keyWorkoutPrefix  = "catalog:workout:"
)

type Service interface {
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	ListWorkouts(ctx context.Context) ([]domain.Workout, error)
	GetWorkout(ctx context.Context, workoutID string) (*domain.Workout, error)
}

type exerciseStore interface {
	List(ctx context.Context) ([]domain.Exercise, error)
	Get(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	BatchGet(ctx context.Context, ids []string) ([]domain.Exercise, error)
}

type workoutStore interface {
	List(ctx context.Context) ([]domain.Workout, error)
	Get(ctx context.Context, workoutID string) (*domain.Workout, error)
}

type cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type imageSigner interface {
	ImageURL(ctx context.Context, ref string) (string, error)
}

type service struct {
	exercises exerciseStore
	workouts  workoutStore
	cache     cache
	cacheTTL  time.Duration
	images    imageSigner
}

type ServiceDeps struct {
	ExerciseRepo exerciseStore
	WorkoutRepo  workoutStore
	// Cache and Images are optional.
	Cache    cache
	CacheTTL time.Duration
	Images   imageSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		exercises: deps.ExerciseRepo,
		workouts:  deps.WorkoutRepo,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		images:    deps.Images,
	}
}

func (s *service) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	exercises, err := cached(ctx, s, keyExercises, s.exercises.List)
	if err != nil {
		return nil, err
	}
	for i := range exercises {
		s.signExercise(ctx, &exercises[i])
	}
	return exercises, nil
}

func (s *service) GetExercise(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	e, err := cached(ctx, s, keyExercisePrefix+exerciseID, func(ctx context.Context) (*domain.Exercise, error) {
		return s.exercises.Get(ctx, exerciseID)
	})
	if err != nil {
		return nil, err
	}
	s.signExercise(ctx, e)
	return e, nil
}

func (s *service) ListWorkouts(ctx context.Context) ([]domain.Workout, error) {
	workouts, err := cached(ctx, s, keyWorkouts, s.workouts.List)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (s *service) GetWorkout(ctx context.Context, workoutID string) (*domain.Workout, error) {
	w, err := cached(ctx, s, keyWorkoutPrefix+workoutID, func(ctx context.Context) (*domain.Workout, error) {
		return s.workouts.Get(ctx, workoutID)
	})
	if err != nil {
		return nil, err
	}
	ws := []domain.Workout{*w}
	if err := s.hydrate(ctx, ws); err != nil {
		return nil, err
	}
	return &ws[0], nil
}

// hydrate fills Exercises from ExerciseIDs with one batch read for all workouts.
// IDs that no longer resolve are left out.
func (s *service) hydrate(ctx context.Context, workouts []domain.Workout) error {
	var ids []string
	for _, w := range workouts {
		ids = append(ids, w.ExerciseIDs...)
	}
	byID := map[string]domain.Exercise{}
	if len(ids) > 0 {
		exercises, err := s.exercises.BatchGet(ctx, ids)
		if err != nil {
			return err
		}
		for _, e := range exercises {
			s.signExercise(ctx, &e)
			byID[e.ExerciseID] = e
		}
	}
	for i := range workouts {
		w := &workouts[i]
		w.Exercises = make([]domain.Exercise, 0, len(w.ExerciseIDs))
		for _, eid := range w.ExerciseIDs {
			if e, ok := byID[eid]; ok {
				w.Exercises = append(w.Exercises, e)
			}
		}
		w.Image = s.imageURL(ctx, w.Image)
	}
	return nil
}

func (s *service) signExercise(ctx context.Context, e *domain.Exercise) {
	e.Image = s.imageURL(ctx, e.Image)
}

// imageURL falls back to the stored reference when signing fails.
func (s *service) imageURL(ctx context.Context, ref string) string {
	if s.images == nil || ref == "" {
		return ref
	}
	url, err := s.images.ImageURL(ctx, ref)
	if err != nil {
		slog.WarnContext(ctx, "could not sign image url", "ref", ref, "err", err)
		return ref
	}
	return url
}

// cached is a read-through helper. Cache failures are treated as misses.
func cached[T any](ctx context.Context, s *service, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &v); err == nil {
			return v, nil
		}
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
			slog.DebugContext(ctx, "catalog cache write failed", "key", key, "err", err)
		}
	}
	return v, nil
}
