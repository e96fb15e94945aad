package user

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ledfit-api/internal/domain"
	"github.com/ledfit-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName         = "name"
	fieldEmail        = "email"
	fieldPasswordHash = "password_hash"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ListFavs(ctx context.Context, userID string) ([]domain.Workout, error)
	AddFav(ctx context.Context, userID, workoutID string) error
	RemoveFav(ctx context.Context, userID, workoutID string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	AddFav(ctx context.Context, userID, workoutID string) error
	RemoveFav(ctx context.Context, userID string, index int, workoutID string) error
}

type workoutStore interface {
	Get(ctx context.Context, workoutID string) (*domain.Workout, error)
}

type service struct {
	repo     userStore
	workouts workoutStore
}

type ServiceDeps struct {
	UserRepo    userStore
	WorkoutRepo workoutStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, workouts: deps.WorkoutRepo}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := s.emailAvailable(ctx, req.Email, ""); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := NewAccount(req.Name, req.Email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// NewAccount builds a fresh account with zeroed totals and the default
// achievement list. Every seeded achievement must be evaluable.
func NewAccount(name, email, passwordHash string) (*domain.User, error) {
	achievements := domain.DefaultAchievements()
	for _, a := range achievements {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	return &domain.User{
		UserID:       id.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Favs:         []string{},
		Achievements: achievements,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", domain.ErrBadRequest)
		}
		updates[fieldName] = *req.Name
	}
	if req.Email != nil {
		if err := s.emailAvailable(ctx, *req.Email, userID); err != nil {
			return nil, err
		}
		updates[fieldEmail] = *req.Email
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

// ListFavs returns the favourite workouts that still exist in the catalog.
func (s *service) ListFavs(ctx context.Context, userID string) ([]domain.Workout, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	workouts := make([]domain.Workout, 0, len(u.Favs))
	for _, wid := range u.Favs {
		w, err := s.workouts.Get(ctx, wid)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, nil
}

func (s *service) AddFav(ctx context.Context, userID, workoutID string) error {
	if _, err := s.workouts.Get(ctx, workoutID); err != nil {
		return err
	}
	return s.repo.AddFav(ctx, userID, workoutID)
}

func (s *service) RemoveFav(ctx context.Context, userID, workoutID string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	idx := slices.Index(u.Favs, workoutID)
	if idx < 0 {
		return fmt.Errorf("workout %s is not a favourite: %w", workoutID, domain.ErrNotFound)
	}
	return s.repo.RemoveFav(ctx, userID, idx, workoutID)
}

// emailAvailable fails with ErrConflict when email belongs to an account other than ownerID.
func (s *service) emailAvailable(ctx context.Context, email, ownerID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.UserID != ownerID:
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	return nil
}
