package board

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ledfit-api/internal/domain"
)

// ConnectionWindow is how recently a board must have reported in to count as connected.
const ConnectionWindow = 2 * time.Minute

const fieldIsPaused = "is_paused"

type Service interface {
	Status(ctx context.Context, userID string) (*domain.BoardStatus, error)
	// SetWorkoutState stores the pause flag and forwards it to the caller's board.
	// Failing to reach the board is reported in the result, not as an error.
	SetWorkoutState(ctx context.Context, userID string, req domain.WorkoutStateRequest) (*domain.WorkoutStateResult, error)
	SyncTime(ctx context.Context, userID string, req domain.SyncTimeRequest) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type boardStore interface {
	Get(ctx context.Context, boardID string) (*domain.Board, error)
}

type commander interface {
	SendCommand(ctx context.Context, boardID string, cmd domain.BoardCommand, clientTimestamp int64) error
	SyncTime(ctx context.Context, boardID string, sync domain.TimeSync) error
}

type service struct {
	users    userStore
	boards   boardStore
	commands commander
	now      func() time.Time
}

// ServiceDeps holds all dependencies for the board service.
type ServiceDeps struct {
	UserRepo  userStore
	BoardRepo boardStore
	// Commands is optional. Without it nothing is sent to boards.
	Commands commander
}

func NewService(deps ServiceDeps) Service {
	return &service{users: deps.UserRepo, boards: deps.BoardRepo, commands: deps.Commands, now: time.Now}
}

func (s *service) Status(ctx context.Context, userID string) (*domain.BoardStatus, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.BoardID == "" {
		return &domain.BoardStatus{IsAssociated: false}, nil
	}
	b, err := s.boards.Get(ctx, u.BoardID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		slog.WarnContext(ctx, "board linked to another user", "user_id", userID, "board_id", b.BoardID, "owner_id", b.UserID)
		return nil, fmt.Errorf("board %s: %w", b.BoardID, domain.ErrNotFound)
	}
	st := &domain.BoardStatus{
		IsAssociated: true,
		BoardID:      b.BoardID,
		IsConnected:  b.IsConnected && !b.LastSeen.IsZero() && s.now().Sub(b.LastSeen) <= ConnectionWindow,
	}
	if !b.LastSeen.IsZero() {
		lastSeen := b.LastSeen
		st.LastSeen = &lastSeen
	}
	return st, nil
}

func (s *service) SetWorkoutState(ctx context.Context, userID string, req domain.WorkoutStateRequest) (*domain.WorkoutStateResult, error) {
	if req.Paused == nil || req.ClientTimestamp == nil {
		return nil, fmt.Errorf("paused and client_timestamp are required: %w", domain.ErrBadRequest)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	paused := *req.Paused
	if err := s.users.Update(ctx, userID, map[string]interface{}{fieldIsPaused: paused}); err != nil {
		return nil, err
	}

	cmd := domain.CommandResume
	if paused {
		cmd = domain.CommandPause
	}
	if u.BoardID == "" {
		slog.WarnContext(ctx, "workout state changed without a board", "user_id", userID, "paused", paused)
		return &domain.WorkoutStateResult{Message: fmt.Sprintf("state updated to %s, no board associated", cmd)}, nil
	}

	sendErr := domain.ErrUnavailable
	if s.commands != nil {
		sendErr = s.commands.SendCommand(ctx, u.BoardID, cmd, *req.ClientTimestamp)
	}
	if sendErr != nil {
		slog.ErrorContext(ctx, "could not send board command", "user_id", userID, "board_id", u.BoardID, "command", cmd, "err", sendErr)
		return &domain.WorkoutStateResult{
			Message: fmt.Sprintf("state updated to %s, but the command could not be sent to the board", cmd),
			Error:   sendErr.Error(),
		}, nil
	}
	return &domain.WorkoutStateResult{
		Message:     fmt.Sprintf("state updated to %s and command sent to board %s", cmd, u.BoardID),
		CommandSent: true,
	}, nil
}

func (s *service) SyncTime(ctx context.Context, userID string, req domain.SyncTimeRequest) error {
	if req.Duration == nil || *req.Duration < 0 || math.IsNaN(*req.Duration) || math.IsInf(*req.Duration, 0) {
		return fmt.Errorf("duration must be a non-negative number: %w", domain.ErrBadRequest)
	}
	if req.ClientTimestamp == nil {
		return fmt.Errorf("client_timestamp is required: %w", domain.ErrBadRequest)
	}
	switch req.Stage {
	case domain.StageStart, domain.StageActive, domain.StageRest:
	default:
		return fmt.Errorf("unknown stage %q: %w", req.Stage, domain.ErrBadRequest)
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.BoardID == "" {
		return fmt.Errorf("user %s has no board linked: %w", userID, domain.ErrBadRequest)
	}
	if s.commands == nil {
		return fmt.Errorf("board messaging: %w", domain.ErrUnavailable)
	}
	sync := domain.TimeSync{
		Duration:        int64(math.Round(*req.Duration)),
		ClientTimestamp: *req.ClientTimestamp,
		Stage:           req.Stage,
	}
	if err := s.commands.SyncTime(ctx, u.BoardID, sync); err != nil {
		return fmt.Errorf("sync time with board %s: %w", u.BoardID, err)
	}
	return nil
}
