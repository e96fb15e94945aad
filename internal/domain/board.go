package domain

import "time"

// Board is the training board paired with a user.
type Board struct {
	BoardID     string    `json:"id" dynamodbav:"board_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	IsConnected bool      `json:"is_connected" dynamodbav:"is_connected"`
	LastSeen    time.Time `json:"last_seen" dynamodbav:"last_seen"`
}

type BoardStatus struct {
	IsAssociated bool       `json:"is_associated"`
	BoardID      string     `json:"board_id,omitempty"`
	IsConnected  bool       `json:"is_connected"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
}

// BoardCommand is sent to a board to control the running workout.
type BoardCommand string

const (
	CommandPause  BoardCommand = "pause"
	CommandResume BoardCommand = "resume"
)

// WorkoutStage is the phase of the workout the board should display.
// Values are the ones the board firmware understands.
type WorkoutStage string

const (
	StageStart  WorkoutStage = "INICIO"
	StageActive WorkoutStage = "ACTIVO"
	StageRest   WorkoutStage = "DESCANSO"
)

// WorkoutStateRequest pauses or resumes the caller's workout.
// ClientTimestamp is the app's clock in Unix milliseconds.
type WorkoutStateRequest struct {
	Paused          *bool  `json:"paused" validate:"required"`
	ClientTimestamp *int64 `json:"client_timestamp" validate:"required"`
}

// WorkoutStateResult reports whether the board was told about a state change.
// The stored state is updated even when the command could not be sent.
type WorkoutStateResult struct {
	Message     string `json:"message"`
	CommandSent bool   `json:"command_sent"`
	Error       string `json:"error,omitempty"`
}

// SyncTimeRequest aligns the board's countdown with the app.
// Duration is in seconds.
type SyncTimeRequest struct {
	Duration        *float64     `json:"duration" validate:"required,gte=0"`
	ClientTimestamp *int64       `json:"client_timestamp" validate:"required"`
	Stage           WorkoutStage `json:"stage" validate:"required,oneof=INICIO ACTIVO DESCANSO"`
}

// TimeSync is the countdown state pushed to a board.
type TimeSync struct {
	Duration        int64
	ClientTimestamp int64
	Stage           WorkoutStage
}
