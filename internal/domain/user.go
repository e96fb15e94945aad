package domain

import "time"

// Totals are the user's cumulative tracked metrics.
// TimeTrained is in seconds, CaloriesBurned in kcal.
type Totals struct {
	TimeTrained       float64 `json:"time_trained" dynamodbav:"time_trained"`
	CaloriesBurned    float64 `json:"calories_burned" dynamodbav:"calories_burned"`
	SessionsCompleted int     `json:"sessions_completed" dynamodbav:"sessions_completed"`
}

type User struct {
	UserID        string        `json:"id" dynamodbav:"user_id"`
	Name          string        `json:"name" dynamodbav:"name"`
	Email         string        `json:"email" dynamodbav:"email"`
	PasswordHash  string        `json:"-" dynamodbav:"password_hash"`
	OAuthProvider string        `json:"oauth_provider,omitempty" dynamodbav:"oauth_provider,omitempty"` // "google"
	OAuthID       string        `json:"-" dynamodbav:"oauth_id,omitempty"`
	BoardID       string        `json:"board_id,omitempty" dynamodbav:"board_id,omitempty"`
	IsPaused      bool          `json:"is_paused" dynamodbav:"is_paused"`
	Favs          []string      `json:"favs" dynamodbav:"favs"`
	Totals        Totals        `json:"totals" dynamodbav:"totals"`
	Achievements  []Achievement `json:"achievements" dynamodbav:"achievements"`
	// Version is bumped on every progress commit and guards it with a conditional write.
	Version   int64     `json:"-" dynamodbav:"version"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OAuthSignInRequest struct {
	Provider string `json:"provider" validate:"required,oneof=google"`
	IDToken  string `json:"id_token" validate:"required"`
	Name     string `json:"name"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// MetricsDelta is the increment reported at the end of a training session.
type MetricsDelta struct {
	Time     float64 `json:"time" validate:"gte=0"`
	Calories float64 `json:"calories" validate:"gte=0"`
}
