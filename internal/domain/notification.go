package domain

import "time"

type Notification struct {
	NotificationID string          `json:"id" dynamodbav:"notification_id"`
	UserID         string          `json:"user_id" dynamodbav:"user_id"`
	Title          string          `json:"title" dynamodbav:"title"`
	Content        string          `json:"content" dynamodbav:"content"`
	Kind           AchievementKind `json:"kind" dynamodbav:"kind"`
	Read           bool            `json:"read" dynamodbav:"read"`
	Deleted        bool            `json:"-" dynamodbav:"deleted"`
	CreatedAt      time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time       `json:"updated" dynamodbav:"updated_at"`
}

type CreateNotificationRequest struct {
	Title   string          `json:"title" validate:"required"`
	Content string          `json:"content" validate:"required"`
	Kind    AchievementKind `json:"kind" validate:"omitempty,achievement_kind"`
}
