package dynamo

// DynamoDB attribute names used in expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID       = "user_id"
	fieldEmail        = "email"
	fieldFavs         = "favs"
	fieldTotals       = "totals"
	fieldAchievements = "achievements"
	fieldVersion      = "version"
	fieldUpdatedAt    = "updated_at"
	fieldRead         = "read"
	fieldDeleted      = "deleted"
	fieldCreatedAt    = "created_at"
	fieldIsConnected  = "is_connected"
	fieldLastSeen     = "last_seen"

	fieldNotificationID = "notification_id"
	fieldExerciseID     = "exercise_id"
	fieldWorkoutID      = "workout_id"
	fieldBoardID        = "board_id"

	indexEmail             = "email-index"
	indexUserNotifications = "user_id-created_at-index"
)
