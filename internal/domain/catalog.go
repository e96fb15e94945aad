package domain

type Exercise struct {
	ExerciseID  string  `json:"id" dynamodbav:"exercise_id"`
	Name        string  `json:"name" dynamodbav:"name"`
	Description string  `json:"description" dynamodbav:"description"`
	Duration    float64 `json:"duration" dynamodbav:"duration"` // seconds
	Calories    float64 `json:"calories" dynamodbav:"calories"`
	Image       string  `json:"image" dynamodbav:"image"` // S3 key or absolute URL
	Group       string  `json:"group" dynamodbav:"group"`
}

type Workout struct {
	WorkoutID   string     `json:"id" dynamodbav:"workout_id"`
	Name        string     `json:"name" dynamodbav:"name"`
	Description string     `json:"description" dynamodbav:"description"`
	Image       string     `json:"image" dynamodbav:"image"`
	TotalTime   float64    `json:"total_time" dynamodbav:"total_time"`
	Group       string     `json:"group" dynamodbav:"group"`
	ExerciseIDs []string   `json:"exercise_ids" dynamodbav:"exercise_ids"`
	Exercises   []Exercise `json:"exercises" dynamodbav:"-"`
}
