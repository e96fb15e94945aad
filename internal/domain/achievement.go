package domain

import (
	"fmt"
	"math"
	"strconv"
)

// AchievementKind selects which total an achievement threshold is compared against.
type AchievementKind string

const (
	KindTime  AchievementKind = "time"  // time trained
	KindPlus  AchievementKind = "plus"  // sessions completed
	KindCheck AchievementKind = "check" // calories burned
)

func (k AchievementKind) Valid() bool {
	switch k {
	case KindTime, KindPlus, KindCheck:
		return true
	}
	return false
}

// Achievement is a per-user milestone. Key holds the numeric threshold as a string.
// Unlocked only ever moves from false to true.
type Achievement struct {
	Key      string          `json:"key" dynamodbav:"key"`
	Title    string          `json:"title" dynamodbav:"title"`
	Content  string          `json:"content" dynamodbav:"content"`
	Kind     AchievementKind `json:"kind" dynamodbav:"kind"`
	Unlocked bool            `json:"unlocked" dynamodbav:"unlocked"`
}

// Threshold parses Key as a finite number.
func (a Achievement) Threshold() (float64, error) {
	v, err := strconv.ParseFloat(a.Key, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("achievement key %q is not numeric: %w", a.Key, ErrBadRequest)
	}
	return v, nil
}

// Validate rejects records that could never be evaluated.
func (a Achievement) Validate() error {
	if _, err := a.Threshold(); err != nil {
		return err
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("achievement %q has unknown kind %q: %w", a.Key, a.Kind, ErrBadRequest)
	}
	return nil
}

// DefaultAchievements is the list seeded onto every new account.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{Key: "1", Kind: KindPlus, Title: "First workout", Content: "You completed your first workout!"},
		{Key: "10", Kind: KindPlus, Title: "Getting consistent", Content: "You completed 10 workouts."},
		{Key: "50", Kind: KindPlus, Title: "Half a hundred", Content: "You completed 50 workouts."},
		{Key: "3600", Kind: KindTime, Title: "First hour", Content: "You trained for a full hour."},
		{Key: "36000", Kind: KindTime, Title: "Ten hours in", Content: "You trained for ten hours."},
		{Key: "500", Kind: KindCheck, Title: "Burner", Content: "You burned 500 calories."},
		{Key: "5000", Kind: KindCheck, Title: "Furnace", Content: "You burned 5000 calories."},
	}
}
