package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ledfit-api/internal/domain"
)

// WorkoutRepo provides read access to the workouts catalog.
type WorkoutRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewWorkoutRepo(client *dynamodb.Client, tableName string) *WorkoutRepo {
	return &WorkoutRepo{client: client, tableName: tableName}
}

func (r *WorkoutRepo) List(ctx context.Context) ([]domain.Workout, error) {
	return scanAll[domain.Workout](ctx, r.client, r.tableName)
}

func (r *WorkoutRepo) Get(ctx context.Context, workoutID string) (*domain.Workout, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldWorkoutID, workoutID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("workout %s: %w", workoutID, domain.ErrNotFound)
	}
	var w domain.Workout
	if err := attributevalue.UnmarshalMap(out.Item, &w); err != nil {
		return nil, fmt.Errorf("unmarshal workout: %w", err)
	}
	return &w, nil
}
