package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ledfit-api/internal/domain"
)

// batchGetLimit is the maximum number of keys DynamoDB accepts per BatchGetItem.
const batchGetLimit = 100

// ExerciseRepo provides read access to the exercises catalog.
type ExerciseRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewExerciseRepo(client *dynamodb.Client, tableName string) *ExerciseRepo {
	return &ExerciseRepo{client: client, tableName: tableName}
}

func (r *ExerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	return scanAll[domain.Exercise](ctx, r.client, r.tableName)
}

func (r *ExerciseRepo) Get(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldExerciseID, exerciseID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("exercise %s: %w", exerciseID, domain.ErrNotFound)
	}
	var e domain.Exercise
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, fmt.Errorf("unmarshal exercise: %w", err)
	}
	return &e, nil
}

// BatchGet loads the given exercises. Missing IDs are silently absent from the
// result and the order is not guaranteed.
func (r *ExerciseRepo) BatchGet(ctx context.Context, ids []string) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	for start := 0; start < len(ids); start += batchGetLimit {
		end := min(start+batchGetLimit, len(ids))
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		seen := make(map[string]bool, end-start)
		for _, id := range ids[start:end] {
			if seen[id] {
				continue
			}
			seen[id] = true
			keys = append(keys, strKey(fieldExerciseID, id))
		}

		request := map[string]types.KeysAndAttributes{r.tableName: {Keys: keys}}
		for len(request) > 0 {
			out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, err
			}
			var page []domain.Exercise
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &page); err != nil {
				return nil, fmt.Errorf("unmarshal exercises: %w", err)
			}
			exercises = append(exercises, page...)
			request = out.UnprocessedKeys
		}
	}
	return exercises, nil
}

// scanAll reads every item of a small table.
func scanAll[T any](ctx context.Context, client *dynamodb.Client, tableName string) ([]T, error) {
	items := []T{}
	p := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{TableName: aws.String(tableName)})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []T
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", tableName, err)
		}
		items = append(items, page...)
	}
	return items, nil
}
