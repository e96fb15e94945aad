package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ledfit-api/internal/domain"
)

// BoardRepo provides typed DynamoDB operations for the boards table.
// Connection state is written only from the boards' own status reports.
type BoardRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBoardRepo(client *dynamodb.Client, tableName string) *BoardRepo {
	return &BoardRepo{client: client, tableName: tableName}
}

func (r *BoardRepo) Get(ctx context.Context, boardID string) (*domain.Board, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldBoardID, boardID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("board %s: %w", boardID, domain.ErrNotFound)
	}
	var b domain.Board
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, fmt.Errorf("unmarshal board: %w", err)
	}
	return &b, nil
}

// RecordStatus stores a status report from a board. connected is left
// untouched when nil. Reports for unknown boards return domain.ErrNotFound.
func (r *BoardRepo) RecordStatus(ctx context.Context, boardID string, connected *bool, seenAt time.Time) error {
	updates := map[string]interface{}{fieldLastSeen: seenAt}
	if connected != nil {
		updates[fieldIsConnected] = *connected
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#id"] = fieldBoardID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldBoardID, boardID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("board %s: %w", boardID, domain.ErrNotFound)
	}
	return err
}
