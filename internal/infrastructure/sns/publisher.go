package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/ledfit-api/internal/config"
	"github.com/ledfit-api/internal/domain"
)

// UnlockEvent is the message body published when an achievement is unlocked.
type UnlockEvent struct {
	NotificationID string                 `json:"notification_id"`
	UserID         string                 `json:"user_id"`
	Kind           domain.AchievementKind `json:"kind"`
	Title          string                 `json:"title"`
	Content        string                 `json:"content"`
	CreatedAt      time.Time              `json:"created_at"`
}

type publishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher fans achievement unlocks out to an SNS topic.
type Publisher struct {
	client   publishAPI
	topicARN string
}

func NewPublisher(cfg *config.Config) (*Publisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.SNSRegion)}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	var clientOpts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &Publisher{client: sns.NewFromConfig(awsCfg, clientOpts...), topicARN: cfg.SNSAchievementTopicARN}, nil
}

func (p *Publisher) PublishUnlocked(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(UnlockEvent{
		NotificationID: n.NotificationID,
		UserID:         n.UserID,
		Kind:           n.Kind,
		Title:          n.Title,
		Content:        n.Content,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal unlock event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {DataType: aws.String("String"), StringValue: aws.String(string(n.Kind))},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
