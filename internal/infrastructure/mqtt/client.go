package mqttinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/ledfit-api/internal/config"
	"github.com/ledfit-api/internal/domain"
	"github.com/ledfit-api/internal/pkg/id"
)

// Board topics: ledfit/boards/{boardID}/{commands|time|status}.
const (
	topicRoot     = "ledfit/boards"
	topicStatuses = topicRoot + "/+/status"

	qosAtLeastOnce byte = 1
	connectWait         = 5 * time.Second
)

// statusRecorder persists what boards report about themselves.
// connected is nil when the report only proves the board is alive.
type statusRecorder interface {
	RecordStatus(ctx context.Context, boardID string, connected *bool, seenAt time.Time) error
}

// broker is the part of paho.Client the command side uses.
type broker interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	IsConnectionOpen() bool
}

// Client sends commands to boards and records the status they publish.
type Client struct {
	broker   broker
	statuses statusRecorder
	now      func() time.Time
	close    func()
}

type commandMessage struct {
	Command         domain.BoardCommand `json:"command"`
	ClientTimestamp int64               `json:"clientTimestamp"`
}

type timeMessage struct {
	Duration        int64               `json:"duration"`
	ClientTimestamp int64               `json:"clientTimestamp"`
	Stage           domain.WorkoutStage `json:"etapa"`
}

type statusMessage struct {
	Status string `json:"status"`
}

// NewClient connects to cfg.MQTTBrokerURL and subscribes to board status
// topics on every (re)connect. If the broker is slow to answer the client keeps
// retrying in the background and publishes fail with domain.ErrUnavailable meanwhile.
func NewClient(cfg *config.Config, statuses statusRecorder) (*Client, error) {
	c := &Client{statuses: statuses, now: func() time.Time { return time.Now().UTC() }}

	clientID := cfg.MQTTClientID
	if clientID == "" {
		clientID = "ledfit-api-" + id.New()
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.MQTTBrokerURL).
		SetClientID(clientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(pc paho.Client) {
			slog.Info("mqtt connected", "broker", cfg.MQTTBrokerURL)
			tok := pc.Subscribe(topicStatuses, qosAtLeastOnce, c.onStatus)
			if tok.WaitTimeout(connectWait) && tok.Error() != nil {
				slog.Error("mqtt subscribe failed", "topic", topicStatuses, "err", tok.Error())
			}
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("mqtt connection lost", "err", err)
		})

	pc := paho.NewClient(opts)
	tok := pc.Connect()
	if tok.WaitTimeout(connectWait) && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.MQTTBrokerURL, tok.Error())
	}
	c.broker = pc
	c.close = func() { pc.Disconnect(250) }
	return c, nil
}

func (c *Client) Close() {
	if c.close != nil {
		c.close()
	}
}

func (c *Client) SendCommand(ctx context.Context, boardID string, cmd domain.BoardCommand, clientTimestamp int64) error {
	return c.publish(ctx, boardTopic(boardID, "commands"), commandMessage{Command: cmd, ClientTimestamp: clientTimestamp})
}

func (c *Client) SyncTime(ctx context.Context, boardID string, sync domain.TimeSync) error {
	return c.publish(ctx, boardTopic(boardID, "time"), timeMessage{
		Duration:        sync.Duration,
		ClientTimestamp: sync.ClientTimestamp,
		Stage:           sync.Stage,
	})
}

func (c *Client) publish(ctx context.Context, topic string, msg interface{}) error {
	if !c.broker.IsConnectionOpen() {
		return fmt.Errorf("mqtt broker not connected: %w", domain.ErrUnavailable)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mqtt message: %w", err)
	}
	tok := c.broker.Publish(topic, qosAtLeastOnce, false, payload)
	select {
	case <-tok.Done():
		if err := tok.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		slog.DebugContext(ctx, "mqtt message published", "topic", topic)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) onStatus(_ paho.Client, msg paho.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.handleStatus(ctx, msg.Topic(), msg.Payload()); err != nil {
		slog.Warn("board status not recorded", "topic", msg.Topic(), "err", err)
	}
}

// handleStatus records a status report. "connected", "received" and
// "heartbeat" mark the board connected, "disconnected" marks it offline and
// anything else only refreshes last_seen.
func (c *Client) handleStatus(ctx context.Context, topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0]+"/"+parts[1] != topicRoot || parts[3] != "status" || parts[2] == "" {
		return fmt.Errorf("unexpected status topic %q", topic)
	}
	var msg statusMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode status payload: %w", err)
	}

	var connected *bool
	switch msg.Status {
	case "connected", "received", "heartbeat":
		v := true
		connected = &v
	case "disconnected":
		v := false
		connected = &v
	}
	return c.statuses.RecordStatus(ctx, parts[2], connected, c.now())
}

func boardTopic(boardID, leaf string) string {
	return topicRoot + "/" + boardID + "/" + leaf
}
