package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort           string
	AppEnv            string
	AWSRegion         string
	AWSEndpointURL    string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID    string
	AWSSecretKey      string
	DynamoTables      DynamoTables
	S3BucketName      string
	S3PresignTTL      time.Duration
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	GoogleClientID    string
	SNSRegion         string
	// SNSAchievementTopicARN empty disables unlock fan-out.
	SNSAchievementTopicARN string
	RedisAddr              string // empty disables the catalog cache
	RedisPassword          string
	RedisDB                int
	CatalogCacheTTL        time.Duration
	MQTTBrokerURL          string // empty disables board messaging
	MQTTUsername           string
	MQTTPassword           string
	MQTTClientID           string
	// ProgressMaxAttempts bounds the read-evaluate-write loop on version conflicts.
	ProgressMaxAttempts int
	SentryDSN           string
	AllowedOrigins      []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Notifications string
	Workouts      string
	Exercises     string
	Boards        string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Workouts:      getEnv("DYNAMO_TABLE_WORKOUTS", "workouts"),
			Exercises:     getEnv("DYNAMO_TABLE_EXERCISES", "exercises"),
			Boards:        getEnv("DYNAMO_TABLE_BOARDS", "boards"),
		},
		S3BucketName:           getEnv("S3_BUCKET_NAME", "ledfit"),
		S3PresignTTL:           time.Duration(getEnvInt("S3_PRESIGN_TTL_MINUTES", 60)) * time.Minute,
		JWTPrivateKeyPath:      getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:       getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:              time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		GoogleClientID:         getEnv("GOOGLE_CLIENT_ID", ""),
		SNSRegion:              getEnv("SNS_REGION", getEnv("AWS_REGION", "us-east-1")),
		SNSAchievementTopicARN: getEnv("SNS_ACHIEVEMENT_TOPIC_ARN", ""),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		CatalogCacheTTL:        time.Duration(getEnvInt("CATALOG_CACHE_TTL_SECONDS", 300)) * time.Second,
		MQTTBrokerURL:          getEnv("MQTT_BROKER_URL", ""),
		MQTTUsername:           getEnv("MQTT_USERNAME", ""),
		MQTTPassword:           getEnv("MQTT_PASSWORD", ""),
		MQTTClientID:           getEnv("MQTT_CLIENT_ID", ""),
		ProgressMaxAttempts:    getEnvInt("PROGRESS_MAX_ATTEMPTS", 2),
		SentryDSN:              getEnv("SENTRY_DSN", ""),
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsDevelopment reports whether the app runs with APP_ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
