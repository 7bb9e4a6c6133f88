package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the worker.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	DynamoDB  DynamoDBConfig  `mapstructure:"dynamodb"`
	SQS       SQSConfig       `mapstructure:"sqs"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	S3        S3Config        `mapstructure:"s3"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StoreConfig selects the plan store backend: "dynamodb" or "mongodb".
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// DatabaseConfig configures the MongoDB backend (used when store.backend is
// "mongodb").
type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type DynamoDBConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Table           string `mapstructure:"table"`
}

// SQSConfig covers both the inbound health queue and the outbound
// notification queue (they normally share an endpoint and credentials).
type SQSConfig struct {
	Endpoint                 string `mapstructure:"endpoint"`
	Region                   string `mapstructure:"region"`
	AccessKeyID              string `mapstructure:"access_key_id"`
	SecretAccessKey          string `mapstructure:"secret_access_key"`
	HealthQueueURL           string `mapstructure:"health_queue_url"`
	NotificationQueueURL     string `mapstructure:"notification_queue_url"`
	MaxMessages              int32  `mapstructure:"max_messages"`
	WaitTimeSeconds          int32  `mapstructure:"wait_time_seconds"`
	VisibilityTimeoutSeconds int32  `mapstructure:"visibility_timeout_seconds"`
}

type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Temperature    float64       `mapstructure:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// SchedulerConfig drives the poll loop cadence. PollInterval is the fixed
// delay between the end of one poll cycle and the start of the next.
type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling: sqs.health_queue_url -> SQS_HEALTH_QUEUE_URL
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// Defaults match the original deployment tuning.
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("store.backend", "dynamodb")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "opentrainer")
	viper.SetDefault("dynamodb.region", "us-east-1")
	viper.SetDefault("dynamodb.table", "training-metadata")
	viper.SetDefault("sqs.region", "us-east-1")
	viper.SetDefault("sqs.max_messages", 10)
	viper.SetDefault("sqs.wait_time_seconds", 20)
	viper.SetDefault("sqs.visibility_timeout_seconds", 30)
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4-turbo-preview")
	viper.SetDefault("openai.max_tokens", 4000)
	viper.SetDefault("openai.temperature", 0.7)
	viper.SetDefault("openai.request_timeout", "120s")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.poll_interval", "30s")

	err = viper.ReadInConfig()
	// Config file is optional; env vars and defaults can carry the whole setup.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
