package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// JWTSecret signs and verifies access tokens. LoadConfig replaces the fallback.
var JWTSecret = []byte("logitrack_super_secret_2024")

// JWTExpiration is the lifetime of issued tokens
var JWTExpiration = 24 * time.Hour

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	CORSOrigins string `mapstructure:"corsOrigins"`
}

// Origins splits the comma separated CORS origin list
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// TTL parses Expiration, falling back to 24h
func (j JWTConfig) TTL() time.Duration {
	if d, err := time.ParseDuration(j.Expiration); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

type DraftsConfig struct {
	Dir string `mapstructure:"dir"`
	TTL string `mapstructure:"ttl"`
}

func (d DraftsConfig) Lifetime() time.Duration {
	if v, err := time.ParseDuration(d.TTL); err == nil && v > 0 {
		return v
	}
	return 72 * time.Hour
}

type KafkaConfig struct {
	Broker string `mapstructure:"broker"`
	Topic  string `mapstructure:"topic"`
}

type RabbitMQConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	Endpoint        string `mapstructure:"endpoint"`
	Prefix          string `mapstructure:"prefix"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

// AdminConfig seeds the first admin account
type AdminConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Drafts   DraftsConfig   `mapstructure:"drafts"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	S3       S3Config       `mapstructure:"s3"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

var envKeys = map[string]string{
	"server.port":        "SERVER_PORT",
	"server.mode":        "GIN_MODE",
	"server.corsOrigins": "CORS_ORIGINS",
	"database.path":      "DB_PATH",
	"jwt.secret":         "JWT_SECRET",
	"jwt.expiration":     "JWT_EXPIRATION",
	"drafts.dir":         "DRAFTS_DIR",
	"drafts.ttl":         "DRAFTS_TTL",
	"kafka.broker":       "KAFKA_BROKER",
	"kafka.topic":        "KAFKA_TOPIC",
	"rabbitmq.url":       "RABBITMQ_URL",
	"rabbitmq.queue":     "RABBITMQ_QUEUE",
	"s3.bucket":          "S3_BUCKET",
	"s3.region":          "S3_REGION",
	"s3.accessKeyID":     "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey": "S3_SECRET_ACCESS_KEY",
	"s3.endpoint":        "S3_ENDPOINT",
	"s3.prefix":          "S3_PREFIX",
	"mongo.uri":          "MONGO_URI",
	"mongo.dbName":       "MONGO_DBNAME",
	"admin.name":         "ADMIN_NAME",
	"admin.email":        "ADMIN_EMAIL",
	"admin.password":     "ADMIN_PASSWORD",
}

// LoadConfig reads <path>/config.yaml if present, then lets environment
// variables (and a .env file) override it. Every setting has a default.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.corsOrigins", "*")
	v.SetDefault("database.path", "logitrack.db")
	v.SetDefault("jwt.secret", string(JWTSecret))
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("drafts.dir", "data/drafts")
	v.SetDefault("drafts.ttl", "72h")
	v.SetDefault("kafka.topic", "shipment-events")
	v.SetDefault("rabbitmq.queue", "contact-notifications")
	v.SetDefault("s3.prefix", "exports/")
	v.SetDefault("mongo.dbName", "logitrack")
	v.SetDefault("admin.name", "Administrator")

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	JWTSecret = []byte(cfg.JWT.Secret)
	JWTExpiration = cfg.JWT.TTL()
	return cfg, nil
}
