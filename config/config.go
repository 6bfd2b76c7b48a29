package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	MongoURI string `envconfig:"MONGO_URI" required:"true"`
	DBName   string `envconfig:"DB_NAME" default:"marketplace"`

	JWTSecret       string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin    int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`
	RefreshExpireHr int    `envconfig:"REFRESH_EXPIRE_HR" default:"720"`

	// Empty AMQPURL disables realtime push.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"marketplace.notifications"`

	MongoClient *mongo.Client `ignored:"true"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// ConnectMongo dials MongoDB and verifies the connection with a ping.
func (cfg *Config) ConnectMongo(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	cfg.MongoClient = client
	return nil
}

// DB returns the configured database handle.
func (cfg *Config) DB() *mongo.Database {
	return cfg.MongoClient.Database(cfg.DBName)
}
