package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	PostgresURL       string
	KafkaBrokers      []string
	OrderCreatedTopic string
	ConsumerGroup     string
	JWTSecret         string
	CatalogServiceURL string
	APIServiceURL     string
	ServiceVersion    string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(defaultPort string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		Port:              getEnv("PORT", defaultPort),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		OrderCreatedTopic: getEnv("ORDER_CREATED_TOPIC", "order.created"),
		ConsumerGroup:     getEnv("CONSUMER_GROUP", "checkout-reconciler"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		CatalogServiceURL: os.Getenv("CATALOG_SERVICE_URL"),
		APIServiceURL:     os.Getenv("API_SERVICE_URL"),
		ServiceVersion:    getEnv("SERVICE_VERSION", "0.1.0"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
