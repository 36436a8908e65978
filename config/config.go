package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                  string
	PostgresUser          string
	PostgresPassword      string
	PostgresDB            string
	PostgresHost          string
	PostgresPort          string
	PostgresSSLMode       string
	PostgresTimeZone      string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	KafkaBrokers          string // comma-separated; empty disables event publishing
	PaymentEventsTopic    string
	RedisAddr             string // empty disables webhook dedup fast-path
	ReclaimInterval       time.Duration
	ReclaimBatch          int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                  getEnv("PORT", "8086"),
		PostgresUser:          os.Getenv("POSTGRES_USER"),
		PostgresPassword:      os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:            os.Getenv("POSTGRES_DB"),
		PostgresHost:          os.Getenv("POSTGRES_HOST"),
		PostgresPort:          getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone:      getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		KafkaBrokers:          os.Getenv("KAFKA_BROKERS"),
		PaymentEventsTopic:    getEnv("PAYMENT_EVENTS_TOPIC", "payment-events"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" ||
		cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" || cfg.RazorpayWebhookSecret == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	interval, err := time.ParseDuration(getEnv("RECLAIM_INTERVAL", "2m"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("invalid RECLAIM_INTERVAL")
	}
	cfg.ReclaimInterval = interval

	batch, err := strconv.Atoi(getEnv("RECLAIM_BATCH", "50"))
	if err != nil || batch < 1 {
		return nil, fmt.Errorf("invalid RECLAIM_BATCH")
	}
	cfg.ReclaimBatch = batch

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
