package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Rabbit   RabbitConfig
	SMTP     SMTPConfig
	Gateway  GatewayConfig
	Token    TokenConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitConfig struct {
	URL   string
	Queue string
}

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
}

type GatewayConfig struct {
	BaseURL    string
	SuccessURL string
	CancelURL  string
}

type TokenConfig struct {
	Secret  string
	PassTTL time.Duration
}

type BookingConfig struct {
	PublicBaseURL  string
	PhoneRegion    string
	XPAmount       int
	BonusThreshold int
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := envInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: envOr("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	postgresPort, err := envInt("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     envOr("POSTGRES_HOST", "localhost"),
		Port:     postgresPort,
		SSLMode:  envOr("POSTGRES_SSLMODE", "disable"),
	}

	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid REDIS_DB: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	rabbitCfg := RabbitConfig{
		URL:   os.Getenv("RABBITMQ_URL"),
		Queue: envOr("RABBITMQ_QUEUE", "tablepass.events"),
	}

	smtpPort, err := envInt("SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SMTP_PORT: %w", op, err)
	}

	smtpCfg := SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     smtpPort,
		From:     os.Getenv("SMTP_FROM"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}

	gatewayCfg := GatewayConfig{
		BaseURL:    os.Getenv("PAYMENT_GATEWAY_URL"),
		SuccessURL: os.Getenv("PAYMENT_SUCCESS_URL"),
		CancelURL:  os.Getenv("PAYMENT_CANCEL_URL"),
	}

	tokenSecret := os.Getenv("PASS_TOKEN_SECRET")
	if tokenSecret == "" {
		return nil, fmt.Errorf("%s: missing PASS_TOKEN_SECRET", op)
	}

	passTTLHours, err := envInt("PASS_TOKEN_TTL_HOURS", 72)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid PASS_TOKEN_TTL_HOURS: %w", op, err)
	}

	tokenCfg := TokenConfig{
		Secret:  tokenSecret,
		PassTTL: time.Duration(passTTLHours) * time.Hour,
	}

	xpAmount, err := envInt("CHECKIN_XP_AMOUNT", 50)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid CHECKIN_XP_AMOUNT: %w", op, err)
	}

	bonusThreshold, err := envInt("PROMOTER_BONUS_THRESHOLD", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid PROMOTER_BONUS_THRESHOLD: %w", op, err)
	}

	bookingCfg := BookingConfig{
		PublicBaseURL:  envOr("PUBLIC_BASE_URL", "http://localhost:8080"),
		PhoneRegion:    envOr("DEFAULT_PHONE_REGION", "GB"),
		XPAmount:       xpAmount,
		BonusThreshold: bonusThreshold,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Rabbit:   rabbitCfg,
		SMTP:     smtpCfg,
		Gateway:  gatewayCfg,
		Token:    tokenCfg,
		Booking:  bookingCfg,
	}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
