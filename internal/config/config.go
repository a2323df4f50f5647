package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/recibohq/recibo/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Auth       AuthConfig       `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Gateway    GatewayConfig    `validate:"required"`
	Email      EmailConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type AuthConfig struct {
	// Secret verifies end-user bearer tokens (HS256). Token issuance is
	// owned by the identity service, not this process.
	Secret string
}

type BillingConfig struct {
	// Enabled gates every billing surface; disabled deployments return
	// 403 from the webhook and cron endpoints.
	Enabled bool
	// WebhookSecret is the HMAC-SHA256 key for inbound gateway webhooks.
	// Unset means the webhook endpoint fails closed with a 500.
	WebhookSecret string
	// CronSecret authenticates the external scheduler that triggers
	// dunning runs.
	CronSecret string
}

type GatewayConfig struct {
	BaseURL         string
	PrivateKey      string
	PublicKey       string
	IntegritySecret string
	Currency        string
	RedirectURL     string
}

type EmailConfig struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string
}

func NewConfig() (*Configuration, error) {
	// Best effort .env load for local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/recibo")

	v.SetEnvPrefix("RECIBO")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Auth:       AuthConfig{Secret: "test-auth-secret"},
		Billing: BillingConfig{
			Enabled:       true,
			WebhookSecret: "test-webhook-secret",
			CronSecret:    "test-cron-secret",
		},
		Gateway: GatewayConfig{
			BaseURL:         "https://sandbox.gateway.test/v1",
			PrivateKey:      "prv_test_key",
			PublicKey:       "pub_test_key",
			IntegritySecret: "test-integrity-secret",
			Currency:        "COP",
			RedirectURL:     "http://localhost:3000/billing/success",
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
