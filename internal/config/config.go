package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppHost          string
	AppPort          string
	CardURL          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	EventChannel     string
	JWTSecret        string
	CacheTTL         time.Duration
	MessengerTimeout time.Duration
	JudgeAPIKey      string
	JudgeBaseURL     string
	JudgeModel       string
	JudgeTimeout     time.Duration
	JudgeMaxTokens   int
	JudgeTemperature float64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppHost + c.AppPort
	}

	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// PublicURL returns the externally reachable base URL advertised on the
// agent card. Falls back to the listen address when not configured.
func (c Config) PublicURL() string {
	if c.CardURL != "" {
		return c.CardURL
	}
	return fmt.Sprintf("http://%s", c.HTTPAddress())
}

// Load reads configuration from command line flags, environment variables,
// and an optional .env file. Flags win over environment values.
func Load(arguments []string) (Config, error) {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("dialectic-api", pflag.ContinueOnError)
	host := flags.String("host", "", "host interface to bind")
	port := flags.String("port", "", "port to listen on")
	cardURL := flags.String("card-url", "", "externally reachable base URL for the agent card")
	if err := flags.Parse(arguments); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("DIALECTIC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Dialectic API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", "9019")
	v.SetDefault("event.channel", "dialectic:events")
	v.SetDefault("cache.ttl", "15m")
	v.SetDefault("messenger.timeout", "60s")
	v.SetDefault("judge.base_url", "https://api.studio.nebius.com/v1/")
	v.SetDefault("judge.model", "meta-llama/Llama-3.3-70B-Instruct")
	v.SetDefault("judge.timeout", "90s")
	v.SetDefault("judge.max_tokens", 1500)
	v.SetDefault("judge.temperature", 0.3)

	cacheTTL, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	messengerTimeout, err := time.ParseDuration(v.GetString("messenger.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid messenger timeout: %w", err)
	}

	judgeTimeout, err := time.ParseDuration(v.GetString("judge.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid judge timeout: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppHost:          v.GetString("app.host"),
		AppPort:          v.GetString("app.port"),
		CardURL:          v.GetString("card.url"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		EventChannel:     v.GetString("event.channel"),
		JWTSecret:        v.GetString("jwt.secret"),
		CacheTTL:         cacheTTL,
		MessengerTimeout: messengerTimeout,
		JudgeAPIKey:      v.GetString("judge.api_key"),
		JudgeBaseURL:     v.GetString("judge.base_url"),
		JudgeModel:       v.GetString("judge.model"),
		JudgeTimeout:     judgeTimeout,
		JudgeMaxTokens:   v.GetInt("judge.max_tokens"),
		JudgeTemperature: v.GetFloat64("judge.temperature"),
	}

	if *host != "" {
		cfg.AppHost = *host
	}
	if *port != "" {
		cfg.AppPort = *port
	}
	if *cardURL != "" {
		cfg.CardURL = *cardURL
	}

	return cfg, nil
}
