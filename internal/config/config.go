package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// BotConfig configures the activity ingestion bot.
type BotConfig struct {
	DiscordBotToken string `koanf:"discord_bot_token" validate:"required"`
	DiscordAppID    string `koanf:"discord_app_id"`
	GuildID         string `koanf:"discord_guild_id"`
	DatabaseURL     string `koanf:"database_url" validate:"required"`

	PointsPerMessage     int `koanf:"points_per_message" validate:"min=1"`
	MaxMessagesPerMinute int `koanf:"max_messages_per_minute" validate:"min=1"`

	AdminAddr  string `koanf:"admin_addr"`
	AdminToken string `koanf:"admin_token"`

	LogLevel string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
}

// ClientConfig configures the community client CLI.
type ClientConfig struct {
	RPCURL     string `koanf:"rpc_url" validate:"required,url"`
	APIBaseURL string `koanf:"api_base_url" validate:"required,url"`
	RedisURL   string `koanf:"redis_url"`

	PrivateKey string `koanf:"private_key"`
	SiweDomain string `koanf:"siwe_domain" validate:"required"`

	BadgeRegistryAddress string `koanf:"badge_registry_address" validate:"required"`
	EASAddress           string `koanf:"eas_address" validate:"required"`
	ResolverAddress      string `koanf:"resolver_address" validate:"required"`
	ActivityTokenAddress string `koanf:"activity_token_address" validate:"required"`
	SchemaID             string `koanf:"schema_id" validate:"required"`

	ConfirmationsBadge       uint64 `koanf:"confirmations_badge" validate:"min=1"`
	ConfirmationsAttestation uint64 `koanf:"confirmations_attestation" validate:"min=1"`

	LogLevel string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
}

func defaultBotConfig() BotConfig {
	return BotConfig{
		PointsPerMessage:     1,
		MaxMessagesPerMinute: 10,
		AdminAddr:            ":8090",
		LogLevel:             "info",
	}
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		SiweDomain:               "guild-genesis.xyz",
		ConfirmationsBadge:       6,
		ConfirmationsAttestation: 1,
		LogLevel:                 "info",
	}
}

// LoadBot loads the bot configuration from the environment over built-in
// defaults.
func LoadBot() (*BotConfig, error) {
	cfg := defaultBotConfig()
	if err := load(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient loads the client configuration from the environment over
// built-in defaults.
func LoadClient() (*ClientConfig, error) {
	cfg := defaultClientConfig()
	if err := load(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// load layers environment variables over the defaults already present in cfg
// and validates the result. HERALD_RPC_URL and RPC_URL both map to rpc_url;
// the prefixed form wins when both are set.
func load(cfg interface{}) error {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	if err := k.Load(env.Provider("HERALD_", ".", func(s string) string {
		return envKey(strings.TrimPrefix(s, "HERALD_"))
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func envKey(s string) string {
	return strings.ToLower(s)
}
