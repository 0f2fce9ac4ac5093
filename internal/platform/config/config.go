package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Broadcast drivers.
const (
	BroadcastNone  = "none"
	BroadcastRedis = "redis"
	BroadcastKafka = "kafka"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	StoreDriver   string

	JWTSecret        string
	JWTIssuer        string
	AdminExternalIDs []string

	ReferralPercent int
	TxMaxAttempts   int

	DepositAddress      string
	DepositPollInterval time.Duration
	DepositPollLimit    int
	BidExpiryInterval   time.Duration

	TonCenterURL         string
	TonCenterAPIKey      string
	WithdrawalServiceURL string

	TelegramBotToken string
	BroadcastDriver  string
	RedisURL         string
	KafkaBrokers     []string
	KafkaTopic       string
	StatsCacheTTL    time.Duration

	RateLimit          string
	CORSAllowedOrigins []string
	PosthogAPIKey      string
	PosthogEndpoint    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "collectibles-market")
	viper.SetDefault("ADMIN_EXTERNAL_IDS", "")
	viper.SetDefault("REFERRAL_PERCENT", 2)
	viper.SetDefault("TX_MAX_ATTEMPTS", 3)
	viper.SetDefault("DEPOSIT_ADDRESS", "")
	viper.SetDefault("DEPOSIT_POLL_INTERVAL", "15s")
	viper.SetDefault("DEPOSIT_POLL_LIMIT", 50)
	viper.SetDefault("BID_EXPIRY_INTERVAL", "1m")
	viper.SetDefault("TONCENTER_URL", "https://toncenter.com/api/v2")
	viper.SetDefault("TONCENTER_API_KEY", "")
	viper.SetDefault("WITHDRAWAL_SERVICE_URL", "")
	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("BROADCAST_DRIVER", BroadcastNone)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "market-events")
	viper.SetDefault("STATS_CACHE_TTL", "30s")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.StoreDriver = strings.ToLower(viper.GetString("STORE_DRIVER"))
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
		if cfg.IsProduction {
			return nil, fmt.Errorf("STORE_DRIVER=%s is not allowed in production", StoreDriverMemory)
		}
		log.Println("Warning: using the in-memory store, all state is lost on restart.")
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.AdminExternalIDs = splitList(viper.GetString("ADMIN_EXTERNAL_IDS"))

	cfg.ReferralPercent = viper.GetInt("REFERRAL_PERCENT")
	if cfg.ReferralPercent < 0 || cfg.ReferralPercent > 100 {
		return nil, fmt.Errorf("REFERRAL_PERCENT must be within [0, 100], got %d", cfg.ReferralPercent)
	}
	cfg.TxMaxAttempts = viper.GetInt("TX_MAX_ATTEMPTS")
	if cfg.TxMaxAttempts < 1 {
		log.Printf("Warning: invalid TX_MAX_ATTEMPTS %d. Defaulting to 3.\n", cfg.TxMaxAttempts)
		cfg.TxMaxAttempts = 3
	}

	cfg.DepositAddress = viper.GetString("DEPOSIT_ADDRESS")
	if cfg.DepositAddress == "" {
		log.Println("Warning: DEPOSIT_ADDRESS not set. Deposit polling is disabled.")
	}
	cfg.DepositPollInterval = durationOrDefault("DEPOSIT_POLL_INTERVAL", 15*time.Second)
	cfg.DepositPollLimit = viper.GetInt("DEPOSIT_POLL_LIMIT")
	if cfg.DepositPollLimit <= 0 {
		cfg.DepositPollLimit = 50
	}
	cfg.BidExpiryInterval = durationOrDefault("BID_EXPIRY_INTERVAL", time.Minute)

	cfg.TonCenterURL = strings.TrimRight(viper.GetString("TONCENTER_URL"), "/")
	cfg.TonCenterAPIKey = viper.GetString("TONCENTER_API_KEY")
	cfg.WithdrawalServiceURL = strings.TrimRight(viper.GetString("WITHDRAWAL_SERVICE_URL"), "/")
	if cfg.WithdrawalServiceURL == "" {
		log.Println("Warning: WITHDRAWAL_SERVICE_URL not set. Withdrawals will be rejected.")
	}

	cfg.TelegramBotToken = viper.GetString("TELEGRAM_BOT_TOKEN")
	cfg.BroadcastDriver = strings.ToLower(viper.GetString("BROADCAST_DRIVER"))
	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.KafkaBrokers = splitList(viper.GetString("KAFKA_BROKERS"))
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")
	switch cfg.BroadcastDriver {
	case BroadcastNone:
	case BroadcastRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when BROADCAST_DRIVER=%s", BroadcastRedis)
		}
	case BroadcastKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required when BROADCAST_DRIVER=%s", BroadcastKafka)
		}
	default:
		return nil, fmt.Errorf("unknown BROADCAST_DRIVER %q", cfg.BroadcastDriver)
	}
	cfg.StatsCacheTTL = durationOrDefault("STATS_CACHE_TTL", 30*time.Second)

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
