package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	PayOS     PayOSConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Events    EventsConfig
	Stream    StreamConfig
	Donation  DonationConfig
	Receipt   ReceiptConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	PublicBaseURL  string
}

type DatabaseConfig struct {
	Driver          string // mysql or postgres
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// PayOSConfig holds the merchant credentials. All three keys must be set for the
// live gateway to be used; otherwise the stub gateway answers every call.
type PayOSConfig struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string
	Timeout     time.Duration
}

func (c PayOSConfig) Configured() bool {
	return c.ClientID != "" && c.APIKey != "" && c.ChecksumKey != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	Backend  string // memory or redis
	TTL      time.Duration
	Capacity uint64
}

type EventsConfig struct {
	Backend        string // local or redis
	Channel        string
	MaxSubscribers int
}

type StreamConfig struct {
	PingInterval time.Duration
	BufferSize   int
	PollInterval time.Duration
}

type DonationConfig struct {
	MonthlyGoal int64
	RecentLimit int
}

type ReceiptConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// Load reads .env (if present) and the process environment on top of the defaults.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Env:            getEnv("APP_ENV", "development"),
			ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 0), // streams are long-lived
			AllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGIN", "*")},
			PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DATABASE_URL", "nuoitoi:nuoitoi@tcp(localhost:3306)/nuoitoi?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		PayOS: PayOSConfig{
			BaseURL:     getEnv("PAYOS_BASE_URL", "https://api-merchant.payos.vn"),
			ClientID:    os.Getenv("PAYOS_CLIENT_ID"),
			APIKey:      os.Getenv("PAYOS_API_KEY"),
			ChecksumKey: os.Getenv("PAYOS_CHECKSUM_KEY"),
			Timeout:     getDuration("PAYOS_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Backend:  getEnv("CACHE_BACKEND", "memory"),
			TTL:      getDuration("PENDING_PAYMENT_TTL", 30*time.Minute),
			Capacity: uint64(getInt("PENDING_PAYMENT_CAPACITY", 1000)),
		},
		Events: EventsConfig{
			Backend:        getEnv("EVENT_BUS", "local"),
			Channel:        getEnv("EVENT_BUS_CHANNEL", "donations:new"),
			MaxSubscribers: getInt("EVENT_BUS_MAX_SUBSCRIBERS", 1000),
		},
		Stream: StreamConfig{
			PingInterval: getDuration("STREAM_PING_INTERVAL", 30*time.Second),
			BufferSize:   getInt("STREAM_BUFFER_SIZE", 256),
			PollInterval: getDuration("PAYMENT_POLL_INTERVAL", 3*time.Second),
		},
		Donation: DonationConfig{
			MonthlyGoal: int64(getInt("MONTHLY_GOAL", 10000000)),
			RecentLimit: getInt("RECENT_DONATIONS_LIMIT", 20),
		},
		Receipt: ReceiptConfig{
			Secret: getEnv("RECEIPT_SECRET", "change-me-in-production"),
			Expiry: getDuration("RECEIPT_EXPIRY", 30*time.Minute),
			Issuer: "nuoitoi",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 100),
			Burst:             getInt("RATE_LIMIT_BURST", 20),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
