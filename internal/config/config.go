package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LedgerConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
	MintPolicy   string
}

type PaymentRequestConfig struct {
	TTL       time.Duration
	ImageSize int
}

// BootstrapAdmin is created at startup when the in-memory store is used.
type BootstrapAdmin struct {
	Email    string
	Password string
}

// MinJWTSecretLength is the shortest HS256 key the server accepts.
const MinJWTSecretLength = 32

type Config struct {
	Server          ServerConfig
	Ledger          LedgerConfig
	PaymentRequests PaymentRequestConfig
	// StoreBackend is "postgres" or "memory".
	StoreBackend string
	AutoMigrate  bool
	Admin        BootstrapAdmin
	JWTSecret    string
}

// Init points viper at the .env file and binds the environment variables
// every package reads. Missing config files are not an error.
func Init(configFile string) {
	if configFile == "" {
		configFile = ".env"
	}
	viper.SetConfigFile(configFile)
	viper.AutomaticEnv()

	bindings := map[string]string{
		"server.port":            "PORT",
		"server.allowed_origins": "ALLOWED_ORIGINS",

		"database.host":         "DATABASE_HOST",
		"database.port":         "DATABASE_PORT",
		"database.user":         "DATABASE_USER",
		"database.password":     "DATABASE_PASSWORD",
		"database.name":         "DATABASE_NAME",
		"database.ssl_mode":     "DATABASE_SSL_MODE",
		"database.auto_migrate": "DATABASE_AUTO_MIGRATE",
		"store.backend":         "STORE_BACKEND",

		"admin.email":    "ADMIN_EMAIL",
		"admin.password": "ADMIN_PASSWORD",

		"redis.host":     "REDIS_HOST",
		"redis.port":     "REDIS_PORT",
		"redis.password": "REDIS_PASSWORD",
		"redis.db":       "REDIS_DB",

		"jwt.secret_key":   "JWT_SECRET_KEY",
		"jwt.expiry_hours": "JWT_EXPIRY_HOURS",

		"argon2.time":        "ARGON2_TIME",
		"argon2.memory":      "ARGON2_MEMORY",
		"argon2.threads":     "ARGON2_THREADS",
		"argon2.key_length":  "ARGON2_KEY_LENGTH",
		"argon2.salt_length": "ARGON2_SALT_LENGTH",

		"ledger.max_retries":   "LEDGER_MAX_RETRIES",
		"ledger.retry_backoff": "LEDGER_RETRY_BACKOFF",
		"ledger.mint_policy":   "LEDGER_MINT_POLICY",

		"payment_requests.ttl":        "PAYMENT_REQUEST_TTL",
		"payment_requests.image_size": "PAYMENT_REQUEST_IMAGE_SIZE",
	}
	for key, env := range bindings {
		viper.BindEnv(key, env)
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.allowed_origins", "*")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.shutdown_timeout", 30*time.Second)

	viper.SetDefault("database.auto_migrate", false)
	viper.SetDefault("store.backend", "postgres")

	viper.SetDefault("jwt.expiry_hours", 24*7)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	viper.SetDefault("ledger.max_retries", 3)
	viper.SetDefault("ledger.retry_backoff", 25*time.Millisecond)
	viper.SetDefault("ledger.mint_policy", "log_only")

	viper.SetDefault("payment_requests.ttl", 15*time.Minute)
	viper.SetDefault("payment_requests.image_size", 256)
}

// Load reads the typed sections. Call Init first.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            viper.GetString("server.port"),
			AllowedOrigins:  splitList(viper.GetString("server.allowed_origins")),
			ReadTimeout:     viper.GetDuration("server.read_timeout"),
			WriteTimeout:    viper.GetDuration("server.write_timeout"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		},
		Ledger: LedgerConfig{
			MaxRetries:   viper.GetInt("ledger.max_retries"),
			RetryBackoff: viper.GetDuration("ledger.retry_backoff"),
			MintPolicy:   viper.GetString("ledger.mint_policy"),
		},
		PaymentRequests: PaymentRequestConfig{
			TTL:       viper.GetDuration("payment_requests.ttl"),
			ImageSize: viper.GetInt("payment_requests.image_size"),
		},
		StoreBackend: strings.ToLower(viper.GetString("store.backend")),
		AutoMigrate:  viper.GetBool("database.auto_migrate"),
		Admin: BootstrapAdmin{
			Email:    viper.GetString("admin.email"),
			Password: viper.GetString("admin.password"),
		},
		JWTSecret: viper.GetString("jwt.secret_key"),
	}
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is not set")
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes, got %d", MinJWTSecretLength, len(c.JWTSecret))
	}
	switch c.StoreBackend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
