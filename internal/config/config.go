package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/stayandpark/service-frontdesk/internal/platform/database"
)

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

// KafkaConfig holds broker settings. An empty broker list disables Kafka.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// ServiceConfig holds all configuration for the frontdesk service.
type ServiceConfig struct {
	Port                   string
	AppEnv                 string
	DBConfig               database.PostgresConfig
	JWTConfig              JWTConfig
	KafkaConfig            KafkaConfig
	PasswordHasher         string
	CORSAllowedOrigins     []string
	AttendanceHistoryLimit int
	MigrationsDir          string
}

// Load reads configuration from a local .env file (if present) and the environment.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:   normalizePort(v.GetString("SERVICE_PORT")),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt("DB_MAX_CONNS"),
			LogSQL:   v.GetBool("DB_LOG_SQL"),
		},
		JWTConfig: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			AccessTTL: v.GetDuration("JWT_ACCESS_TTL"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		PasswordHasher:         strings.ToLower(v.GetString("PASSWORD_HASHER")),
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		AttendanceHistoryLimit: v.GetInt("ATTENDANCE_HISTORY_LIMIT"),
		MigrationsDir:          v.GetString("MIGRATIONS_DIR"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "frontdesk")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("JWT_ACCESS_TTL", "1h")
	v.SetDefault("KAFKA_GROUP_PREFIX", "frontdesk-")
	v.SetDefault("PASSWORD_HASHER", "argon2id")
	v.SetDefault("ATTENDANCE_HISTORY_LIMIT", 30)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
}

func (c *ServiceConfig) validate() error {
	if c.JWTConfig.Secret == "" {
		if c.AppEnv != "development" {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
		c.JWTConfig.Secret = "dev-only-secret-change-in-prod"
	}
	if c.JWTConfig.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}
	switch c.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("PASSWORD_HASHER must be argon2id or bcrypt, got %q", c.PasswordHasher)
	}
	return nil
}

func normalizePort(p string) string {
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
