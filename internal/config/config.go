package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string
	TTL             int
}

type ReminderConfig struct {
	Enabled  bool
	Interval time.Duration
	Lead     time.Duration
}

type ScheduleConfig struct {
	ConflictWindow time.Duration
}

type ClientsConfig struct {
	PhonePrefix string
}

type ServerConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Push        PushConfig
	Reminder    ReminderConfig
	Schedule    ScheduleConfig
	Clients     ClientsConfig
	Server      ServerConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  v.GetString("PUSH_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: v.GetString("PUSH_VAPID_PRIVATE_KEY"),
			Subject:         v.GetString("PUSH_SUBJECT"),
			TTL:             v.GetInt("PUSH_TTL"),
		},
		Reminder: ReminderConfig{
			Enabled:  v.GetBool("REMINDER_ENABLED"),
			Interval: v.GetDuration("REMINDER_INTERVAL"),
			Lead:     v.GetDuration("REMINDER_LEAD"),
		},
		Schedule: ScheduleConfig{
			ConflictWindow: v.GetDuration("SCHEDULE_CONFLICT_WINDOW"),
		},
		Clients: ClientsConfig{
			PhonePrefix: v.GetString("CLIENTS_PHONE_PREFIX"),
		},
		Server: ServerConfig{
			RateLimitPerSec: v.GetFloat64("SERVER_RATE_LIMIT_PER_SEC"),
			RateLimitBurst:  v.GetInt("SERVER_RATE_LIMIT_BURST"),
			CacheTTL:        v.GetDuration("SERVER_CACHE_TTL"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.Reminder.Interval <= 0 {
		cfg.Reminder.Interval = time.Minute
	}
	if cfg.Reminder.Lead <= 0 {
		cfg.Reminder.Lead = time.Hour
	}
	if cfg.Schedule.ConflictWindow <= 0 {
		cfg.Schedule.ConflictWindow = time.Minute
	}
	if cfg.Clients.PhonePrefix == "" {
		cfg.Clients.PhonePrefix = "+54"
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTL <= 0 {
		cfg.Server.CacheTTL = 5 * time.Minute
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Reminder.Enabled && (cfg.Push.VAPIDPublicKey == "" || cfg.Push.VAPIDPrivateKey == "") {
		return fmt.Errorf("PUSH_VAPID_PUBLIC_KEY and PUSH_VAPID_PRIVATE_KEY are required when REMINDER_ENABLED is set")
	}
	return nil
}
