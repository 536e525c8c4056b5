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
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type SettlementConfig struct {
	TaxRatePercent    int
	TaxCutoffDay      int
	SchedulerInterval time.Duration
}

type PaymentConfig struct {
	BaseURL string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Settlement  SettlementConfig
	Payment     PaymentConfig
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
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Settlement: SettlementConfig{
			TaxRatePercent:    v.GetInt("SETTLEMENT_TAX_RATE_PERCENT"),
			TaxCutoffDay:      v.GetInt("SETTLEMENT_TAX_CUTOFF_DAY"),
			SchedulerInterval: v.GetDuration("SCHEDULER_INTERVAL"),
		},
		Payment: PaymentConfig{
			BaseURL: v.GetString("PAYMENT_BASE_URL"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7143
	}
	if cfg.Settlement.TaxRatePercent == 0 {
		cfg.Settlement.TaxRatePercent = 7
	}
	if cfg.Settlement.TaxCutoffDay == 0 {
		cfg.Settlement.TaxCutoffDay = 20
	}
	if cfg.Settlement.SchedulerInterval == 0 {
		cfg.Settlement.SchedulerInterval = 5 * time.Minute
	}
	if cfg.Payment.BaseURL == "" {
		cfg.Payment.BaseURL = "https://pay.trackdeal.app"
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
	if cfg.Settlement.TaxCutoffDay < 1 || cfg.Settlement.TaxCutoffDay > 28 {
		return fmt.Errorf("SETTLEMENT_TAX_CUTOFF_DAY must be between 1 and 28")
	}
	if cfg.Settlement.TaxRatePercent < 0 || cfg.Settlement.TaxRatePercent > 100 {
		return fmt.Errorf("SETTLEMENT_TAX_RATE_PERCENT must be between 0 and 100")
	}
	return nil
}
