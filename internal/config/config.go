package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL    string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	ClinicName     string   `mapstructure:"CLINIC_NAME"`
	AdminEmail     string   `mapstructure:"ADMIN_EMAIL"`
	MailFrom       string   `mapstructure:"MAIL_FROM"`
	MailAPIKey     string   `mapstructure:"MAIL_API_KEY"`
	MailAPIURL     string   `mapstructure:"MAIL_API_URL"`
	SMTPHost       string   `mapstructure:"SMTP_HOST"`
	SMTPPort       string   `mapstructure:"SMTP_PORT"`
	SMTPUser       string   `mapstructure:"SMTP_USER"`
	SMTPPass       string   `mapstructure:"SMTP_PASS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("CLINIC_NAME", "PhysioCare Clinic")
	v.SetDefault("SMTP_PORT", "587")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("CLINIC_NAME")
	v.BindEnv("ADMIN_EMAIL")
	v.BindEnv("MAIL_FROM")
	v.BindEnv("MAIL_API_KEY")
	v.BindEnv("MAIL_API_URL")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("SMTP_USER")
	v.BindEnv("SMTP_PASS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active: all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MailAPIConfigured reports whether the transactional email API transport has
// everything it needs.
func (c *Config) MailAPIConfigured() bool {
	return c.MailAPIKey != "" && c.MailAPIURL != ""
}

// SMTPConfigured reports whether the SMTP fallback transport has everything it
// needs.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// Validate checks that the configuration is safe to run. Outside development
// mode AUTH_ISSUER must be set so that real JWT authentication is enforced on
// the admin surface.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthIssuer == "" {
		return fmt.Errorf(
			"AUTH_ISSUER must be set when ENV is not \"development\" (current ENV=%q). "+
				"Refusing to start the admin surface without authentication configuration", c.Env)
	}
	if c.MailAPIConfigured() && c.MailFrom == "" {
		return fmt.Errorf("MAIL_FROM is required when the email API transport is configured")
	}
	if c.SMTPConfigured() && c.MailFrom == "" {
		return fmt.Errorf("MAIL_FROM is required when SMTP is configured")
	}
	return nil
}
