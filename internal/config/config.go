package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"Server"`
	Database DatabaseConfig `mapstructure:"Database"`
	Storage  StorageConfig  `mapstructure:"Storage"`
	Auth     AuthConfig     `mapstructure:"Auth"`
	Email    EmailConfig    `mapstructure:"Email"`
}

type ServerConfig struct {
	Port            string `mapstructure:"Port"`
	BaseURL         string `mapstructure:"BaseURL"`
	FrontendBaseURL string `mapstructure:"FrontendBaseURL"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"Host"`
	Port     string `mapstructure:"Port"`
	User     string `mapstructure:"User"`
	Password string `mapstructure:"Password"`
	Name     string `mapstructure:"Name"`
	SSLMode  string `mapstructure:"SSLMode"`
}

type StorageConfig struct {
	// Backend selects where the PDF bytes live: "disk" or "s3".
	Backend     string `mapstructure:"Backend"`
	DataDir     string `mapstructure:"DataDir"`
	MaxUploadMB int64  `mapstructure:"MaxUploadMB"`
}

type AuthConfig struct {
	// JWKSURL is the identity provider's key-set endpoint.
	JWKSURL       string `mapstructure:"JWKSURL"`
	LeewaySeconds int    `mapstructure:"LeewaySeconds"`
}

type EmailConfig struct {
	// SendGridKey empty disables the email mirror of notifications.
	SendGridKey string `mapstructure:"SendGridKey"`
	FromName    string `mapstructure:"FromName"`
	FromEmail   string `mapstructure:"FromEmail"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.BindEnv("Database.Host", "DATABASE_HOST")
	v.BindEnv("Database.Port", "DATABASE_PORT")
	v.BindEnv("Database.User", "DATABASE_USER")
	v.BindEnv("Database.Password", "DATABASE_PASSWORD")
	v.BindEnv("Database.Name", "DATABASE_NAME")
	v.BindEnv("Database.SSLMode", "DATABASE_SSLMODE")
	v.BindEnv("Server.Port", "HTTP_PORT")
	v.BindEnv("Server.BaseURL", "BASE_URL")
	v.BindEnv("Server.FrontendBaseURL", "FRONTEND_BASE_URL")
	v.BindEnv("Storage.Backend", "STORAGE_BACKEND")
	v.BindEnv("Storage.DataDir", "STORAGE_DATA_DIR")
	v.BindEnv("Storage.MaxUploadMB", "STORAGE_MAX_UPLOAD_MB")
	v.BindEnv("Auth.JWKSURL", "AUTH_JWKS_URL")
	v.BindEnv("Auth.LeewaySeconds", "AUTH_JWT_LEEWAY_SECONDS")
	v.BindEnv("Email.SendGridKey", "SENDGRID_API_KEY")
	v.BindEnv("Email.FromName", "EMAIL_FROM_NAME")
	v.BindEnv("Email.FromEmail", "EMAIL_FROM_ADDRESS")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.Host == "" ||
		cfg.Database.Port == "" ||
		cfg.Database.User == "" ||
		cfg.Database.Name == "" {
		return nil, fmt.Errorf("database configuration is incomplete: host=%s, port=%s, user=%s, name=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Name)
	}
	if cfg.Auth.JWKSURL == "" {
		return nil, fmt.Errorf("auth configuration is incomplete: JWKS URL is required")
	}

	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "disk"
	}
	if cfg.Storage.Backend != "disk" && cfg.Storage.Backend != "s3" {
		return nil, fmt.Errorf("unknown storage backend %q: want disk or s3", cfg.Storage.Backend)
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "/var/lib/paperarchive/files"
	}
	if cfg.Storage.MaxUploadMB == 0 {
		cfg.Storage.MaxUploadMB = 25
	}
	if cfg.Auth.LeewaySeconds == 0 {
		cfg.Auth.LeewaySeconds = 30
	}

	return &cfg, nil
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}
