package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/utils"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	OCR      OCRConfig      `yaml:"ocr"`
	LLM      LLMConfig      `yaml:"llm"`
	TTS      TTSConfig      `yaml:"tts"`
	Push     PushConfig     `yaml:"push"`
	Batch    BatchConfig    `yaml:"batch"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type AuthConfig struct {
	JWTSecretKey       string `yaml:"jwt_secret_key"`
	AccessTokenTTLSec  int    `yaml:"access_token_ttl"`
	RefreshTokenTTLSec int    `yaml:"refresh_token_ttl"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type OCRConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type TTSConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type PushConfig struct {
	BaseURL   string `yaml:"base_url"`
	ServerKey string `yaml:"server_key"`
}

type BatchConfig struct {
	// Cron spec with seconds, default is midnight every day.
	Schedule    string `yaml:"schedule"`
	Concurrency int    `yaml:"concurrency"`
}

func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLSec) * time.Second
}

func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLSec) * time.Second
}

// Load reads the optional yaml config file and applies env overrides on top.
// A missing file is not an error; env vars alone are enough to run.
func Load(path string, log *logger.Logger) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		} else if log != nil {
			log.Debug("Config file not found, using env only", "path", path)
		}
	}
	cfg.applyEnv(log)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(log *logger.Logger) {
	c.Server.Port = utils.GetEnv("PORT", c.Server.Port, log)
	c.Auth.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", c.Auth.JWTSecretKey, log)
	c.Auth.AccessTokenTTLSec = utils.GetEnvAsInt("ACCESS_TOKEN_TTL", c.Auth.AccessTokenTTLSec, log)
	c.Auth.RefreshTokenTTLSec = utils.GetEnvAsInt("REFRESH_TOKEN_TTL", c.Auth.RefreshTokenTTLSec, log)
	c.Database.Host = utils.GetEnv("POSTGRES_HOST", c.Database.Host, log)
	c.Database.Port = utils.GetEnv("POSTGRES_PORT", c.Database.Port, log)
	c.Database.User = utils.GetEnv("POSTGRES_USER", c.Database.User, log)
	c.Database.Password = utils.GetEnv("POSTGRES_PASSWORD", c.Database.Password, log)
	c.Database.Name = utils.GetEnv("POSTGRES_NAME", c.Database.Name, log)
	c.Redis.Addr = utils.GetEnv("REDIS_ADDR", c.Redis.Addr, log)
	c.OCR.BaseURL = utils.GetEnv("OCR_BASE_URL", c.OCR.BaseURL, log)
	c.OCR.APIKey = utils.GetEnv("OCR_API_KEY", c.OCR.APIKey, log)
	c.LLM.BaseURL = utils.GetEnv("LLM_BASE_URL", c.LLM.BaseURL, log)
	c.LLM.APIKey = utils.GetEnv("LLM_API_KEY", c.LLM.APIKey, log)
	c.LLM.Model = utils.GetEnv("LLM_MODEL", c.LLM.Model, log)
	c.TTS.BaseURL = utils.GetEnv("TTS_BASE_URL", c.TTS.BaseURL, log)
	c.TTS.APIKey = utils.GetEnv("TTS_API_KEY", c.TTS.APIKey, log)
	c.Push.BaseURL = utils.GetEnv("PUSH_BASE_URL", c.Push.BaseURL, log)
	c.Push.ServerKey = utils.GetEnv("PUSH_SERVER_KEY", c.Push.ServerKey, log)
	c.Batch.Schedule = utils.GetEnv("BATCH_SCHEDULE", c.Batch.Schedule, log)
	c.Batch.Concurrency = utils.GetEnvAsInt("BATCH_CONCURRENCY", c.Batch.Concurrency, log)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Auth.JWTSecretKey == "" {
		c.Auth.JWTSecretKey = "defaultsecret"
	}
	if c.Auth.AccessTokenTTLSec == 0 {
		c.Auth.AccessTokenTTLSec = 3600
	}
	if c.Auth.RefreshTokenTTLSec == 0 {
		c.Auth.RefreshTokenTTLSec = 86400
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.Name == "" {
		c.Database.Name = "dosecare"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.Batch.Schedule == "" {
		c.Batch.Schedule = "0 0 0 * * *"
	}
	if c.Batch.Concurrency <= 0 {
		c.Batch.Concurrency = 4
	}
}
