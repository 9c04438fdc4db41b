package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration of the gateway clients and the
// operator CLI.
type Config struct {
	App   AppConfig
	SMS   SMSConfig
	Viber ViberConfig
	HTTP  HTTPConfig
	CLI   CLIConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	LogLevel string
}

// SMSConfig stores the SMS gateway credentials. They are optional here and
// checked when an SMS client is built.
type SMSConfig struct {
	Login    string
	Password string
	BaseURL  string
}

// ViberConfig stores the Viber access key.
type ViberConfig struct {
	APIKey  string
	BaseURL string
}

// HTTPConfig tunes the shared transport.
type HTTPConfig struct {
	RequestTimeoutSeconds int
	MaxResponseBytes      int
}

// RequestTimeout returns the client level timeout as a duration.
func (c HTTPConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CLIConfig controls the operator CLI.
type CLIConfig struct {
	Concurrency int
}

// Load reads environment variables (and a .env file when present), applies
// defaults and returns a populated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{}
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "info", false)

	cfg.SMS.Login = ldr.getString("SMS_LOGIN", "", false)
	cfg.SMS.Password = ldr.getString("SMS_PASSWORD", "", false)
	cfg.SMS.BaseURL = ldr.getString("SMS_BASE_URL", "https://web.it-decision.com/ru/js", false)

	cfg.Viber.APIKey = ldr.getString("VIBER_API_KEY", "", false)
	cfg.Viber.BaseURL = ldr.getString("VIBER_BASE_URL", "https://web.it-decision.com/v1/api", false)

	cfg.HTTP.RequestTimeoutSeconds = ldr.getPositiveInt("REQUEST_TIMEOUT_SECONDS", 30)
	cfg.HTTP.MaxResponseBytes = ldr.getPositiveInt("MAX_RESPONSE_BYTES", 16*1024)

	cfg.CLI.Concurrency = ldr.getPositiveInt("CLI_CONCURRENCY", 4)

	if err := ldr.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		if val = strings.TrimSpace(val); val != "" {
			return val
		}
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getPositiveInt(key string, def int) int {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	if i <= 0 {
		l.addError(fmt.Sprintf("%s must be positive", key))
		return def
	}
	return i
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
