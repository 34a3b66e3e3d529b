package config

import (
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/vytor/recall/internal/logger"
)

type Config struct {
	Addr             string        `env:"ADDR" validate:"required"`
	DBPath           string        `env:"DB_PATH" validate:"required"`
	LogLevel         string        `env:"LOG_LEVEL" validate:"loglevel"`
	DueCheckInterval time.Duration `env:"DUE_CHECK_INTERVAL" validate:"min=1s"`
	AutosaveInterval time.Duration `env:"AUTOSAVE_INTERVAL" validate:"min=1s"`
	WorkerCount      int           `env:"WORKER_COUNT" validate:"min=1,max=64"`
	QueueSize        int           `env:"QUEUE_SIZE" validate:"min=1"`
	NotifyEnabled    bool          `env:"NOTIFY_ENABLED"`
}

// Load reads configuration from the given .env files (or ./.env when none are
// given) and environment variables, applying defaults when values are missing
// or invalid.
func Load(files ...string) Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load(files...)

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "recall.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		DueCheckInterval: envDurationOr("DUE_CHECK_INTERVAL", time.Minute),
		AutosaveInterval: envDurationOr("AUTOSAVE_INTERVAL", 30*time.Second),
		WorkerCount:      envIntOr("WORKER_COUNT", 2),
		QueueSize:        envIntOr("QUEUE_SIZE", 64),
		NotifyEnabled:    envBoolOr("NOTIFY_ENABLED", true),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, ok := logger.LookupLevel(fl.Field().String())
		return ok
	})
	return v
}

// Validate reports every invalid setting, named by its environment variable.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " cannot be empty"
	case "loglevel":
		return fmt.Sprintf("%s must be one of DEBUG, INFO, WARN, ERROR (got %q)", name, fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s (got %v)", name, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got %v)", name, fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s is invalid", name)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
