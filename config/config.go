package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config struct holds application configuration.
// It is loaded once at startup and read through AppConfig.
type Config struct {
	Port            string `validate:"required"`
	DataDir         string `validate:"required"`
	PriorYear       int    `validate:"gte=1900,lte=2100"`
	FixDevMode      bool
	ForceNormalMode bool
	CSVEncoding     string `validate:"oneof=utf-8 shift_jis"`
	MaxUploadMB     int    `validate:"gte=1,lte=1024"`
	SessionLimit    int    `validate:"gte=1"`
	ShopIDs         []int  `validate:"dive,gte=0"`
	LogLevel        string `validate:"oneof=trace debug info warn error"`
}

// AppConfig holds the application-wide configuration
var AppConfig Config

var validate = validator.New()

// Defaults returns the configuration used when no environment is set.
func Defaults() Config {
	return Config{
		Port:         "3000",
		DataDir:      "./data",
		PriorYear:    2021,
		CSVEncoding:  "utf-8",
		MaxUploadMB:  64,
		SessionLimit: 128,
		LogLevel:     "info",
	}
}

// Load reads .env (if present) and the process environment into AppConfig.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logg.Debug("no .env file found, using environment variables")
	}

	cfg := Defaults()
	cfg.Port = stringFromEnv("PORT", cfg.Port)
	cfg.DataDir = stringFromEnv("DATA_DIR", cfg.DataDir)
	cfg.CSVEncoding = strings.ToLower(stringFromEnv("CSV_ENCODING", cfg.CSVEncoding))
	cfg.LogLevel = strings.ToLower(stringFromEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.FixDevMode = boolFromEnv("FIX_DEV_MODE", false)
	cfg.ForceNormalMode = boolFromEnv("FORCE_NORMAL_MODE", false)

	var err error
	if cfg.PriorYear, err = intFromEnv("PRIOR_YEAR", cfg.PriorYear); err != nil {
		return cfg, err
	}
	if cfg.MaxUploadMB, err = intFromEnv("MAX_UPLOAD_MB", cfg.MaxUploadMB); err != nil {
		return cfg, err
	}
	if cfg.SessionLimit, err = intFromEnv("SESSION_LIMIT", cfg.SessionLimit); err != nil {
		return cfg, err
	}
	if cfg.ShopIDs, err = intListFromEnv("SHOP_IDS"); err != nil {
		return cfg, err
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	SetLogLevel(cfg.LogLevel)
	AppConfig = cfg
	return cfg, nil
}

// Validate checks a configuration and reports every offending field.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s(%s)", ve.Field(), ve.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
}

// MaxUploadBytes is the per-file upload cap.
func (c Config) MaxUploadBytes() int {
	return c.MaxUploadMB * 1024 * 1024
}

func stringFromEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func intListFromEnv(key string) ([]int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%s must be a comma separated list of integers: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}
