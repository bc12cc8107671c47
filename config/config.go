package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultMaxWorkers       = 10
	defaultIOPoolSize       = 5
	defaultMaxLineLength    = 15_000
	defaultMaxSecretsPerFile = 50
	defaultBatchSize        = 5
	defaultCourierRetries   = 3
	defaultCourierTimeoutS  = 60
)

// HubType selects which Ref Resolver / Fetcher variant is active.
type HubType string

const (
	HubGitHub HubType = "github" // variant B: public platform
	HubAzure  HubType = "azure"  // variant A: self-hosted platform (any non-github value)
)

type Config struct {
	HTTP struct {
		Host string `env:"HOST"`
		Port string `env:"PORT"`
	}

	Hub HubType `env:"HubType"`

	Queue struct {
		MaxWorkers int `env:"MAX_WORKERS"`
		IOPoolSize int // fixed at 5 per spec.md §4.5, not externally configurable
	}

	Scan struct {
		MaxLineLength     int
		MaxSecretsPerFile int
		BatchSize         int
	}

	Courier struct {
		MaxRetries     int
		TimeoutSeconds int
	}

	Credentials struct {
		LoginKey    string `env:"LOGIN_KEY"`
		PasswordKey string `env:"PASSWORD_KEY"`
		PATKey      string `env:"PAT_KEY"`
	}

	API struct {
		Key string `env:"API_KEY"`
	}

	TempDir string `env:"TEMP_DIR"`

	Observability struct {
		MetricsPort string `env:"METRICS_PORT"`
		JaegerURL   string `env:"JAEGER_URL"`
	}

	SettingsDir string
	ModelDir    string
	DatasetsDir string
}

func NewConfig() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Host = os.Getenv("HOST")
	cfg.HTTP.Port = os.Getenv("PORT")

	hub := os.Getenv("HubType")
	if hub == string(HubGitHub) {
		cfg.Hub = HubGitHub
	} else {
		cfg.Hub = HubAzure
	}

	v := viper.New()

	var err error
	if cfg.Queue.MaxWorkers, err = parseEnvInt(v, "max_workers", "MAX_WORKERS", defaultMaxWorkers); err != nil {
		return nil, err
	}
	cfg.Queue.IOPoolSize = defaultIOPoolSize

	cfg.Scan.MaxLineLength = defaultMaxLineLength
	cfg.Scan.MaxSecretsPerFile = defaultMaxSecretsPerFile
	cfg.Scan.BatchSize = defaultBatchSize

	cfg.Courier.MaxRetries = defaultCourierRetries
	cfg.Courier.TimeoutSeconds = defaultCourierTimeoutS

	cfg.Credentials.LoginKey = os.Getenv("LOGIN_KEY")
	cfg.Credentials.PasswordKey = os.Getenv("PASSWORD_KEY")
	cfg.Credentials.PATKey = os.Getenv("PAT_KEY")

	cfg.API.Key = os.Getenv("API_KEY")

	if cfg.TempDir, err = parseEnvString(v, "temp_dir", "TEMP_DIR", os.TempDir()); err != nil {
		return nil, err
	}

	cfg.Observability.MetricsPort = os.Getenv("METRICS_PORT")
	cfg.Observability.JaegerURL = os.Getenv("JAEGER_URL")

	cfg.SettingsDir = "Settings"
	cfg.ModelDir = "Model"
	cfg.DatasetsDir = "Datasets"

	return cfg, nil
}

func (c *Config) CourierTimeout() time.Duration {
	return time.Duration(c.Courier.TimeoutSeconds) * time.Second
}

func parseEnvInt(v *viper.Viper, key, envVar string, defaultValue int) (int, error) {
	if err := v.BindEnv(key, envVar); err != nil {
		return defaultValue, err
	}
	v.SetDefault(key, defaultValue)
	return v.GetInt(key), nil
}

func parseEnvString(v *viper.Viper, key, envVar string, defaultValue string) (string, error) {
	if err := v.BindEnv(key, envVar); err != nil {
		return defaultValue, err
	}
	v.SetDefault(key, defaultValue)
	return v.GetString(key), nil
}

// parseInt mirrors the teacher's small numeric-env helper for spots that need
// a bare atoi without viper defaulting semantics (e.g. required fields).
func parseInt(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
