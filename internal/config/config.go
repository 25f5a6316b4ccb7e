package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// InsecureDefaultSecret signs tokens when SECRET_KEY is not set. Never use it outside
// local development.
const InsecureDefaultSecret = "textorigin-insecure-dev-secret"

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		GinMode         string        `yaml:"gin_mode"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	} `yaml:"server"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Auth struct {
		PasswordHash string        `yaml:"password_hash"`
		SecretKey    string        `yaml:"secret_key"`
		TokenTTL     time.Duration `yaml:"token_ttl"`
		LoginRate    float64       `yaml:"login_rate_per_second"`
		LoginBurst   int           `yaml:"login_burst"`
		Denylist     string        `yaml:"denylist"` // "memory" or "redis"
	} `yaml:"auth"`

	Storage struct {
		Driver     string `yaml:"driver"` // json, sqlite, postgres, mongo
		Path       string `yaml:"path"`   // JSON file or SQLite DSN
		URL        string `yaml:"url"`    // PostgreSQL or MongoDB URL
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`
	} `yaml:"storage"`

	Model struct {
		Kind         string  `yaml:"kind"` // nb, sgd, lexical, transformer
		ArtifactPath string  `yaml:"artifact_path"`
		NGramMin     int     `yaml:"ngram_min"`
		NGramMax     int     `yaml:"ngram_max"`
		MinDF        int     `yaml:"min_df"`
		Sublinear    bool    `yaml:"sublinear_tf"`
		Alpha        float64 `yaml:"alpha"`
		Epochs       int     `yaml:"epochs"`
		LearningRate float64 `yaml:"learning_rate"`
		L2           float64 `yaml:"l2"`
		Seed         int64   `yaml:"seed"`
		TopWords     int     `yaml:"top_words"`
		Transformer  struct {
			URL       string        `yaml:"url"`
			Epochs    int           `yaml:"epochs"`
			BatchSize int           `yaml:"batch_size"`
			GradSteps int           `yaml:"gradient_accumulation_steps"`
			Timeout   time.Duration `yaml:"timeout"`
		} `yaml:"transformer"`
	} `yaml:"model"`

	Training struct {
		RetrainOnMutation   string        `yaml:"retrain_on_mutation"` // off, sync, debounced
		Debounce            time.Duration `yaml:"debounce"`
		TrainOnStartup      bool          `yaml:"train_on_startup"`
		RequireInitialModel bool          `yaml:"require_initial_model"`
		SeedFile            string        `yaml:"seed_file"`
	} `yaml:"training"`

	Notify struct {
		TelegramToken  string `yaml:"telegram_token"`
		TelegramChatID int64  `yaml:"telegram_chat_id"`
	} `yaml:"notify"`

	Cache struct {
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"cache"`

	// InsecureSecret is set when no secret was configured and the development
	// fallback is in use.
	InsecureSecret bool `yaml:"-"`
}

// LoadConfig reads configuration from the specified YAML file, expands ${VAR}
// references, applies environment overrides and fills in defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.expandEnv()
	config.applyEnvOverrides()
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// expandEnv leaves auth.password_hash alone: encoded hashes contain '$'.
func (c *Config) expandEnv() {
	c.Auth.SecretKey = os.ExpandEnv(c.Auth.SecretKey)
	c.Storage.Path = os.ExpandEnv(c.Storage.Path)
	c.Storage.URL = os.ExpandEnv(c.Storage.URL)
	c.Model.Transformer.URL = os.ExpandEnv(c.Model.Transformer.URL)
	c.Notify.TelegramToken = os.ExpandEnv(c.Notify.TelegramToken)
	c.Cache.RedisPassword = os.ExpandEnv(c.Cache.RedisPassword)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.Auth.SecretKey = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		c.Auth.PasswordHash = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.URL = v
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.Server.GinMode == "" {
		c.Server.GinMode = "release"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Auth.SecretKey == "" {
		c.Auth.SecretKey = InsecureDefaultSecret
		c.InsecureSecret = true
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = time.Hour
	}
	if c.Auth.LoginRate == 0 {
		c.Auth.LoginRate = 1
	}
	if c.Auth.LoginBurst == 0 {
		c.Auth.LoginBurst = 5
	}
	if c.Auth.Denylist == "" {
		c.Auth.Denylist = "memory"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "json"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case "sqlite":
			c.Storage.Path = "./data/corpus.db"
		default:
			c.Storage.Path = "./data/corpus.json"
		}
	}
	if c.Storage.Database == "" {
		c.Storage.Database = "textorigin"
	}
	if c.Storage.Collection == "" {
		c.Storage.Collection = "training_data"
	}

	if c.Model.Kind == "" {
		c.Model.Kind = "nb"
	}
	if c.Model.ArtifactPath == "" {
		c.Model.ArtifactPath = "./data/model.bin"
	}
	if c.Model.NGramMin == 0 {
		c.Model.NGramMin = 1
	}
	if c.Model.NGramMax == 0 {
		c.Model.NGramMax = 2
	}
	if c.Model.MinDF == 0 {
		c.Model.MinDF = 1
	}
	if c.Model.Alpha == 0 {
		c.Model.Alpha = 1
	}
	if c.Model.Epochs == 0 {
		c.Model.Epochs = 30
	}
	if c.Model.LearningRate == 0 {
		c.Model.LearningRate = 0.1
	}
	if c.Model.Seed == 0 {
		c.Model.Seed = 42
	}
	if c.Model.TopWords == 0 {
		c.Model.TopWords = 50
	}
	if c.Model.Transformer.Epochs == 0 {
		c.Model.Transformer.Epochs = 3
	}
	if c.Model.Transformer.BatchSize == 0 {
		c.Model.Transformer.BatchSize = 8
	}
	if c.Model.Transformer.Timeout == 0 {
		c.Model.Transformer.Timeout = 10 * time.Minute
	}

	if c.Training.RetrainOnMutation == "" {
		c.Training.RetrainOnMutation = "off"
	}
	if c.Training.Debounce == 0 {
		c.Training.Debounce = 5 * time.Second
	}
}

// Validate checks enumerations and required combinations.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "sqlite":
	case "postgres", "mongo":
		if c.Storage.URL == "" {
			return fmt.Errorf("storage.url is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Model.Kind {
	case "nb", "sgd", "lexical":
	case "transformer":
		if c.Model.Transformer.URL == "" {
			return fmt.Errorf("model.transformer.url is required for kind transformer")
		}
	default:
		return fmt.Errorf("unknown model kind %q", c.Model.Kind)
	}
	if c.Model.NGramMax < c.Model.NGramMin {
		return fmt.Errorf("model.ngram_max (%d) is below model.ngram_min (%d)", c.Model.NGramMax, c.Model.NGramMin)
	}

	switch c.Training.RetrainOnMutation {
	case "off", "sync", "debounced":
	default:
		return fmt.Errorf("unknown training.retrain_on_mutation %q", c.Training.RetrainOnMutation)
	}

	switch c.Auth.Denylist {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis denylist")
		}
	default:
		return fmt.Errorf("unknown auth.denylist %q", c.Auth.Denylist)
	}
	return nil
}
