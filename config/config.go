// Package config loads interviewd configuration from a YAML file,
// environment variables and defaults, in that order of increasing
// precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full interviewd configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Interview InterviewConfig `mapstructure:"interview"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// ModelConfig selects the language model provider backing the agents.
type ModelConfig struct {
	// Provider is one of openai, anthropic, gemini or mock.
	Provider string `mapstructure:"provider"`
	// Name is the provider-specific model name. Empty selects the
	// provider's default.
	Name string `mapstructure:"name"`
	// APIKey overrides the provider's environment credential.
	APIKey string `mapstructure:"api-key"`
}

// InterviewConfig tunes the coordinator policy.
type InterviewConfig struct {
	MinQuestions      int           `mapstructure:"min-questions"`
	InactivityTimeout time.Duration `mapstructure:"inactivity-timeout"`
	SweepInterval     time.Duration `mapstructure:"sweep-interval"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// envPrefix namespaces environment overrides, e.g.
// INTERVIEWKIT_SERVER_ADDR or INTERVIEWKIT_MODEL_PROVIDER.
const envPrefix = "INTERVIEWKIT"

// Load reads the configuration. cfgFile may be empty, in which case only a
// interviewd.yaml in the working directory is considered and its absence is
// not an error.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("interviewd")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
	v.SetDefault("server.shutdown-timeout", 10*time.Second)

	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.name", "")

	v.SetDefault("interview.min-questions", 3)
	v.SetDefault("interview.inactivity-timeout", 30*time.Minute)
	v.SetDefault("interview.sweep-interval", time.Minute)

	v.SetDefault("logging.json", false)
	v.SetDefault("logging.debug", false)
}
