package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spigell/resume-scorer/internal/server"
	"github.com/spigell/resume-scorer/internal/tracing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-scorer"
)

type Config struct {
	AI      *AIConfig      `mapstructure:"ai"`
	Depth   *DepthConfig   `mapstructure:"depth"`
	Server  server.Config  `mapstructure:"server"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxPromptTokens int           `mapstructure:"max-prompt-tokens" validate:"gte=0"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string  `mapstructure:"api-key"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Model        string  `mapstructure:"model"`
	BaseURL      string  `mapstructure:"base-url" validate:"omitempty,url"`
	Temperature  float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxLogLength int     `mapstructure:"max-log-length" validate:"gte=0"`
}

type DepthConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base-url" validate:"required_if=Enabled true,omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-scorer scores resumes against a job role with a model-backed analyzer and a rule-based fallback",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	envs := map[string]string{
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"depth.enabled":          "DEPTH_ANALYSIS_ENABLED",
		"depth.base-url":         "DEPTH_ANALYSIS_URL",
		"tracing.otlp-endpoint":  "OTEL_EXPORTER_OTLP_ENDPOINT",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetEnvPrefix("RESUME_SCORER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-scorer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.timeout", 60*time.Second)
	viper.SetDefault("ai.max-prompt-tokens", 6000)
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.base-url", "")
	viper.SetDefault("ai.gemini.temperature", 0)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	viper.SetDefault("depth.enabled", false)
	viper.SetDefault("depth.base-url", "http://localhost:8001")
	viper.SetDefault("depth.timeout", 30*time.Second)

	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.rate-limit-per-min", 30)
	viper.SetDefault("server.cors-origins", []string{"*"})
	viper.SetDefault("server.max-upload-mb", 10)
	viper.SetDefault("server.request-timeout", 120*time.Second)

	viper.SetDefault("tracing.otlp-endpoint", "")
	viper.SetDefault("tracing.service-name", app)
	viper.SetDefault("tracing.sample-ratio", 1.0)
}

// initConfig reads the config file. The file is optional unless set with --config.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("empty configuration")
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Depth == nil {
		config.Depth = &DepthConfig{}
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func validateConfig(config *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}
