package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BihanDasgupta/CareerNodes/internal/cache"
	"github.com/BihanDasgupta/CareerNodes/internal/pipeline"
	"github.com/BihanDasgupta/CareerNodes/internal/ranking"
	"github.com/BihanDasgupta/CareerNodes/internal/source/headhunter"
)

const (
	app = "careernodes"
)

type Config struct {
	ProfileFile string         `mapstructure:"profile-file"`
	ResumeFile  string         `mapstructure:"resume-file"`
	Source      *SourceConfig  `mapstructure:"source"`
	Ranking     ranking.Config `mapstructure:"ranking"`
	Filters     *FiltersConfig `mapstructure:"filters"`
	Results     *ResultsConfig `mapstructure:"results"`
	AI          *AIConfig      `mapstructure:"ai"`
	Cache       *CacheConfig   `mapstructure:"cache"`
	Output      *OutputConfig  `mapstructure:"output"`
}

type SourceConfig struct {
	// Name is adzuna, headhunter or file.
	Name       string            `mapstructure:"name"`
	Query      string            `mapstructure:"query"`
	Location   string            `mapstructure:"location"`
	Limit      int               `mapstructure:"limit"`
	Adzuna     *AdzunaConfig     `mapstructure:"adzuna"`
	Headhunter *HeadhunterConfig `mapstructure:"headhunter"`
	File       string            `mapstructure:"file"`
}

type AdzunaConfig struct {
	AppID      string `mapstructure:"app-id"`
	AppKey     string `mapstructure:"app-key"`
	AppKeyFile string `mapstructure:"app-key-file"`
	Country    string `mapstructure:"country"`
}

type HeadhunterConfig struct {
	TokenFile string                   `mapstructure:"token-file"`
	UserAgent string                   `mapstructure:"user-agent"`
	Search    *headhunter.SearchParams `mapstructure:"search"`
}

type FiltersConfig struct {
	// Mode is drop or zero.
	Mode             string                 `mapstructure:"mode"`
	Enabled          pipeline.FilterToggles `mapstructure:",squash"`
	ExcludeCompanies []string               `mapstructure:"exclude-companies"`
}

type ResultsConfig struct {
	AppendExcluded bool `mapstructure:"append-excluded"`
	Normalize      bool `mapstructure:"normalize"`
}

type AIConfig struct {
	// Scorer is gemini, cohere, rules or embedding.
	Scorer string `mapstructure:"scorer"`
	// Embedder is gemini or none. It drives the similarity stage.
	Embedder string        `mapstructure:"embedder"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	Cohere   *CohereConfig `mapstructure:"cohere"`
}

type GeminiConfig struct {
	APIKey         string   `mapstructure:"api-key"`
	APIKeyFile     string   `mapstructure:"api-key-file"`
	Model          string   `mapstructure:"model"`
	EmbeddingModel string   `mapstructure:"embedding-model"`
	MaxRetries     int      `mapstructure:"max-retries"`
	MaxLogLength   int      `mapstructure:"max-log-length"`
	Temperature    *float32 `mapstructure:"temperature"`
}

type CohereConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type CacheConfig struct {
	RedisURL   string        `mapstructure:"redis-url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max-entries"`
}

type OutputConfig struct {
	// Format is table, json or md.
	Format string `mapstructure:"format"`
	// Color is auto, always or never.
	Color string `mapstructure:"color"`
	Limit int    `mapstructure:"limit"`
	// Graph is a .dot, .json or .html path for the star graph. Empty skips it.
	Graph      string `mapstructure:"graph"`
	GraphLimit int    `mapstructure:"graph-limit"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "careernodes ranks job and internship listings against your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"ai.gemini.api-key":            "GEMINI_API_KEY",
		"ai.cohere.api-key":            "COHERE_API_KEY",
		"source.adzuna.app-id":         "ADZUNA_APP_ID",
		"source.adzuna.app-key":        "ADZUNA_APP_KEY",
		"source.headhunter.token-file": "HH_TOKEN_FILE",
		"cache.redis-url":              "REDIS_URL",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is careernodes.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for match command now. If there is no config, we can skip initialization
	if matchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// A missing default config is fine: flags and env can carry everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		Source:  &SourceConfig{Name: "adzuna", Limit: 50, Adzuna: &AdzunaConfig{}, Headhunter: &HeadhunterConfig{}},
		Ranking: ranking.Defaults(),
		Filters: &FiltersConfig{
			Mode:    "drop",
			Enabled: pipeline.FilterToggles{Location: true, Skills: true, Industry: true},
		},
		Results: &ResultsConfig{},
		AI: &AIConfig{
			Scorer:   "gemini",
			Embedder: "gemini",
			Gemini:   &GeminiConfig{MaxLogLength: 500},
			Cohere:   &CohereConfig{},
		},
		Cache:  &CacheConfig{TTL: cache.DefaultTTL, MaxEntries: cache.DefaultMaxEntries},
		Output: &OutputConfig{Format: "table", Color: "auto"},
	}
}

// getConfig overlays the file, env and flag values on top of the defaults.
func getConfig() (*Config, error) {
	config := defaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	return config, nil
}
