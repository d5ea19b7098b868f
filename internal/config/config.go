// Package config holds the application configuration: defaults, an
// optional YAML file, then explicit environment overrides, in that
// order. The loaded config is also snapshotted into every tournament
// export so analysis runs can group by fields such as
// config.llm.default_model.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tourney/internal/tournament"
)

type Config struct {
	Tournament TournamentConfig `yaml:"tournament" json:"tournament"`
	LLM        LLMConfig        `yaml:"llm" json:"llm"`
	Prompts    PromptsConfig    `yaml:"prompts" json:"prompts"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Web        WebConfig        `yaml:"web" json:"web"`
}

type TournamentConfig struct {
	RoundsPerMatchup int                    `yaml:"rounds_per_matchup" json:"rounds_per_matchup"`
	ReverseMatchups  bool                   `yaml:"reverse_matchups" json:"reverse_matchups"`
	PointSystem      tournament.PointSystem `yaml:"point_system" json:"point_system"`
}

type LLMConfig struct {
	Provider          string            `yaml:"provider" json:"provider"`
	DefaultModel      string            `yaml:"default_model" json:"default_model"`
	TimeoutSeconds    int               `yaml:"timeout" json:"timeout"`
	MaxRetries        int               `yaml:"max_retries" json:"max_retries"`
	RetryDelaySeconds int               `yaml:"retry_delay" json:"retry_delay"`
	RPS               float64           `yaml:"rps" json:"rps"`
	Burst             int               `yaml:"burst" json:"burst"`
	ModelMapping      map[string]string `yaml:"model_mapping" json:"model_mapping"`
}

// Timeout is the per-judge-call deadline.
func (c LLMConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }

// RetryDelay is the base backoff delay between evaluation attempts.
func (c LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

type PromptsConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

type OutputConfig struct {
	ResultsDir  string `yaml:"results_dir" json:"results_dir"`
	MatchLogDir string `yaml:"match_log_dir" json:"match_log_dir"`
	PostgresDSN string `yaml:"postgres_dsn" json:"-"`

	S3Endpoint  string `yaml:"s3_endpoint" json:"-"`
	S3Region    string `yaml:"s3_region" json:"-"`
	S3AccessKey string `yaml:"s3_access_key" json:"-"`
	S3SecretKey string `yaml:"s3_secret_key" json:"-"`
	S3Bucket    string `yaml:"s3_bucket" json:"-"`
	S3UseSSL    bool   `yaml:"s3_use_ssl" json:"-"`
}

type WebConfig struct {
	Port string `yaml:"port" json:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tournament: TournamentConfig{
			RoundsPerMatchup: 1,
			ReverseMatchups:  true,
			PointSystem:      tournament.DefaultPointSystem(),
		},
		LLM: LLMConfig{
			Provider:          "gemini",
			DefaultModel:      "gemini-2.5-flash",
			TimeoutSeconds:    60,
			MaxRetries:        3,
			RetryDelaySeconds: 5,
			ModelMapping:      map[string]string{},
		},
		Prompts: PromptsConfig{Directory: "./prompts"},
		Output: OutputConfig{
			ResultsDir:  "./results",
			MatchLogDir: "./results/matches",
		},
		Web: WebConfig{Port: ":8090"},
	}
}

// Load builds the config from defaults, an optional YAML file, then
// environment overrides. A missing file at the default path is fine; a
// named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides selected settings from TOURNEY_* variables. The
// mapping is explicit: only known keys are honored.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TOURNEY_LLM_DEFAULT_MODEL")); v != "" {
		c.LLM.DefaultModel = v
	}
	if v := strings.TrimSpace(os.Getenv("TOURNEY_LLM_PROVIDER")); v != "" {
		c.LLM.Provider = v
	}
	if n, ok := envInt("TOURNEY_LLM_MAX_RETRIES"); ok {
		c.LLM.MaxRetries = n
	}
	if n, ok := envInt("TOURNEY_LLM_RETRY_DELAY"); ok {
		c.LLM.RetryDelaySeconds = n
	}
	if n, ok := envInt("TOURNEY_TOURNAMENT_ROUNDS"); ok {
		c.Tournament.RoundsPerMatchup = n
	}
	if v := strings.TrimSpace(os.Getenv("TOURNEY_RESULTS_DIR")); v != "" {
		c.Output.ResultsDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TOURNEY_RESULTS_PG_DSN")); v != "" {
		c.Output.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("TOURNEY_WEB_PORT")); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		c.Web.Port = v
	}
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetModel forces every prompt kind onto one judge model, overriding
// the default and the whole model mapping.
func (c *Config) SetModel(model string) {
	c.LLM.DefaultModel = model
	for k := range c.LLM.ModelMapping {
		c.LLM.ModelMapping[k] = model
	}
}

// Snapshot serializes the config for embedding into a tournament export.
func (c *Config) Snapshot() json.RawMessage {
	raw, err := json.Marshal(c)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}
