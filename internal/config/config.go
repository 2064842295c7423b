package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/your-org/visualdelta/internal/adgate"
	"github.com/your-org/visualdelta/internal/delta"
	"github.com/your-org/visualdelta/internal/models"
	"github.com/your-org/visualdelta/internal/pipeline"
	"github.com/your-org/visualdelta/internal/tracker"
	"github.com/your-org/visualdelta/internal/verbalizer"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	NATS       NATSConfig       `yaml:"nats"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Detector   DetectorConfig   `yaml:"detector"`
	Gate       GateConfig       `yaml:"gate"`
	Verbalizer VerbalizerConfig `yaml:"verbalizer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	BearerToken string `yaml:"bearer_token"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

// TrackerConfig mirrors tracker.Config for YAML/env configurability.
type TrackerConfig struct {
	ExpireMs                       int64   `yaml:"expire_ms"`
	BBoxDistanceThreshold          float64 `yaml:"bbox_distance_threshold"`
	FingerprintSimilarityThreshold float64 `yaml:"fingerprint_similarity_threshold"`
	BBoxWeight                     float64 `yaml:"bbox_weight"`
}

func (t TrackerConfig) ToTrackerConfig() tracker.Config {
	return tracker.Config{
		ExpireMs:                       t.ExpireMs,
		BBoxDistanceThreshold:          t.BBoxDistanceThreshold,
		FingerprintSimilarityThreshold: t.FingerprintSimilarityThreshold,
		BBoxWeight:                     t.BBoxWeight,
	}
}

type DetectorConfig struct {
	DebounceSnapshots int `yaml:"debounce_snapshots"`
}

func (d DetectorConfig) ToDeltaConfig(trackerCfg tracker.Config) delta.Config {
	return delta.Config{
		DebounceSnapshots: d.DebounceSnapshots,
		TrackerConfig:     trackerCfg,
	}
}

type GateConfig struct {
	Enabled                 bool             `yaml:"enabled"`
	Verbosity               string           `yaml:"verbosity"`
	AvoidSpeechOverlap      bool             `yaml:"avoid_speech_overlap"`
	GlobalCooldownMs        int64            `yaml:"global_cooldown_ms"`
	EventCooldownMs         map[string]int64 `yaml:"event_cooldown_ms"`
	MaxPendingAnnouncements int              `yaml:"max_pending_announcements"`
}

func (g GateConfig) ToGateConfig() adgate.Config {
	cfg := adgate.DefaultConfig()
	cfg.Enabled = g.Enabled
	if g.Verbosity != "" {
		cfg.Verbosity = adgate.Verbosity(g.Verbosity)
	}
	cfg.AvoidSpeechOverlap = g.AvoidSpeechOverlap
	if g.GlobalCooldownMs != 0 {
		cfg.GlobalCooldownMs = g.GlobalCooldownMs
	}
	if g.MaxPendingAnnouncements != 0 {
		cfg.MaxPendingAnnouncements = g.MaxPendingAnnouncements
	}
	for k, v := range g.EventCooldownMs {
		cfg.EventCooldownMs[models.EventType(k)] = v
	}
	return cfg
}

type VerbalizerConfig struct {
	UseLLM    bool   `yaml:"use_llm"`
	MaxLength int    `yaml:"max_length"`
	Verbosity string `yaml:"verbosity"`

	LLMProvider  string `yaml:"llm_provider"`
	LLMAPIKey    string `yaml:"llm_api_key"`
	LLMModel     string `yaml:"llm_model"`
	LLMMaxTokens int    `yaml:"llm_max_tokens"`
}

func (v VerbalizerConfig) ToVerbalizerConfig() verbalizer.Config {
	cfg := verbalizer.DefaultConfig()
	cfg.UseLLM = v.UseLLM
	if v.MaxLength != 0 {
		cfg.MaxLength = v.MaxLength
	}
	if v.Verbosity != "" {
		cfg.Verbosity = verbalizer.Verbosity(v.Verbosity)
	}
	return cfg
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from a YAML file and applies environment variable
// overrides, the same two-pass shape the rest of this codebase's
// config loading has always used.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}

	defTracker := tracker.DefaultConfig()
	if cfg.Tracker.ExpireMs == 0 {
		cfg.Tracker.ExpireMs = defTracker.ExpireMs
	}
	if cfg.Tracker.BBoxDistanceThreshold == 0 {
		cfg.Tracker.BBoxDistanceThreshold = defTracker.BBoxDistanceThreshold
	}
	if cfg.Tracker.FingerprintSimilarityThreshold == 0 {
		cfg.Tracker.FingerprintSimilarityThreshold = defTracker.FingerprintSimilarityThreshold
	}
	if cfg.Tracker.BBoxWeight == 0 {
		cfg.Tracker.BBoxWeight = defTracker.BBoxWeight
	}

	defDetector := delta.DefaultConfig()
	if cfg.Detector.DebounceSnapshots == 0 {
		cfg.Detector.DebounceSnapshots = defDetector.DebounceSnapshots
	}

	if cfg.Gate.Verbosity == "" {
		cfg.Gate.Verbosity = string(adgate.VerbosityNormal)
	}
	if cfg.Gate.GlobalCooldownMs == 0 {
		cfg.Gate.GlobalCooldownMs = 2000
	}
	if cfg.Gate.MaxPendingAnnouncements == 0 {
		cfg.Gate.MaxPendingAnnouncements = 5
	}
	if cfg.Gate.EventCooldownMs == nil {
		cfg.Gate.EventCooldownMs = map[string]int64{
			"hand_raised":    5000,
			"hand_lowered":   5000,
			"slide_changed":  3000,
			"layout_changed": 10000,
		}
	}

	if cfg.Verbalizer.MaxLength == 0 {
		cfg.Verbalizer.MaxLength = 120
	}
	if cfg.Verbalizer.Verbosity == "" {
		cfg.Verbalizer.Verbosity = string(verbalizer.VerbosityNormal)
	}
	if cfg.Verbalizer.LLMModel == "" {
		cfg.Verbalizer.LLMModel = "claude-3-5-haiku-20241022"
	}
	if cfg.Verbalizer.LLMMaxTokens == 0 {
		cfg.Verbalizer.LLMMaxTokens = 64
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// ToPipelineConfig builds a per-call pipeline.Config from the
// process-level defaults.
func (c *Config) ToPipelineConfig() pipeline.Config {
	trackerCfg := c.Tracker.ToTrackerConfig()
	return pipeline.Config{
		Detector:   c.Detector.ToDeltaConfig(trackerCfg),
		Gate:       c.Gate.ToGateConfig(),
		Verbalizer: c.Verbalizer.ToVerbalizerConfig(),
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VISUALDELTA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VISUALDELTA_BEARER_TOKEN"); v != "" {
		cfg.Server.BearerToken = v
	}
	if v := os.Getenv("VISUALDELTA_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("VISUALDELTA_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("VISUALDELTA_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("VISUALDELTA_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("VISUALDELTA_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("VISUALDELTA_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("VISUALDELTA_LLM_API_KEY"); v != "" {
		cfg.Verbalizer.LLMAPIKey = v
	}
	if v := os.Getenv("VISUALDELTA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
