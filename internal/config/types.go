package config

import "time"

// Config represents the full snippetrunner configuration document.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
	Kafka  KafkaConfig  `yaml:"kafka,omitempty"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Address         string          `yaml:"address" validate:"required,hostname_port"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" validate:"gte=0"`
	WebSocket       WebSocketConfig `yaml:"websocket"`
}

// WebSocketConfig configures the interactive endpoint.
type WebSocketConfig struct {
	Path           string   `yaml:"path" validate:"required,startswith=/"`
	ReadLimit      int64    `yaml:"read_limit" validate:"gte=0"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" validate:"omitempty,dive,required"`
}

// StoreConfig points at the program store. When Dir is set programs and
// fixtures are served from that directory instead of BaseURL.
type StoreConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,http_base_url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	Dir     string        `yaml:"dir,omitempty"`
}

// EngineConfig selects the language level and step budget.
type EngineConfig struct {
	Version  string `yaml:"version" validate:"required,engine_version"`
	MaxSteps int    `yaml:"max_steps" validate:"gte=0"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"required,oneof=text json logfmt"`
}

// KafkaConfig enables the verdict stream when brokers are set.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers,omitempty" validate:"omitempty,dive,hostname_port"`
	Topic   string   `yaml:"topic,omitempty" validate:"required_with=Brokers"`
}

// Enabled reports whether verdicts should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Default returns the configuration used before any file or environment is applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			WebSocket: WebSocketConfig{
				Path:      "/execute",
				ReadLimit: 64 << 10,
			},
		},
		Store: StoreConfig{
			BaseURL: "http://localhost:8081/snippets",
			Timeout: 5 * time.Second,
		},
		Engine: EngineConfig{
			Version:  "1.1",
			MaxSteps: 100000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Kafka: KafkaConfig{
			Topic: "test-reports",
		},
	}
}
