package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Importer ImporterConfig `yaml:"importer"`
	Events   EventsConfig   `yaml:"events"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig holds MongoDB settings.
type StorageConfig struct {
	URI              string `yaml:"uri"`
	Database         string `yaml:"database"`
	SurveyCollection string `yaml:"survey_collection"`
	WellCollection   string `yaml:"well_collection"`
}

// ImporterConfig holds settings for the downstream import service.
type ImporterConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// EventsConfig holds change-event publishing settings. With an empty NATS URL
// events are kept in memory (useful for local runs and tests).
type EventsConfig struct {
	NATSURL    string `yaml:"nats_url"`
	StreamName string `yaml:"stream_name"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			URI:              "mongodb://localhost:27017",
			Database:         "surveyd",
			SurveyCollection: "directional_surveys",
			WellCollection:   "wells",
		},
		Importer: ImporterConfig{
			URL:     "http://localhost:9090",
			Timeout: 30 * time.Second,
		},
		Events: EventsConfig{
			StreamName: "SURVEYS",
		},
		Logging: DefaultLoggingConfig(),
	}
}

// Load loads configuration: defaults -> config.yml -> config.local.yml ->
// environment overrides -> validate.
func Load(dir string) (*Config, error) {
	cfg := Default()

	loadFile(dir+"/config.yml", cfg)
	loadFile(dir+"/config.local.yml", cfg)

	cfg.applyEnvOverrides()
	cfg.Logging.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(filename string, cfg *Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		// Missing files are fine; defaults and env carry the config.
		return
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring malformed config file %s: %v\n", filename, err)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SURVEYD_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SURVEYD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SURVEYD_MONGO_URI"); v != "" {
		c.Storage.URI = v
	}
	if v := os.Getenv("SURVEYD_MONGO_DATABASE"); v != "" {
		c.Storage.Database = v
	}
	if v := os.Getenv("SURVEYD_IMPORTER_URL"); v != "" {
		c.Importer.URL = v
	}
	if v := os.Getenv("SURVEYD_NATS_URL"); v != "" {
		c.Events.NATSURL = v
	}
	if v := os.Getenv("SURVEYD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.URI == "" {
		return fmt.Errorf("storage uri cannot be empty")
	}
	if c.Storage.Database == "" {
		return fmt.Errorf("storage database cannot be empty")
	}
	if c.Storage.SurveyCollection == "" || c.Storage.WellCollection == "" {
		return fmt.Errorf("storage collections cannot be empty")
	}
	if c.Importer.URL == "" {
		return fmt.Errorf("importer url cannot be empty")
	}
	return c.Logging.Validate()
}
