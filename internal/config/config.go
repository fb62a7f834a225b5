// internal/config/config.go

// Package config resolves runtime settings from defaults, an optional
// YAML file, and PATHOSCOPE_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DB holds the MongoDB connection settings.
type DB struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

// Config holds everything the pipeline reads from its environment.
type Config struct {
	// DataPath is the root of the data tree holding samples,
	// references, and subtractions.
	DataPath string `yaml:"data_path"`

	// Proc is the worker count handed to external aligners.
	Proc int `yaml:"proc"`

	DB DB `yaml:"db"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		DataPath: "data",
		Proc:     runtime.NumCPU(),
		DB: DB{
			Host: "localhost",
			Port: 27017,
			Name: "virtool",
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path if
// path is non-empty, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PATHOSCOPE_DATA_PATH"); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv("PATHOSCOPE_PROC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PATHOSCOPE_PROC: %w", err)
		}
		c.Proc = n
	}
	if v := os.Getenv("PATHOSCOPE_DB_HOST"); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv("PATHOSCOPE_DB_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PATHOSCOPE_DB_PORT: %w", err)
		}
		c.DB.Port = n
	}
	if v := os.Getenv("PATHOSCOPE_DB_NAME"); v != "" {
		c.DB.Name = v
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.DataPath == "":
		return fmt.Errorf("data_path must not be empty")
	case c.Proc < 1:
		return fmt.Errorf("proc must be at least 1, got %d", c.Proc)
	case c.DB.Port < 1 || c.DB.Port > 65535:
		return fmt.Errorf("db port out of range: %d", c.DB.Port)
	}
	return nil
}

// MongoURI renders the connection string for the configured database.
func (c Config) MongoURI() string {
	return fmt.Sprintf("mongodb://%s:%d", c.DB.Host, c.DB.Port)
}
