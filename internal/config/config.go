// Package config loads servicegrid settings from a YAML file and
// SERVICEGRID_* environment variables, and reads deployment batch files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/andreybell91/ignite/internal/domain"
)

// Workflow engine names accepted in [Config.Engine].
const (
	EngineSync        = "sync"
	EngineGoWorkflows = "goworkflows"
	EngineDBOS        = "dbos"
)

// Config holds the settings of a servicegrid process.
type Config struct {
	// Database is the SQLite path for nodes, deployments and history.
	Database string `json:"database"`
	// Engine selects the workflow engine that runs deployments.
	Engine string `json:"engine"`
	// DBOSDatabaseURL is the Postgres URL used when Engine is dbos.
	DBOSDatabaseURL string `json:"dbosDatabaseURL,omitempty"`
	LogLevel        string `json:"logLevel"`
	// MetricsAddr is the listen address of the /metrics endpoint.
	MetricsAddr string `json:"metricsAddr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:    "servicegrid.db",
		Engine:      EngineSync,
		LogLevel:    "info",
		MetricsAddr: ":9464",
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse config %s: %v", domain.ErrInvalidArgument, path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if val := os.Getenv("SERVICEGRID_DATABASE"); val != "" {
		c.Database = val
	}
	if val := os.Getenv("SERVICEGRID_ENGINE"); val != "" {
		c.Engine = strings.ToLower(val)
	}
	if val := os.Getenv("SERVICEGRID_DBOS_DATABASE_URL"); val != "" {
		c.DBOSDatabaseURL = val
	}
	if val := os.Getenv("SERVICEGRID_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("SERVICEGRID_METRICS_ADDR"); val != "" {
		c.MetricsAddr = val
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("%w: database path is required", domain.ErrInvalidArgument))
	}
	switch c.Engine {
	case EngineSync, EngineGoWorkflows:
	case EngineDBOS:
		if c.DBOSDatabaseURL == "" {
			errs = append(errs, fmt.Errorf("%w: dbos engine needs dbosDatabaseURL", domain.ErrInvalidArgument))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown engine %q", domain.ErrInvalidArgument, c.Engine))
	}
	return errors.Join(errs...)
}

// LoadBatch reads a deployment batch from a YAML or JSON file. The file
// holds a top-level services list in the descriptor wire form.
func LoadBatch(path string, codec domain.DescriptorCodec) (domain.DeploymentBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DeploymentBatch{}, fmt.Errorf("read batch: %w", err)
	}
	return ParseBatch(data, codec)
}

// ParseBatch decodes a YAML or JSON batch document.
func ParseBatch(data []byte, codec domain.DescriptorCodec) (domain.DeploymentBatch, error) {
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return domain.DeploymentBatch{}, fmt.Errorf("%w: parse batch: %v", domain.ErrInvalidArgument, err)
	}
	return codec.DecodeBatch(doc)
}

// LoadDescriptor reads a single descriptor from a YAML or JSON file.
func LoadDescriptor(path string, codec domain.DescriptorCodec) (domain.ServiceDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ServiceDescriptor{}, fmt.Errorf("read descriptor: %w", err)
	}
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return domain.ServiceDescriptor{}, fmt.Errorf("%w: parse descriptor: %v", domain.ErrInvalidArgument, err)
	}
	return codec.Decode(doc)
}
