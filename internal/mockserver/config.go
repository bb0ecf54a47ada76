package mockserver

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/artefactual-labs/apimock/internal/resolve"
	"github.com/artefactual-labs/apimock/internal/schemastore"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Mocks    MocksConfig    `toml:"mocks"`
	Cache    CacheConfig    `toml:"cache"`
	Registry RegistryConfig `toml:"registry"`
}

type ServerConfig struct {
	Listen       string   `toml:"listen"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

type MocksConfig struct {
	// Dir holds the endpoint files.
	Dir string `toml:"dir"`
	// Schemas holds the declaration sources. Defaults to Dir.
	Schemas string `toml:"schemas"`
}

type CacheConfig struct {
	MaxAge     Duration `toml:"max_age"`
	MaxEntries int      `toml:"max_entries"`
}

type RegistryConfig struct {
	Cooldown Duration `toml:"cooldown"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// LoadConfig reads and validates a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfig decodes a TOML configuration file without validating it.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Listen == "" {
		return errors.New("server.listen is required")
	}
	if c.Mocks.Dir == "" {
		return errors.New("mocks.dir is required")
	}
	if c.Cache.MaxAge < 0 || c.Cache.MaxEntries < 0 || c.Registry.Cooldown < 0 {
		return errors.New("cache and registry settings must not be negative")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}

// SchemaDir returns the directory searched for declarations.
func (c *Config) SchemaDir() string {
	if c.Mocks.Schemas != "" {
		return c.Mocks.Schemas
	}
	return c.Mocks.Dir
}

// ResolverConfig returns the resolver settings described by c.
func (c *Config) ResolverConfig() resolve.Config {
	return resolve.Config{
		SchemaDir: c.SchemaDir(),
		Cache: schemastore.CacheConfig{
			MaxAge:     time.Duration(c.Cache.MaxAge),
			MaxEntries: c.Cache.MaxEntries,
		},
		Registry: schemastore.RegistryConfig{
			Cooldown: time.Duration(c.Registry.Cooldown),
		},
	}
}
