package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/responsio/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the settings file looked up in the working directory.
const DefaultFile = "responsio.yaml"

// Storage drivers.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Settings is the configuration of the command line client.
type Settings struct {
	// URL is the asset root. Ignored when Script and Page are set.
	URL      string        `yaml:"url"`
	Script   string        `yaml:"script"`
	Page     string        `yaml:"page"`
	Identity string        `yaml:"identity"`
	LogLevel string        `yaml:"log_level"`
	Timeout  time.Duration `yaml:"timeout"`
	Storage  Storage       `yaml:"storage"`
	Metrics  Metrics       `yaml:"metrics"`
}

// Storage selects and configures the durable medium.
type Storage struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
	Redis     Redis  `yaml:"redis"`

	// EncryptionKey is a base64 AES-256 key. When set, documents are encrypted at rest.
	EncryptionKey string `yaml:"encryption_key"`
}

type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type Metrics struct {
	// Addr serves /metrics when set, e.g. ":9090".
	Addr string `yaml:"addr"`
}

// Defaults returns the settings used when no file is present.
func Defaults() Settings {
	return Settings{
		LogLevel: "info",
		Timeout:  30 * time.Second,
		Storage: Storage{
			Driver:    DriverFile,
			Path:      ".responsio/storage",
			Namespace: domain.Namespace,
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "responsio:storage:",
			},
		},
	}
}

// Load reads settings from path. A missing file yields the defaults.
// Fields absent from the file keep their default values.
func Load(path string) (Settings, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the fields with a closed set of values.
func (s Settings) Validate() error {
	switch s.Storage.Driver {
	case DriverFile, DriverRedis, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", s.Storage.Driver)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", s.Timeout)
	}
	return nil
}

// Tree resolves the client configuration described by the settings.
// Script-based discovery wins over an explicit URL.
func (s Settings) Tree() (Tree, error) {
	if s.Script != "" && s.Page != "" {
		return FromScript(s.Page, s.Script, s.Identity)
	}
	if s.URL == "" {
		return Tree{}, fmt.Errorf("no service url configured")
	}
	return FromRoot(s.URL, s.Identity)
}
