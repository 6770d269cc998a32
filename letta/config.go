package letta

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// DefaultBaseURL points at a local Letta server's versioned API root.
const DefaultBaseURL = "http://localhost:8283/v1"

// Config carries the upstream connection settings: the API root and the two
// credential headers forwarded on every call.
type Config struct {
	BaseURL  string `koanf:"base_url" yaml:"base_url"`
	Token    string `koanf:"token" yaml:"token"`
	Password string `koanf:"password" yaml:"password"`
}

// LoadConfig reads an optional YAML file and overlays LETTA_* environment
// variables (LETTA_BASE_URL, LETTA_TOKEN, LETTA_PASSWORD).
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %v", path)
		}
	}
	if err := k.Load(env.Provider("LETTA_", ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, "LETTA_"))
	}), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}
