package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Output is the default output format: table, csv or json.
	Output string `yaml:"output"`
}

func defaultConfig() *Config {
	return &Config{Output: "table"}
}

// Read loads the configuration from the given path, falling back to
// ~/.knotql/config.yml. A missing file yields the defaults.
func Read(path string) (*Config, error) {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, errors.Wrap(err, "couldn't resolve home directory")
		}
		path = filepath.Join(home, ".knotql", "config.yml")
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	} else if err != nil {
		return nil, errors.Wrap(err, "couldn't open configuration file")
	}
	defer f.Close()

	out := defaultConfig()
	if err := yaml.NewDecoder(f).Decode(out); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}
	return out, nil
}
