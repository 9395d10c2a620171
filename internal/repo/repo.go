package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/spf13/viper"
)

type Repo struct {
	Config *Config
}

// Initialize writes the default config to repoRoot.
func Initialize(repoRoot string) error {
	if err := os.MkdirAll(repoRoot, 0755); err != nil {
		return fmt.Errorf("create repo root %s: %w", repoRoot, err)
	}

	config, err := DefaultConfig()
	if err != nil {
		return err
	}
	data, err := toml.Marshal(*config)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	return os.WriteFile(filepath.Join(repoRoot, configName), data, 0644)
}

func Initialized(repoRoot string) bool {
	_, err := os.Stat(filepath.Join(repoRoot, configName))
	return err == nil
}

func Load(repoRoot string, configPath string) (*Repo, error) {
	config, err := UnmarshalConfig(viper.New(), repoRoot, configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &Repo{Config: config}, nil
}

func GetStoragePath(repoRoot string, subPath ...string) string {
	p := filepath.Join(repoRoot, "storage")
	for _, s := range subPath {
		p = filepath.Join(p, s)
	}

	return p
}

func GetLogPath(repoRoot string, config *Config) string {
	if filepath.IsAbs(config.Log.Dir) {
		return config.Log.Dir
	}
	return filepath.Join(repoRoot, config.Log.Dir)
}
