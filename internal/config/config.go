package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	OutDir string `mapstructure:"outdir" yaml:"outdir" toml:"outdir"`

	// Text analyses
	TopN          int    `mapstructure:"top_n" yaml:"top_n" toml:"top_n"`
	NTopics       int    `mapstructure:"n_topics" yaml:"n_topics" toml:"n_topics"`
	MaxFeatures   int    `mapstructure:"max_features" yaml:"max_features" toml:"max_features"`
	LDAIterations int    `mapstructure:"lda_iterations" yaml:"lda_iterations" toml:"lda_iterations"`
	DocIDCol      string `mapstructure:"doc_id_col" yaml:"doc_id_col" toml:"doc_id_col"`
	TextCol       string `mapstructure:"text_col" yaml:"text_col" toml:"text_col"`

	// Tabular analyses
	KeyCol      string `mapstructure:"key_col" yaml:"key_col" toml:"key_col"`
	K           int    `mapstructure:"k" yaml:"k" toml:"k"`
	NComponents int    `mapstructure:"n_components" yaml:"n_components" toml:"n_components"`
	Restarts    int    `mapstructure:"restarts" yaml:"restarts" toml:"restarts"`
	Seed        int64  `mapstructure:"seed" yaml:"seed" toml:"seed"`

	// StorePath enables the SQLite run history when set.
	StorePath string `mapstructure:"store_path" yaml:"store_path" toml:"store_path"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" toml:"verbose"`
}

// Dir returns ~/.loomstat.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".loomstat"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.loomstat/config.yaml, creating the directory if necessary.
// A .toml path is written as TOML, anything else as YAML.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	var (
		b   []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		b, err = toml.Marshal(c)
	} else {
		b, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by the caller.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LOOMSTAT")
	v.AutomaticEnv()

	v.SetDefault("outdir", "outputs")
	v.SetDefault("top_n", 30)
	v.SetDefault("n_topics", 6)
	v.SetDefault("max_features", 5000)
	v.SetDefault("lda_iterations", 100)
	v.SetDefault("doc_id_col", "doc_id")
	v.SetDefault("text_col", "text")
	v.SetDefault("key_col", "Country")
	v.SetDefault("k", 4)
	v.SetDefault("n_components", 2)
	v.SetDefault("restarts", 10)
	v.SetDefault("seed", 42)
	v.SetDefault("store_path", "")
	v.SetDefault("verbose", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
