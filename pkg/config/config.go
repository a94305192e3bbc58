package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Index   IndexConfig   `yaml:"index"`
	Dataset DatasetConfig `yaml:"dataset"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`     // HTTP Listen Address (e.g. :8080)
	TCPAddr string `yaml:"tcp_addr"` // TCP Listen Address (e.g. :9090)
}

type IndexConfig struct {
	InitialCapacity int     `yaml:"initial_capacity"`
	LoadFactor      float64 `yaml:"load_factor"`
	MaxProbes       int     `yaml:"max_probes"`     // last quadratic offset tried is MaxProbes^2
	MaxAVLHeight    int     `yaml:"max_avl_height"` // AVL buckets taller than this become Red-Black
	Hash            string  `yaml:"hash"`           // "xxhash" or "java"
}

type DatasetConfig struct {
	Path        string `yaml:"path"`         // CSV file preloaded by the server
	SQLitePath  string `yaml:"sqlite_path"`  // transaction archive preloaded by the server
	JournalPath string `yaml:"journal_path"` // insert journal replayed on start and appended to while serving
}

type CacheConfig struct {
	SearchEntries int `yaml:"search_entries"` // 0 disables the search cache
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	DefaultCapacity     = 512
	DefaultLoadFactor   = 0.75
	DefaultMaxProbes    = 3
	DefaultMaxAVLHeight = 10
	DefaultHash         = "xxhash"
)

// DefaultIndex returns the index parameters of a fresh table.
func DefaultIndex() IndexConfig {
	return IndexConfig{
		InitialCapacity: DefaultCapacity,
		LoadFactor:      DefaultLoadFactor,
		MaxProbes:       DefaultMaxProbes,
		MaxAVLHeight:    DefaultMaxAVLHeight,
		Hash:            DefaultHash,
	}
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			TCPAddr: ":9090",
		},
		Index: DefaultIndex(),
		Cache: CacheConfig{
			SearchEntries: 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath == "" {
		for _, p := range []string{"configs/txindex.yaml", "txindex.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, errors.Wrapf(err, "parse %s", p)
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse %s", configPath)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Index = cfg.Index.Normalize()
	if cfg.Cache.SearchEntries < 0 {
		cfg.Cache.SearchEntries = 0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.TCPAddr == "" {
		cfg.Server.TCPAddr = ":9090"
	}
}

// Normalize replaces out-of-range values with defaults. The capacity is
// raised above MaxProbes^2 so the probe offsets of one key never wrap onto
// each other.
func (ic IndexConfig) Normalize() IndexConfig {
	if ic.LoadFactor <= 0 || ic.LoadFactor > 1 {
		ic.LoadFactor = DefaultLoadFactor
	}
	if ic.MaxProbes <= 0 {
		ic.MaxProbes = DefaultMaxProbes
	}
	if ic.MaxAVLHeight <= 0 {
		ic.MaxAVLHeight = DefaultMaxAVLHeight
	}
	if ic.InitialCapacity <= 0 {
		ic.InitialCapacity = DefaultCapacity
	}
	if floor := ic.MaxProbes*ic.MaxProbes + 1; ic.InitialCapacity < floor {
		ic.InitialCapacity = floor
	}
	if ic.Hash != "java" {
		ic.Hash = DefaultHash
	}
	return ic
}
