package cli

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/pipeline"
)

const (
	configFile  = "config.toml"
	defaultAddr = ":8080"
)

// Config is the optional TOML configuration file. Command-line flags
// override its values.
//
//	[cache]
//	dir = "/var/cache/pangraph"
//	ttl = "72h"
//	redis_addr = "localhost:6379"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//
//	[marginalize]
//	workers = 4
//	check = true
//
//	[server]
//	addr = ":8080"
type Config struct {
	Cache       CacheConfig       `toml:"cache"`
	Store       StoreConfig       `toml:"store"`
	Marginalize MarginalizeConfig `toml:"marginalize"`
	Server      ServerConfig      `toml:"server"`
}

// CacheConfig selects the cache backend. A Redis address takes precedence
// over the file cache directory.
type CacheConfig struct {
	Dir           string   `toml:"dir"`
	TTL           duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// StoreConfig configures persistence of marginals in MongoDB.
type StoreConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// MarginalizeConfig holds defaults for the marginalize command.
type MarginalizeConfig struct {
	Workers int  `toml:"workers"`
	Check   bool `toml:"check"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "36h" into a time.Duration.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() Config {
	return Config{
		Cache:       CacheConfig{TTL: duration{pipeline.DefaultTTL}},
		Marginalize: MarginalizeConfig{Check: true},
		Server:      ServerConfig{Addr: defaultAddr},
	}
}

// loadConfig reads the config file at path. An empty path reads the default
// location and tolerates its absence; an explicit path must exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errs.New(errs.ErrCodeInvalidFormat, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if cfg.Marginalize.Workers < 0 {
		return cfg, errs.New(errs.ErrCodeInvalidInput, "config %s: workers must not be negative", path)
	}
	if cfg.Cache.TTL.Duration <= 0 {
		cfg.Cache.TTL.Duration = pipeline.DefaultTTL
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	return cfg, nil
}
