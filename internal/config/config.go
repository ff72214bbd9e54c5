// Package config loads the service configuration from an optional file
// (TOML, YAML or JSON) and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/browserscan/trustscore/internal/logging"
)

type Config struct {
	Server  ServerConfig   `toml:"server" json:"server" yaml:"server"`
	Redis   RedisConfig    `toml:"redis" json:"redis" yaml:"redis"`
	Reports ReportConfig   `toml:"reports" json:"reports" yaml:"reports"`
	GeoIP   GeoIPConfig    `toml:"geoip" json:"geoip" yaml:"geoip"`
	Logging logging.Config `toml:"logging" json:"logging" yaml:"logging"`

	// envErrs collects environment values that failed to parse.
	envErrs []error
}

// Port is a TCP port. Files may write it as a number or a string.
type Port string

func (p *Port) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*p = Port(v)
	case int64:
		*p = Port(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("port: unsupported value %v (%T)", v, v)
	}
	return nil
}

func (p *Port) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Port(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("port: %w", err)
	}
	*p = Port(strconv.Itoa(n))
	return nil
}

func (p *Port) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("port: line %d: expected a scalar", n.Line)
	}
	*p = Port(n.Value)
	return nil
}

func (p Port) String() string { return string(p) }

type ServerConfig struct {
	Port                  Port     `toml:"port" json:"port" yaml:"port"`
	ReadTimeoutSeconds    int      `toml:"read_timeout_seconds" json:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds   int      `toml:"write_timeout_seconds" json:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds    int      `toml:"idle_timeout_seconds" json:"idle_timeout_seconds" yaml:"idle_timeout_seconds"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds" json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	AllowedOrigins        []string `toml:"allowed_origins" json:"allowed_origins" yaml:"allowed_origins"`
}

type RedisConfig struct {
	// URL in redis://[user:pass@]host:port/db form. Empty keeps reports in memory.
	URL       string `toml:"url" json:"url" yaml:"url"`
	KeyPrefix string `toml:"key_prefix" json:"key_prefix" yaml:"key_prefix"`
}

type ReportConfig struct {
	TTLSeconds int `toml:"ttl_seconds" json:"ttl_seconds" yaml:"ttl_seconds"`
}

// GeoIPConfig points at MaxMind databases. Without a City database the
// service runs with a lookup that only knows bogon space.
type GeoIPConfig struct {
	CityDB      string `toml:"city_db" json:"city_db" yaml:"city_db"`
	ASNDB       string `toml:"asn_db" json:"asn_db" yaml:"asn_db"`
	AnonymousDB string `toml:"anonymous_db" json:"anonymous_db" yaml:"anonymous_db"`
	// StaticFile is a JSON intel file keyed by IP. Its entries take
	// precedence over the databases.
	StaticFile string `toml:"static_file" json:"static_file" yaml:"static_file"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  "3000",
			ReadTimeoutSeconds:    10,
			WriteTimeoutSeconds:   30,
			IdleTimeoutSeconds:    60,
			RequestTimeoutSeconds: 30,
			AllowedOrigins:        []string{"*"},
		},
		Redis:   RedisConfig{KeyPrefix: "trustscore:report:"},
		Reports: ReportConfig{TTLSeconds: 24 * 60 * 60},
		Logging: logging.Config{Level: "info", Format: "json"},
	}
}

// Load reads path (if non-empty and present), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

// ApplyEnvOverrides applies environment variables on top of the file values.
// PORT and REDIS_URL keep their conventional names; everything else is
// prefixed with TRUSTSCORE_.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = Port(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("TRUSTSCORE_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("TRUSTSCORE_REPORT_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.envErrs = append(c.envErrs, fmt.Errorf("TRUSTSCORE_REPORT_TTL_SECONDS: not an integer: %q", v))
		} else {
			c.Reports.TTLSeconds = n
		}
	}
	if v := os.Getenv("TRUSTSCORE_GEOIP_CITY_DB"); v != "" {
		c.GeoIP.CityDB = v
	}
	if v := os.Getenv("TRUSTSCORE_GEOIP_ASN_DB"); v != "" {
		c.GeoIP.ASNDB = v
	}
	if v := os.Getenv("TRUSTSCORE_GEOIP_ANONYMOUS_DB"); v != "" {
		c.GeoIP.AnonymousDB = v
	}
	if v := os.Getenv("TRUSTSCORE_GEOIP_STATIC_FILE"); v != "" {
		c.GeoIP.StaticFile = v
	}
	if v := os.Getenv("TRUSTSCORE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TRUSTSCORE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.envErrs...)

	if port, err := strconv.Atoi(string(c.Server.Port)); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: invalid port %q", c.Server.Port))
	}
	for name, v := range map[string]int{
		"server.read_timeout_seconds":    c.Server.ReadTimeoutSeconds,
		"server.write_timeout_seconds":   c.Server.WriteTimeoutSeconds,
		"server.idle_timeout_seconds":    c.Server.IdleTimeoutSeconds,
		"server.request_timeout_seconds": c.Server.RequestTimeoutSeconds,
		"reports.ttl_seconds":            c.Reports.TTLSeconds,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", name, v))
		}
	}
	if c.GeoIP.CityDB == "" && (c.GeoIP.ASNDB != "" || c.GeoIP.AnonymousDB != "") {
		errs = append(errs, errors.New("geoip: asn_db and anonymous_db require city_db"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// ReportTTL is Reports.TTLSeconds as a duration.
func (c *Config) ReportTTL() time.Duration {
	return time.Duration(c.Reports.TTLSeconds) * time.Second
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (s ServerConfig) ReadTimeout() time.Duration    { return seconds(s.ReadTimeoutSeconds) }
func (s ServerConfig) WriteTimeout() time.Duration   { return seconds(s.WriteTimeoutSeconds) }
func (s ServerConfig) IdleTimeout() time.Duration    { return seconds(s.IdleTimeoutSeconds) }
func (s ServerConfig) RequestTimeout() time.Duration { return seconds(s.RequestTimeoutSeconds) }
