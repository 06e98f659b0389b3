// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of media-mgmt-cli.
//
// media-mgmt-cli is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/factory"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/retrieval"
)

// Configuration keys as they appear in the dotenv file and the environment.
const (
	KeyBucket           = "MGMT_BUCKET"
	KeyObjectPrefix     = "MGMT_OBJECT_PREFIX"
	KeyLocalDir         = "MGMT_LOCAL_DIR"
	KeyRegion           = "MGMT_REGION"
	KeyEndpoint         = "MGMT_ENDPOINT"
	KeyPollInterval     = "MGMT_POLL_INTERVAL"
	KeyPollTimeout      = "MGMT_POLL_TIMEOUT"
	KeyRestoreDays      = "MGMT_RESTORE_DAYS"
	KeyLogLevel         = "MGMT_LOG_LEVEL"
	KeyOutputFormat     = "MGMT_OUTPUT_FORMAT"
	KeyBackend          = "MGMT_BACKEND"
	KeyProbeConcurrency = "MGMT_PROBE_CONCURRENCY"
	KeyProbeRate        = "MGMT_PROBE_RATE"
)

// ConfigKeys lists every key in the order it is written to the config file.
var ConfigKeys = []string{
	KeyBucket,
	KeyObjectPrefix,
	KeyLocalDir,
	KeyRegion,
	KeyEndpoint,
	KeyPollInterval,
	KeyPollTimeout,
	KeyRestoreDays,
	KeyLogLevel,
	KeyOutputFormat,
	KeyBackend,
	KeyProbeConcurrency,
	KeyProbeRate,
}

// PromptedKeys are the keys `mgmt config` asks for.
var PromptedKeys = []string{KeyBucket, KeyObjectPrefix, KeyLocalDir}

const (
	configDirName  = "mgmt"
	configFileName = "config"
	logFileName    = "mgmt.log"
)

// Config holds the CLI configuration settings.
type Config struct {
	Backend          string
	Bucket           string
	ObjectPrefix     string
	LocalDir         string
	Region           string
	Endpoint         string
	PollInterval     time.Duration
	PollTimeout      time.Duration
	RestoreDays      int32
	LogLevel         string
	OutputFormat     string
	ProbeConcurrency int
	ProbeRate        float64

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string
}

// ConfigDir returns ~/.config/mgmt.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", configDirName), nil
}

// DefaultConfigFile returns ~/.config/mgmt/config.
func DefaultConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultLogFile returns ~/.config/mgmt/mgmt.log.
func DefaultLogFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// viperKey maps a config key to the lower-case name viper stores it under.
func viperKey(key string) string {
	return strings.ToLower(key)
}

// InitConfig initializes the configuration using Viper.
// Configuration priority: flags > env vars > config file > defaults.
// A missing config file is not an error.
func InitConfig(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault(viperKey(KeyBackend), "s3")
	v.SetDefault(viperKey(KeyPollInterval), retrieval.DefaultPollInterval.String())
	v.SetDefault(viperKey(KeyPollTimeout), retrieval.DefaultMaxWait.String())
	v.SetDefault(viperKey(KeyRestoreDays), retrieval.DefaultRestoreDays)
	v.SetDefault(viperKey(KeyLogLevel), "debug")
	v.SetDefault(viperKey(KeyOutputFormat), string(FormatText))
	v.SetDefault(viperKey(KeyProbeConcurrency), 8)
	v.SetDefault(viperKey(KeyProbeRate), 10)

	// Bind environment variables; MGMT_BUCKET resolves mgmt_bucket
	v.AutomaticEnv()

	if cfgFile == "" {
		path, err := DefaultConfigFile()
		if err != nil {
			return v, nil //nolint:nilerr // no home directory means env and defaults only
		}
		cfgFile = path
	}
	if _, err := os.Stat(cfgFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, err
	}

	v.SetConfigFile(cfgFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
	}

	return v, nil
}

// GetConfig extracts the configuration from Viper into a Config struct.
func GetConfig(v *viper.Viper) *Config {
	return &Config{
		Backend:          v.GetString(viperKey(KeyBackend)),
		Bucket:           v.GetString(viperKey(KeyBucket)),
		ObjectPrefix:     v.GetString(viperKey(KeyObjectPrefix)),
		LocalDir:         v.GetString(viperKey(KeyLocalDir)),
		Region:           v.GetString(viperKey(KeyRegion)),
		Endpoint:         v.GetString(viperKey(KeyEndpoint)),
		PollInterval:     v.GetDuration(viperKey(KeyPollInterval)),
		PollTimeout:      v.GetDuration(viperKey(KeyPollTimeout)),
		RestoreDays:      v.GetInt32(viperKey(KeyRestoreDays)),
		LogLevel:         v.GetString(viperKey(KeyLogLevel)),
		OutputFormat:     v.GetString(viperKey(KeyOutputFormat)),
		ProbeConcurrency: v.GetInt(viperKey(KeyProbeConcurrency)),
		ProbeRate:        v.GetFloat64(viperKey(KeyProbeRate)),
		ConfigFile:       v.ConfigFileUsed(),
	}
}

// GetStorageSettings converts Config to storage backend settings map.
func (c *Config) GetStorageSettings() map[string]string {
	settings := make(map[string]string)

	// Add non-empty settings
	if c.Bucket != "" {
		settings["bucket"] = c.Bucket
	}
	if c.Region != "" {
		settings["region"] = c.Region
	}
	if c.Endpoint != "" {
		settings["endpoint"] = c.Endpoint
		// S3-compatible endpoints rarely support virtual-hosted buckets
		settings["path_style"] = "true"
	}

	return settings
}

// RetrievalOptions builds the retrieval settings for a Coordinator.
func (c *Config) RetrievalOptions(logger adapters.Logger) retrieval.Options {
	opts := retrieval.Options{
		PollInterval: c.PollInterval,
		MaxWait:      c.PollTimeout,
		RestoreDays:  c.RestoreDays,
		ObjectPrefix: c.ObjectPrefix,
		Logger:       logger,
	}
	if c.ProbeRate > 0 {
		burst := c.ProbeConcurrency
		if burst < 1 {
			burst = 1
		}
		opts.Limiter = rate.NewLimiter(rate.Limit(c.ProbeRate), burst)
	}
	return opts
}

// Values returns the settings keyed by their config-file names. Unset
// numeric settings map to "".
func (c *Config) Values() map[string]string {
	return map[string]string{
		KeyBucket:           c.Bucket,
		KeyObjectPrefix:     c.ObjectPrefix,
		KeyLocalDir:         c.LocalDir,
		KeyRegion:           c.Region,
		KeyEndpoint:         c.Endpoint,
		KeyPollInterval:     durationValue(c.PollInterval),
		KeyPollTimeout:      durationValue(c.PollTimeout),
		KeyRestoreDays:      numberValue(float64(c.RestoreDays)),
		KeyLogLevel:         c.LogLevel,
		KeyOutputFormat:     c.OutputFormat,
		KeyBackend:          c.Backend,
		KeyProbeConcurrency: numberValue(float64(c.ProbeConcurrency)),
		KeyProbeRate:        numberValue(c.ProbeRate),
	}
}

func durationValue(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func numberValue(n float64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// DisplayConfig formats and displays the current configuration.
func DisplayConfig(cfg *Config, format string) string {
	switch format {
	case string(FormatJSON):
		return formatConfigJSON(cfg)
	case string(FormatTable):
		return formatConfigTable(cfg)
	default:
		return formatConfigText(cfg)
	}
}

func formatConfigText(cfg *Config) string {
	var b strings.Builder
	if cfg.ConfigFile != "" {
		fmt.Fprintf(&b, "Config File: %s\n", cfg.ConfigFile)
	}
	values := cfg.Values()
	for _, key := range ConfigKeys {
		if values[key] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n", key, values[key])
	}
	return b.String()
}

func formatConfigTable(cfg *Config) string {
	var b strings.Builder
	b.WriteString("┌────────────────────────┬────────────────────────────────────────┐\n")
	b.WriteString("│ Setting                │ Value                                  │\n")
	b.WriteString("├────────────────────────┼────────────────────────────────────────┤\n")
	values := cfg.Values()
	for _, key := range ConfigKeys {
		if values[key] == "" {
			continue
		}
		fmt.Fprintf(&b, "│ %-22s │ %-38s │\n", key, truncate(values[key], 38))
	}
	b.WriteString("└────────────────────────┴────────────────────────────────────────┘\n")
	return b.String()
}

func formatConfigJSON(cfg *Config) string {
	out := make(map[string]string)
	for key, value := range cfg.Values() {
		if value != "" {
			out[key] = value
		}
	}
	if cfg.ConfigFile != "" {
		out["config_file"] = cfg.ConfigFile
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}\n", err.Error())
	}
	return string(data) + "\n"
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ValidateConfig validates the configuration for the selected backend.
func ValidateConfig(cfg *Config) error {
	known := false
	for _, name := range factory.Backends() {
		if name == cfg.Backend {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
	if cfg.Backend == "s3" && cfg.Bucket == "" {
		return ErrBucketRequired
	}

	// Expand path if it contains ~
	if strings.HasPrefix(cfg.LocalDir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		cfg.LocalDir = filepath.Join(home, cfg.LocalDir[1:])
	}

	if cfg.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if cfg.RestoreDays <= 0 {
		return ErrInvalidRestoreDays
	}
	if cfg.ProbeConcurrency < 1 {
		cfg.ProbeConcurrency = 1
	}

	// Validate output format
	switch OutputFormat(cfg.OutputFormat) {
	case FormatText, FormatJSON, FormatTable:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedOutputFormat, cfg.OutputFormat)
	}

	return nil
}

// WriteConfig writes values to path in dotenv format. Known keys come first in
// ConfigKeys order, then any others sorted; empty values are omitted. The
// write holds an advisory lock on path.lock and replaces the file atomically.
func WriteConfig(path string, values map[string]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	if !locked {
		return ErrConfigLocked
	}
	defer func() { _ = lock.Unlock() }()

	var b strings.Builder
	written := make(map[string]bool, len(values))
	for _, key := range ConfigKeys {
		written[key] = true
		if value := values[key]; value != "" {
			fmt.Fprintf(&b, "%s=%s\n", key, value)
		}
	}
	extra := make([]string, 0)
	for key := range values {
		if !written[key] && values[key] != "" {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(&b, "%s=%s\n", key, values[key])
	}

	tmp, err := os.CreateTemp(dir, ".config-*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
