package config

import (
	"errors"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/domain/rule"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "hue-alerts.yaml"

const envPrefix = "HUE_ALERTS_"

// Config is the root configuration. It is loaded from YAML and can be
// overridden by environment variables.
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	Feed     FeedConfig     `yaml:"feed"`
	Actuator ActuatorConfig `yaml:"actuator"`
	Rules    []RuleConfig   `yaml:"rules"`
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
}

type BridgeConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	// DeviceType is the name this application registers under on the bridge.
	DeviceType        string           `yaml:"device_type"`
	CommandsPerSecond float64          `yaml:"commands_per_second"`
	Enrollment        EnrollmentConfig `yaml:"enrollment"`
	Discovery         DiscoveryConfig  `yaml:"discovery"`
}

type EnrollmentConfig struct {
	Attempts   int           `yaml:"attempts"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// DiscoveryConfig toggles the strategies of the discovery chain. They run
// in the order mdns, ssdp, cloud, manual.
type DiscoveryConfig struct {
	MDNS    bool          `yaml:"mdns"`
	SSDP    bool          `yaml:"ssdp"`
	Cloud   bool          `yaml:"cloud"`
	Manual  bool          `yaml:"manual"`
	Timeout time.Duration `yaml:"timeout"`
}

type FeedConfig struct {
	URL          string        `yaml:"url"`
	Username     string        `yaml:"username"`
	Token        string        `yaml:"token"`
	Timeout      time.Duration `yaml:"timeout"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Factor       float64       `yaml:"factor"`
	QueueSize    int           `yaml:"queue_size"`
}

type ActuatorConfig struct {
	DefaultTarget string        `yaml:"default_target"`
	Alert         AlertConfig   `yaml:"alert"`
	Neutral       ColorState    `yaml:"neutral"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

type AlertConfig struct {
	ColorState `yaml:",inline"`
	HoldOn     time.Duration `yaml:"hold_on"`
	HoldOff    time.Duration `yaml:"hold_off"`
}

type ColorState struct {
	Brightness int       `yaml:"brightness"`
	XY         []float32 `yaml:"xy"`
}

// RuleConfig triggers an alert for events of Method when the expression
// When holds. Target overrides actuator.default_target.
type RuleConfig struct {
	Method string `yaml:"method"`
	When   string `yaml:"when"`
	Target string `yaml:"target,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// HTTPConfig configures the status endpoint. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads path, applies HUE_ALERTS_<SECTION>_<KEY> environment overrides
// and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			CredentialsFile:   "credentials.json",
			DeviceType:        "hue-alerts#go",
			CommandsPerSecond: 10,
			Enrollment: EnrollmentConfig{
				Attempts:   3,
				RetryDelay: 5 * time.Second,
			},
			Discovery: DiscoveryConfig{
				MDNS:    true,
				SSDP:    true,
				Cloud:   true,
				Manual:  true,
				Timeout: 5 * time.Second,
			},
		},
		Feed: FeedConfig{
			URL:          "https://eventsapi.chaturbate.com/events/",
			Timeout:      30 * time.Second,
			InitialDelay: 5 * time.Second,
			MaxDelay:     60 * time.Second,
			Factor:       2,
		},
		Actuator: ActuatorConfig{
			DefaultTarget: "group:0",
			Alert: AlertConfig{
				ColorState: ColorState{Brightness: 200, XY: []float32{0.1, 0.8}},
				HoldOn:     600 * time.Millisecond,
				HoldOff:    time.Second,
			},
			Neutral:       ColorState{Brightness: 254, XY: []float32{0.413, 0.395}},
			ShutdownGrace: 10 * time.Second,
		},
		Rules: []RuleConfig{
			{Method: "userEnter", When: "inFanclub"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"BRIDGE_CREDENTIALS_FILE": &cfg.Bridge.CredentialsFile,
		"FEED_URL":                &cfg.Feed.URL,
		"FEED_USERNAME":           &cfg.Feed.Username,
		"FEED_TOKEN":              &cfg.Feed.Token,
		"ACTUATOR_DEFAULT_TARGET": &cfg.Actuator.DefaultTarget,
		"LOGGING_LEVEL":           &cfg.Logging.Level,
		"LOGGING_FORMAT":          &cfg.Logging.Format,
		"LOGGING_OUTPUT":          &cfg.Logging.Output,
		"HTTP_ADDR":               &cfg.HTTP.Addr,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"FEED_TIMEOUT":       &cfg.Feed.Timeout,
		"FEED_INITIAL_DELAY": &cfg.Feed.InitialDelay,
		"FEED_MAX_DELAY":     &cfg.Feed.MaxDelay,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok {
			continue
		}
		d, err := parseSecondsOrDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
	}
	return nil
}

// parseSecondsOrDuration accepts "30" as well as "30s".
func parseSecondsOrDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks everything every command needs. Feed credentials are
// only required to run the monitor; see ValidateFeed.
func (c *Config) Validate() error {
	var errs []string

	if c.Bridge.CredentialsFile == "" {
		errs = append(errs, "bridge.credentials_file is required")
	}
	if c.Bridge.DeviceType == "" {
		errs = append(errs, "bridge.device_type is required")
	}
	if c.Bridge.Enrollment.Attempts < 1 {
		errs = append(errs, "bridge.enrollment.attempts must be at least 1")
	}
	if c.Bridge.Discovery.Timeout <= 0 {
		errs = append(errs, "bridge.discovery.timeout must be positive")
	}

	if c.Feed.InitialDelay <= 0 {
		errs = append(errs, "feed.initial_delay must be positive")
	}
	if c.Feed.MaxDelay < c.Feed.InitialDelay {
		errs = append(errs, "feed.max_delay must not be below feed.initial_delay")
	}
	if c.Feed.Factor < 1 {
		errs = append(errs, "feed.factor must be at least 1")
	}
	if c.Feed.Timeout < time.Second {
		errs = append(errs, "feed.timeout must be at least 1s")
	}
	if c.Feed.QueueSize < 0 {
		errs = append(errs, "feed.queue_size must not be negative")
	}

	if _, err := model.ParseTarget(c.Actuator.DefaultTarget); err != nil {
		errs = append(errs, "actuator.default_target: "+err.Error())
	}
	errs = append(errs, c.Actuator.Alert.check("actuator.alert")...)
	errs = append(errs, c.Actuator.Neutral.check("actuator.neutral")...)
	if c.Actuator.Alert.HoldOn <= 0 || c.Actuator.Alert.HoldOff <= 0 {
		errs = append(errs, "actuator.alert hold_on and hold_off must be positive")
	}

	if len(c.Rules) == 0 {
		errs = append(errs, "at least one rule is required")
	}
	for i, r := range c.Rules {
		if _, err := rule.New(r.Method, r.When, r.Target); err != nil {
			errs = append(errs, fmt.Sprintf("rules[%d]: %v", i, err))
		}
		if r.Target != "" {
			if _, err := model.ParseTarget(r.Target); err != nil {
				errs = append(errs, fmt.Sprintf("rules[%d].target: %v", i, err))
			}
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, "logging.format must be text or json")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateFeed reports missing events API credentials.
func (c *Config) ValidateFeed() error {
	var missing []string
	if c.Feed.URL == "" {
		missing = append(missing, "feed.url")
	}
	if c.Feed.Username == "" {
		missing = append(missing, "feed.username ("+envPrefix+"FEED_USERNAME)")
	}
	if c.Feed.Token == "" {
		missing = append(missing, "feed.token ("+envPrefix+"FEED_TOKEN)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing events API settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CompileRules builds the trigger rules. Load has already validated them.
func (c *Config) CompileRules() ([]*rule.Rule, error) {
	rules := make([]*rule.Rule, 0, len(c.Rules))
	for _, rc := range c.Rules {
		r, err := rule.New(rc.Method, rc.When, rc.Target)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (s ColorState) check(section string) []string {
	var errs []string
	if s.Brightness < 1 || s.Brightness > 254 {
		errs = append(errs, section+".brightness must be between 1 and 254")
	}
	if len(s.XY) != 2 {
		errs = append(errs, section+".xy must have two coordinates")
		return errs
	}
	for _, v := range s.XY {
		if v < 0 || v > 1 {
			errs = append(errs, section+".xy coordinates must be between 0 and 1")
			break
		}
	}
	return errs
}
