package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hue-alerts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
bridge:
  credentials_file: /var/lib/hue-alerts/credentials.json
  discovery:
    ssdp: false
feed:
  username: alice
  token: secret
  timeout: 20s
  max_delay: 2m
actuator:
  default_target: group:3
  alert:
    brightness: 150
    xy: [0.2, 0.7]
    hold_on: 500ms
rules:
  - method: userEnter
    when: inFanclub
  - method: tip
    when: tokens >= 100
    target: light:4
http:
  addr: 127.0.0.1:8090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/hue-alerts/credentials.json", cfg.Bridge.CredentialsFile)
	assert.False(t, cfg.Bridge.Discovery.SSDP)
	assert.True(t, cfg.Bridge.Discovery.MDNS)
	assert.Equal(t, 20*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Feed.MaxDelay)
	assert.Equal(t, 5*time.Second, cfg.Feed.InitialDelay)
	assert.Equal(t, "group:3", cfg.Actuator.DefaultTarget)
	assert.Equal(t, 150, cfg.Actuator.Alert.Brightness)
	assert.Equal(t, []float32{0.2, 0.7}, cfg.Actuator.Alert.XY)
	assert.Equal(t, 500*time.Millisecond, cfg.Actuator.Alert.HoldOn)
	assert.Equal(t, time.Second, cfg.Actuator.Alert.HoldOff)
	assert.Len(t, cfg.Rules, 2)
	assert.Equal(t, "127.0.0.1:8090", cfg.HTTP.Addr)
	assert.NoError(t, cfg.ValidateFeed())

	rules, err := cfg.CompileRules()
	require.NoError(t, err)
	assert.Equal(t, "light:4", rules[1].Target)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "credentials.json", cfg.Bridge.CredentialsFile)
	assert.Equal(t, 3, cfg.Bridge.Enrollment.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Bridge.Enrollment.RetryDelay)
	assert.Equal(t, 5*time.Second, cfg.Feed.InitialDelay)
	assert.Equal(t, 60*time.Second, cfg.Feed.MaxDelay)
	assert.Equal(t, 2.0, cfg.Feed.Factor)
	assert.Equal(t, 30*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "group:0", cfg.Actuator.DefaultTarget)
	assert.Equal(t, 254, cfg.Actuator.Neutral.Brightness)
	assert.Equal(t, []RuleConfig{{Method: "userEnter", When: "inFanclub"}}, cfg.Rules)

	assert.ErrorContains(t, cfg.ValidateFeed(), "feed.username")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "feed: [yaml: content"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoad_ValidationCollectsEveryProblem(t *testing.T) {
	path := writeConfig(t, `
feed:
  factor: 0.5
actuator:
  default_target: scene:1
  neutral:
    brightness: 0
    xy: [0.4]
rules:
  - method: ""
  - method: tip
    when: "tokens >>"
logging:
  level: verbose
`)

	_, err := Load(path)
	require.Error(t, err)
	for _, want := range []string{
		"feed.factor",
		"actuator.default_target",
		"actuator.neutral.brightness",
		"actuator.neutral.xy",
		"rules[0]",
		"rules[1]",
		"logging.level",
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HUE_ALERTS_FEED_USERNAME", "bob")
	t.Setenv("HUE_ALERTS_FEED_TOKEN", "from-env")
	t.Setenv("HUE_ALERTS_FEED_TIMEOUT", "45")
	t.Setenv("HUE_ALERTS_FEED_MAX_DELAY", "90s")
	t.Setenv("HUE_ALERTS_LOGGING_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "feed:\n  username: alice\n"))
	require.NoError(t, err)

	assert.Equal(t, "bob", cfg.Feed.Username)
	assert.Equal(t, "from-env", cfg.Feed.Token)
	assert.Equal(t, 45*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Feed.MaxDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_BadEnvDuration(t *testing.T) {
	t.Setenv("HUE_ALERTS_FEED_TIMEOUT", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "HUE_ALERTS_FEED_TIMEOUT")
}
