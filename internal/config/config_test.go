package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/savour-test"},
		Server: ServerConfig{Port: "8080"},
		Session: SessionConfig{
			TTL:        720 * time.Hour,
			CookieName: "savour_session",
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "sandbox"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroSessionTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Session.TTL = 0
	assert.Error(t, cfg.Validate())
}

func TestGetConfigValuePrecedence(t *testing.T) {
	t.Setenv("SAVOUR_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "SAVOUR_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "SAVOUR_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "SAVOUR_TEST_MISSING", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	t.Setenv("SAVOUR_TEST_BOOL", "yes")
	assert.True(t, getBoolConfigValue("", "SAVOUR_TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("no", "SAVOUR_TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "SAVOUR_TEST_BOOL_MISSING", true))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("90s", "SAVOUR_TEST_DUR", "15s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseDurationValue("not-a-duration", "SAVOUR_TEST_DUR", "15s")
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("/var//data/../data", "")
	require.NoError(t, err)
	assert.Equal(t, "/var/data", got)
}
