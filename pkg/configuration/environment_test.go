package configuration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/pkg/configuration"
)

func TestLoadFor_Defaults(t *testing.T) {
	conf, err := configuration.LoadFor(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", conf.SocketAddress)
	assert.Equal(t, 5, conf.RateLimit.SubmissionMax)
	assert.Equal(t, time.Hour, conf.RateLimit.SubmissionWindow)
	assert.Equal(t, 100, conf.Intake.MaxNameLength)
	assert.Equal(t, 254, conf.Intake.MaxEmailLength)
	assert.Equal(t, 2048, conf.Intake.MaxURLLength)
	assert.Equal(t, 5000, conf.Intake.MaxMessageLength)
	assert.Equal(t, int64(10<<20), conf.Intake.MaxVoiceNoteBytes)
	assert.Equal(t, 180, conf.Intake.MaxVoiceNoteSeconds)
	assert.Equal(t, 7, conf.Workflow.TurnaroundDays)
	assert.False(t, conf.Workflow.HoldExtendsSLA)
	assert.Contains(t, conf.Intake.AllowedAudioTypes, "audio/webm")
	assert.NotNil(t, conf.Logger())
}

func TestLoadFor_EnvOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_SUBMISSION_MAX", "3")
	t.Setenv("RATE_LIMIT_SUBMISSION_WINDOW", "30m")
	t.Setenv("WORKFLOW_HOLD_EXTENDS_SLA", "true")

	conf, err := configuration.LoadFor(nil)
	require.NoError(t, err)

	assert.Equal(t, 3, conf.RateLimit.SubmissionMax)
	assert.Equal(t, 30*time.Minute, conf.RateLimit.SubmissionWindow)
	assert.True(t, conf.Workflow.HoldExtendsSLA)
}

func TestLoadFor_InvalidRateLimitStorage(t *testing.T) {
	t.Setenv("RATE_LIMIT_STORAGE", "memcached")

	_, err := configuration.LoadFor(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
}

func TestLoadFor_RedisStorageRequiresURL(t *testing.T) {
	t.Setenv("RATE_LIMIT_STORAGE", "redis")
	t.Setenv("RATE_LIMIT_REDIS_URL", "")

	_, err := configuration.LoadFor(nil)
	require.Error(t, err)
}

func TestConnectionString(t *testing.T) {
	t.Setenv("DB_NAME", "storefix_test")
	t.Setenv("DB_HOST", "db.internal")

	conf, err := configuration.LoadFor(nil)
	require.NoError(t, err)
	assert.Contains(t, conf.Database.Opts, "dbname=storefix_test")
	assert.Contains(t, conf.Database.Opts, "host=db.internal")
}
