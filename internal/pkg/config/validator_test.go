package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	for _, valid := range []string{"0 6 * * *", "*/30 * * * *", "0 6 * * 1-5", "0 0 1 * *"} {
		assert.NoError(t, ValidateCronSchedule(valid), valid)
	}
	for _, invalid := range []string{"", "daily", "61 * * * *", "0 6 * *", "@every 1h"} {
		assert.Error(t, ValidateCronSchedule(invalid), invalid)
	}
}

func TestValidateTimezone(t *testing.T) {
	for _, valid := range []string{"UTC", "America/New_York", "Europe/Berlin", "Asia/Tokyo"} {
		assert.NoError(t, ValidateTimezone(valid), valid)
	}
	for _, invalid := range []string{"", "Mars/Olympus", "GMT+25"} {
		assert.Error(t, ValidateTimezone(invalid), invalid)
	}
}

func TestValidateDuration(t *testing.T) {
	assert.NoError(t, ValidateDuration(time.Minute, time.Minute, time.Hour))
	assert.NoError(t, ValidateDuration(time.Hour, time.Minute, time.Hour))
	assert.ErrorContains(t, ValidateDuration(time.Second, time.Minute, time.Hour), "below minimum")
	assert.ErrorContains(t, ValidateDuration(2*time.Hour, time.Minute, time.Hour), "exceeds maximum")
	assert.ErrorContains(t, ValidateDuration(time.Minute, time.Hour, time.Minute), "invalid range")
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(1, 1, 2000))
	assert.NoError(t, ValidateIntRange(2000, 1, 2000))
	assert.ErrorContains(t, ValidateIntRange(0, 1, 2000), "below minimum")
	assert.ErrorContains(t, ValidateIntRange(2001, 1, 2000), "exceeds maximum")
	assert.ErrorContains(t, ValidateIntRange(5, 10, 1), "invalid range")
}

func TestValidatePositiveAndNonNegativeDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))

	assert.NoError(t, ValidateNonNegativeDuration(0))
	assert.Error(t, ValidateNonNegativeDuration(-time.Second))
}
