package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessDay(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	now := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

	got, err := businessDay("", now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, loc), got)

	got, err = businessDay("2025-01-31", now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, loc), got)

	_, err = businessDay("31/01/2025", now, loc)
	assert.Error(t, err)
}

func TestRunRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	err := run([]string{"-date", "2025-03-14"})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dailyreport")
	t.Setenv("BATCH_CONCURRENCY", "0")
	err := run([]string{"-date", "2025-03-14"})
	assert.ErrorContains(t, err, "BATCH_CONCURRENCY")

	t.Setenv("BATCH_CONCURRENCY", "4")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	err = run([]string{"-date", "2025-03-14"})
	assert.ErrorContains(t, err, "APP_TIMEZONE")
}

func TestRunRejectsNonPositiveConcurrencyFlag(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dailyreport")
	err := run([]string{"-date", "2025-03-14", "-concurrency", "0"})
	assert.ErrorContains(t, err, "-concurrency")
}
