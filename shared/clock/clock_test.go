package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fleet/shared/clock"
)

func TestTruncate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	assert.NoError(t, err)

	at := time.Date(2026, time.June, 10, 17, 42, 13, 999, loc)
	got := clock.Truncate(at)

	assert.Equal(t, time.Date(2026, time.June, 10, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestFixed(t *testing.T) {
	at := time.Date(2026, time.June, 10, 17, 42, 0, 0, time.UTC)
	clk := clock.Fixed(at)

	assert.Equal(t, at, clk.Now())
	assert.Equal(t, time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC), clk.Today())
}

func TestNew(t *testing.T) {
	clk := clock.New()

	today := clk.Today()

	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, 0, today.Minute())
	assert.False(t, clk.Now().Before(today))
}
