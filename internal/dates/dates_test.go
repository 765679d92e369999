package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := Location("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestToRemote(t *testing.T) {
	loc := newYork(t)
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"winter wall clock", "2026-01-16 23:59:00", "2026-01-17T04:59:00Z", true},
		{"summer wall clock", "2026-07-01 09:00:00", "2026-07-01T13:00:00Z", true},
		{"minutes only", "2026-07-01 09:00", "2026-07-01T13:00:00Z", true},
		{"date only", "2026-01-20", "2026-01-20T05:00:00Z", true},
		{"offset kept as instant", "2026-01-16T23:59:00-05:00", "2026-01-17T04:59:00Z", true},
		{"already utc", "2026-01-17T04:59:00Z", "2026-01-17T04:59:00Z", true},
		{"not a date", "next friday", "next friday", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToRemote(tt.in, loc)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToLocal(t *testing.T) {
	loc := newYork(t)

	got, ok := ToLocal("2026-01-17T04:59:00Z", loc)
	assert.True(t, ok)
	assert.Equal(t, "2026-01-16 23:59:00", got)

	got, ok = ToLocal("2026-01-16 23:59:00", loc)
	assert.False(t, ok)
	assert.Equal(t, "2026-01-16 23:59:00", got)
}

func TestRoundTripAcrossZones(t *testing.T) {
	for _, zone := range []string{"America/New_York", "Asia/Kolkata", "UTC"} {
		loc, err := Location(zone)
		require.NoError(t, err)
		remote, ok := ToRemote("2026-03-10 02:30:00", loc)
		require.True(t, ok, zone)
		local, ok := ToLocal(remote, loc)
		require.True(t, ok, zone)
		back, _ := ToRemote(local, loc)
		assert.Equal(t, remote, back, zone)
	}
}

func TestLocation(t *testing.T) {
	loc, err := Location("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = Location("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestIsKey(t *testing.T) {
	assert.True(t, IsKey("due_at"))
	assert.True(t, IsKey("delayed_post_at"))
	assert.False(t, IsKey("updated_at"))
	assert.False(t, IsKey("title"))
}
