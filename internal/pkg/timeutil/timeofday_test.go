package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:15:00", want: "09:15:00"},
		{in: "18:00", want: "18:00:00"},
		{in: "23:59:59", want: "23:59:59"},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTimeOfDay_On(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	date := time.Date(2026, 3, 14, 17, 45, 0, 0, loc)

	got := NewTimeOfDay(18, 0, 0).On(date)

	assert.Equal(t, time.Date(2026, 3, 14, 18, 0, 0, 0, loc), got)
}

func TestTimeOfDay_OfDiscardsDate(t *testing.T) {
	a := Of(time.Date(2026, 1, 1, 9, 20, 0, 0, time.UTC))
	b := Of(time.Date(2030, 7, 9, 9, 20, 0, 0, time.UTC))

	assert.Equal(t, a, b)
	assert.True(t, a > NewTimeOfDay(9, 15, 0))
}

func TestTimeOfDay_Kitchen(t *testing.T) {
	assert.Equal(t, "09:00 AM", NewTimeOfDay(9, 0, 0).Kitchen())
	assert.Equal(t, "06:30 PM", NewTimeOfDay(18, 30, 0).Kitchen())
}

func TestTimeOfDay_JSON(t *testing.T) {
	var payload struct {
		Start TimeOfDay `json:"start"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"start":"09:05"}`), &payload))
	assert.Equal(t, NewTimeOfDay(9, 5, 0), payload.Start)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"09:05:00"}`, string(out))
}

func TestMonthBounds(t *testing.T) {
	d := time.Date(2024, 2, 17, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(d))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), EndOfMonth(d))
	assert.True(t, SameDay(d, DateOf(d)))
}
