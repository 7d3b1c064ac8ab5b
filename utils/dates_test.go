package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{raw: "2024-11-01", want: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
		{raw: " 2024-11-01 ", want: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
		{raw: "2024-11-01T23:15:00Z", want: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
		{raw: "2024-11-01T01:00:00+09:00", want: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
		{raw: "01/11/2024", wantErr: true},
		{raw: "2024-02-30", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestTruncateDate(t *testing.T) {
	in := time.Date(2024, 10, 1, 9, 30, 15, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), TruncateDate(in))
}
