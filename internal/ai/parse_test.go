package ai

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTip(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "Take the bus twice a week.", "Take the bus twice a week.", false},
		{"markdown", "**Swap beef for chicken** on weekdays.", "Swap beef for chicken on weekdays.", false},
		{"first line only", "\n\n- Cycle to work.\n- Eat less beef.", "Cycle to work.", false},
		{"numbered", "1. Unplug idle chargers.", "Unplug idle chargers.", false},
		{"quoted", `"Line-dry your laundry."`, "Line-dry your laundry.", false},
		{"empty", "  \n ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTip(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrParseFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTipTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "word "
	}
	got, err := ParseTip(long)
	require.NoError(t, err)
	assert.Equal(t, maxTipLen, utf8.RuneCountInString(got))
}
