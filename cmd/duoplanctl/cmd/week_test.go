package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekCmd(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"2025-12-29"}, "2026-W01 (starts 2025-12-29)\n"},
		{[]string{"2026-03-04"}, "2026-W10 (starts 2026-03-02)\n"},
		{[]string{"2026-12-31", "--offset", "1"}, "2027-W01 (starts 2027-01-04)\n"},
		{[]string{"2026-01-05", "--offset", "-1"}, "2026-W01 (starts 2025-12-29)\n"},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		cmd := WeekCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(tt.args)

		require.NoError(t, cmd.Execute())
		assert.Equal(t, tt.want, out.String(), "args %v", tt.args)
	}
}

func TestWeekCmd_RejectsBadDate(t *testing.T) {
	cmd := WeekCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"31/12/2026"})

	assert.Error(t, cmd.Execute())
}
