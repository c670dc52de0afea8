package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/focusplan/core/policy"
	"github.com/kilianp07/focusplan/core/scheduler"
)

const meetingsYAML = `user_id: alice
start: 2026-03-02T08:00:00Z
end: 2026-03-02T18:00:00Z
no_meeting_days: [2]
blocks:
  - start: 2026-03-02T09:00:00Z
    end: 2026-03-02T11:00:00Z
    type: focus_time
    reason: writing
meetings:
  - id: m1
    title: Planning
    duration_minutes: 60
    meeting_type: collaborative
    priority: 7
    flexibility: low
  - id: m2
    title: Standup
    duration_minutes: 30
    meeting_type: routine
    priority: 5
    flexibility: high
`

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("FP_JOURNAL__BACKEND", "none")
	t.Setenv("FP_LOG__LEVEL", "error")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meetings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(meetingsYAML), 0o644))
	return path
}

func TestOptimizeCommand(t *testing.T) {
	out := run(t, "optimize", "-i", writeInput(t))
	var res scheduler.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "alice", res.UserID)
	assert.Equal(t, 2, res.Metrics.ScheduledCount)
}

func TestOptimizeCommandCSV(t *testing.T) {
	out := run(t, "optimize", "-i", writeInput(t), "-f", "csv")
	assert.Contains(t, out, "meeting_id,title")
	assert.Contains(t, out, "m1,Planning,collaborative,7,")
}

func TestAllowanceCommand(t *testing.T) {
	out := run(t, "allowance", "-i", writeInput(t), "--at", "2026-03-02T09:30:00Z", "-t", "routine")
	var a policy.Allowance
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.False(t, a.Allowed)
	assert.Len(t, a.AlternativeTimes, 3)
}

func TestEnforceCommand(t *testing.T) {
	out := run(t, "enforce", "-i", writeInput(t))
	var r policy.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "alice", r.UserID)
	assert.LessOrEqual(t, r.ComplianceScore, 100.0)
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2026-03-02T09:00:00Z", "2026-03-02T09:00", "2026-03-02 09:00", "2026-03-02"} {
		_, err := parseTime(s)
		assert.NoError(t, err, s)
	}
	_, err := parseTime("next tuesday")
	assert.Error(t, err)
}
