package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/focusplan/app"
	"github.com/kilianp07/focusplan/core/model"
)

// inputFile is the YAML or JSON document read by the scheduling commands.
type inputFile struct {
	UserID        string          `yaml:"user_id"`
	Start         time.Time       `yaml:"start"`
	End           time.Time       `yaml:"end"`
	Meetings      []model.Meeting `yaml:"meetings"`
	Blocks        []blockInput    `yaml:"blocks"`
	NoMeetingDays []int           `yaml:"no_meeting_days"`
}

type blockInput struct {
	Start  time.Time       `yaml:"start"`
	End    time.Time       `yaml:"end"`
	Type   model.BlockType `yaml:"type"`
	Reason string          `yaml:"reason"`
}

// readInput decodes path with the YAML parser, which also accepts JSON.
func readInput(path string) (inputFile, error) {
	var in inputFile
	if path == "" {
		return in, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := yaml.Unmarshal(b, &in); err != nil {
		return in, fmt.Errorf("decode %s: %w", path, err)
	}
	return in, nil
}

// window resolves the scheduling window: flags win over the file, and the
// default is the working week starting next Monday.
func (in *inputFile) window(start, end string, now time.Time) error {
	if start != "" {
		t, err := parseTime(start)
		if err != nil {
			return err
		}
		in.Start = t
	}
	if end != "" {
		t, err := parseTime(end)
		if err != nil {
			return err
		}
		in.End = t
	}
	if in.Start.IsZero() {
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		in.Start = day.AddDate(0, 0, 7-model.ISOWeekday(day))
	}
	if in.End.IsZero() {
		in.End = in.Start.AddDate(0, 0, 5)
	}
	return nil
}

// applyPolicy registers the blocks and no-meeting days of the input.
func (in inputFile) applyPolicy(ctx context.Context, svc *app.Service, userID string) error {
	for _, b := range in.Blocks {
		if _, err := svc.BlockTimeSlot(ctx, userID, b.Start, b.End, b.Type, b.Reason); err != nil {
			return err
		}
	}
	for _, wd := range in.NoMeetingDays {
		if _, err := svc.ConfigureNoMeetingDay(ctx, userID, wd, true); err != nil {
			return err
		}
	}
	return nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", time.DateOnly}

func parseTime(s string) (time.Time, error) {
	for _, l := range timeLayouts {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse time %q", model.ErrInvalidInput, s)
}

func userFlag(flag string, in inputFile) string {
	if flag != "" {
		return flag
	}
	if in.UserID != "" {
		return in.UserID
	}
	return "default"
}

// output opens path for writing, or returns the command's stdout.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
