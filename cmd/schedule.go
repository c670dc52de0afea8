package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/focusplan/app"
	"github.com/kilianp07/focusplan/core/scheduler"
	"github.com/kilianp07/focusplan/pkg/export"
)

var scheduleFlags struct {
	input        string
	user         string
	start        string
	end          string
	format       string
	output       string
	meeting      string
	participants []string
	limit        int
	result       string
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Place the meetings of an input file in the scheduling window",
	RunE:  runOptimize,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Rank the best slots for one meeting",
	RunE:  runSuggest,
}

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule",
	Short: "Look for a better slot for a meeting of a saved result",
	RunE:  runReschedule,
}

func init() {
	for _, c := range []*cobra.Command{optimizeCmd, suggestCmd} {
		c.Flags().StringVarP(&scheduleFlags.input, "input", "i", "", "meetings file (yaml or json)")
		c.Flags().StringVar(&scheduleFlags.start, "start", "", "window start (RFC3339 or YYYY-MM-DD)")
		c.Flags().StringVar(&scheduleFlags.end, "end", "", "window end (RFC3339 or YYYY-MM-DD)")
		_ = c.MarkFlagRequired("input")
	}
	for _, c := range []*cobra.Command{optimizeCmd, suggestCmd, rescheduleCmd} {
		c.Flags().StringVarP(&scheduleFlags.user, "user", "u", "", "user id")
		c.Flags().StringVarP(&scheduleFlags.output, "output", "o", "", "output file, stdout when empty")
	}
	optimizeCmd.Flags().StringVarP(&scheduleFlags.format, "format", "f", "json", "output format: json or csv")
	suggestCmd.Flags().StringVarP(&scheduleFlags.format, "format", "f", "json", "output format: json or csv")
	suggestCmd.Flags().StringVarP(&scheduleFlags.meeting, "meeting", "m", "", "meeting id, first meeting of the file when empty")
	suggestCmd.Flags().StringSliceVarP(&scheduleFlags.participants, "participants", "p", nil, "participants replacing the meeting's list")
	suggestCmd.Flags().IntVarP(&scheduleFlags.limit, "limit", "n", 0, "number of suggestions")
	rescheduleCmd.Flags().StringVarP(&scheduleFlags.result, "result", "r", "", "result written by optimize --format json")
	rescheduleCmd.Flags().StringVarP(&scheduleFlags.meeting, "meeting", "m", "", "meeting id")
	_ = rescheduleCmd.MarkFlagRequired("result")
	_ = rescheduleCmd.MarkFlagRequired("meeting")
	rootCmd.AddCommand(optimizeCmd, suggestCmd, rescheduleCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	in, err := readInput(scheduleFlags.input)
	if err != nil {
		return err
	}
	if err := in.window(scheduleFlags.start, scheduleFlags.end, time.Now()); err != nil {
		return err
	}
	user := userFlag(scheduleFlags.user, in)
	return withService(cmd, func(svc *app.Service) error {
		res, err := svc.OptimizeSchedule(cmd.Context(), in.Meetings, user, in.Start, in.End)
		if err != nil {
			return err
		}
		w, closeFn, err := output(cmd, scheduleFlags.output)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()
		switch scheduleFlags.format {
		case "csv":
			return export.WriteCSV(w, res)
		case "json":
			return export.WriteJSON(w, res)
		default:
			return fmt.Errorf("unknown format %q", scheduleFlags.format)
		}
	})
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	in, err := readInput(scheduleFlags.input)
	if err != nil {
		return err
	}
	if len(in.Meetings) == 0 {
		return fmt.Errorf("no meetings in %s", scheduleFlags.input)
	}
	if err := in.window(scheduleFlags.start, scheduleFlags.end, time.Now()); err != nil {
		return err
	}
	m := in.Meetings[0]
	if scheduleFlags.meeting != "" {
		found := false
		for _, c := range in.Meetings {
			if c.ID == scheduleFlags.meeting {
				m, found = c, true
				break
			}
		}
		if !found {
			return fmt.Errorf("meeting %s not in %s", scheduleFlags.meeting, scheduleFlags.input)
		}
	}
	if scheduleFlags.limit > 0 {
		cfg.Scheduler.SuggestionLimit = scheduleFlags.limit
	}
	user := userFlag(scheduleFlags.user, in)
	return withService(cmd, func(svc *app.Service) error {
		slots, err := svc.SuggestMeetingTime(cmd.Context(), m, user, scheduleFlags.participants, in.Start, in.End)
		if err != nil {
			return err
		}
		w, closeFn, err := output(cmd, scheduleFlags.output)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()
		if scheduleFlags.format == "csv" {
			return export.WriteSlotsCSV(w, slots)
		}
		return writeJSON(w, slots)
	})
}

func runReschedule(cmd *cobra.Command, _ []string) error {
	b, err := os.ReadFile(scheduleFlags.result)
	if err != nil {
		return err
	}
	var res scheduler.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return fmt.Errorf("decode %s: %w", scheduleFlags.result, err)
	}
	user := scheduleFlags.user
	if user == "" {
		user = res.UserID
	}
	return withService(cmd, func(svc *app.Service) error {
		slot, err := svc.RescheduleMeeting(cmd.Context(), scheduleFlags.meeting, res, user)
		if err != nil {
			return err
		}
		w, closeFn, err := output(cmd, scheduleFlags.output)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()
		if slot == nil {
			_, err = fmt.Fprintf(w, "meeting %s: current slot kept, no materially better time found\n", scheduleFlags.meeting)
			return err
		}
		return writeJSON(w, slot)
	})
}
