package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/focusplan/app"
	"github.com/kilianp07/focusplan/core/model"
)

var policyFlags struct {
	input    string
	user     string
	at       string
	kind     string
	override string
	start    string
	end      string
	output   string
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Check whether a meeting may be held at a given time",
	RunE:  runAllowance,
}

var enforceCmd = &cobra.Command{
	Use:   "enforce",
	Short: "Optimize the input meetings and report policy violations",
	RunE:  runEnforce,
}

func init() {
	for _, c := range []*cobra.Command{allowanceCmd, enforceCmd} {
		c.Flags().StringVarP(&policyFlags.input, "input", "i", "", "file with blocks, no_meeting_days and meetings")
		c.Flags().StringVarP(&policyFlags.user, "user", "u", "", "user id")
		c.Flags().StringVarP(&policyFlags.output, "output", "o", "", "output file, stdout when empty")
	}
	allowanceCmd.Flags().StringVar(&policyFlags.at, "at", "", "proposed start (RFC3339 or YYYY-MM-DDTHH:MM)")
	allowanceCmd.Flags().StringVarP(&policyFlags.kind, "type", "t", "collaborative", "meeting type")
	allowanceCmd.Flags().StringVar(&policyFlags.override, "override", "", "override code")
	_ = allowanceCmd.MarkFlagRequired("at")
	enforceCmd.Flags().StringVar(&policyFlags.start, "start", "", "window start")
	enforceCmd.Flags().StringVar(&policyFlags.end, "end", "", "window end")
	rootCmd.AddCommand(allowanceCmd, enforceCmd)
}

func runAllowance(cmd *cobra.Command, _ []string) error {
	in, err := readInput(policyFlags.input)
	if err != nil {
		return err
	}
	at, err := parseTime(policyFlags.at)
	if err != nil {
		return err
	}
	kind, err := model.ParseMeetingType(policyFlags.kind)
	if err != nil {
		return err
	}
	user := userFlag(policyFlags.user, in)
	return withService(cmd, func(svc *app.Service) error {
		if err := in.applyPolicy(cmd.Context(), svc, user); err != nil {
			return err
		}
		a, err := svc.CheckAllowance(cmd.Context(), user, at, kind, policyFlags.override)
		if err != nil {
			return err
		}
		w, closeFn, err := output(cmd, policyFlags.output)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()
		return writeJSON(w, a)
	})
}

func runEnforce(cmd *cobra.Command, _ []string) error {
	in, err := readInput(policyFlags.input)
	if err != nil {
		return err
	}
	if err := in.window(policyFlags.start, policyFlags.end, time.Now()); err != nil {
		return err
	}
	user := userFlag(policyFlags.user, in)
	return withService(cmd, func(svc *app.Service) error {
		ctx := cmd.Context()
		if err := in.applyPolicy(ctx, svc, user); err != nil {
			return err
		}
		res, err := svc.OptimizeSchedule(ctx, in.Meetings, user, in.Start, in.End)
		if err != nil {
			return err
		}
		report := svc.EnforcePolicy(ctx, user, res, nil)
		w, closeFn, err := output(cmd, policyFlags.output)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()
		return writeJSON(w, report)
	})
}
