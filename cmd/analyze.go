package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/focusplan/app"
	"github.com/kilianp07/focusplan/core/energy"
)

var analyzeFlags struct {
	samples string
	user    string
	output  string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build an energy profile from historical samples",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFlags.samples, "samples", "s", "", "samples file (yaml or json list of {time, level})")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.user, "user", "u", "default", "user id")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.output, "output", "o", "", "output file, stdout when empty")
	_ = analyzeCmd.MarkFlagRequired("samples")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	samples, err := energy.LoadSamples(analyzeFlags.samples)
	if err != nil {
		return err
	}
	return withService(cmd, func(svc *app.Service) error {
		a := svc.AnalyzeEnergy(cmd.Context(), analyzeFlags.user, samples)
		w, closeFn, err := output(cmd, analyzeFlags.output)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()
		return writeJSON(w, a)
	})
}
