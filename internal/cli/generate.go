package cli

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/internal/service"
)

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	var (
		day    string
		absent []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the substitution plan of a day for the given absentees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.engine(cmd.Context())
			if err != nil {
				return err
			}
			resolved, err := engine.ResolveDay(day)
			if err != nil {
				return err
			}
			names := lo.Uniq(splitNames(absent))
			if len(names) == 0 {
				return fmt.Errorf("select at least one absent teacher")
			}

			_, assignments := engine.BuildPlan(resolved, names, models.PlanGrid{})
			if err := writeDataset(cmd.OutOrStdout(), format, service.PlanDataset(assignments)); err != nil {
				return err
			}
			unassigned := lo.CountBy(assignments, func(a models.Assignment) bool {
				return a.Status == models.AssignmentUnassigned
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d vacancies, %d unassigned\n", resolved, len(assignments), unassigned)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day to plan")
	cmd.Flags().StringSliceVar(&absent, "absent", nil, "absent teachers, comma separated")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or csv")
	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("absent")
	return cmd
}
