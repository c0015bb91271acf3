package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/pkg/export"
)

func newFreeCommand(opts *rootOptions) *cobra.Command {
	var (
		day    string
		period int
		absent []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "free",
		Short: "List teachers free to cover a period, least loaded first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.engine(cmd.Context())
			if err != nil {
				return err
			}
			resolved, err := engine.ResolveDay(day)
			if err != nil {
				return err
			}
			if err := engine.ValidatePeriod(period - 1); err != nil {
				return err
			}

			free := engine.FreeTeachers(resolved, period-1, splitNames(absent), models.PlanGrid{})
			data := export.Dataset{Headers: []string{"Teacher", "Periods Today"}}
			for _, teacher := range free {
				data.Rows = append(data.Rows, []string{teacher.Name, strconv.Itoa(teacher.Workload)})
			}
			if len(free) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "nobody is free on %s in period %d\n", resolved, period)
			}
			return writeDataset(cmd.OutOrStdout(), format, data)
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day to query")
	cmd.Flags().IntVar(&period, "period", 0, "period number, starting at 1")
	cmd.Flags().StringSliceVar(&absent, "absent", nil, "absent teachers, comma separated")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or csv")
	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}
