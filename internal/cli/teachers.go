package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-substitution-api/pkg/export"
)

func newTeachersCommand(opts *rootOptions) *cobra.Command {
	var (
		day    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "teachers",
		Short: "List teachers with their load for a day or the whole week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.engine(cmd.Context())
			if err != nil {
				return err
			}
			idx := engine.Index()

			data := export.Dataset{Headers: []string{"Teacher", "Periods", "Subjects"}}
			names := idx.TeacherNames()
			resolved := ""
			if day != "" {
				if resolved, err = engine.ResolveDay(day); err != nil {
					return err
				}
				names = idx.ActiveTeachers(resolved)
			}
			for _, name := range names {
				load := idx.WeeklyPeriods(name)
				if resolved != "" {
					load = idx.Workload(name, resolved)
				}
				data.Rows = append(data.Rows, []string{name, strconv.Itoa(load), strings.Join(idx.Subjects(name), ", ")})
			}
			return writeDataset(cmd.OutOrStdout(), format, data)
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "restrict to teachers working on this day")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or csv")
	return cmd
}
