// Package export renders tabular reports as CSV or PDF.
package export

import "fmt"

// Dataset is an ordered table with an optional heading.
type Dataset struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("%s row %d has %d cells, want %d", kind, i+1, len(row), len(d.Headers))
		}
	}
	return nil
}
