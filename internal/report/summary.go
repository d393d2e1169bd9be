package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"docgen-converter/internal/errors"
)

// Summary renders the metrics, the mapping table and the diagnostics to w.
func (d *Document) Summary(w io.Writer) error {
	m := d.PerformanceMetrics

	metrics := pterm.TableData{
		{"Elements", "Merge fields", "Control tags", "Mapped", "Unmapped", "Ambiguous", "Fuzzy", "Rate"},
		{
			strconv.Itoa(m.TotalElements),
			strconv.Itoa(m.MergeFields),
			strconv.Itoa(m.ControlTags),
			strconv.Itoa(m.MappedFields),
			strconv.Itoa(m.UnmappedFields),
			strconv.Itoa(m.AmbiguousFields),
			strconv.Itoa(m.FuzzyMatches),
			fmt.Sprintf("%.0f%%", m.MappingRate*100),
		},
	}

	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(metrics).Render(); err != nil {
		return errors.Wrap(err, "rendering metrics")
	}

	if len(d.MappingReport) > 0 {
		rows := pterm.TableData{{"Conga tag", "Box tag", "Method", "Confidence"}}
		for _, e := range d.MappingReport {
			rows = append(rows, []string{e.CongaTag, orDash(e.BoxTag), e.Method, fmt.Sprintf("%.2f", e.Confidence)})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithWriter(w).WithData(rows).Render(); err != nil {
			return errors.Wrap(err, "rendering mapping table")
		}
	}

	if len(d.ValidationErrors) > 0 {
		rows := pterm.TableData{{"Severity", "Issue", "Field", "Message"}}
		for _, v := range d.ValidationErrors {
			rows = append(rows, []string{v.Severity, v.IssueType, orDash(v.FieldTag), v.Message})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(rows).Render(); err != nil {
			return errors.Wrap(err, "rendering diagnostics")
		}
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
