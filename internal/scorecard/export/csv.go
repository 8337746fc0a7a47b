package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/bsc-scorecard/scorecard/internal/scorecard"
)

// WriteTableCSV serialises the filtered KGI→KPI table, one KPI per record.
func WriteTableCSV(w io.Writer, rows []scorecard.TableRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Perspective", "KGI", "Owner", "KPI", "Unit", "Target", "Actual", "Compliance", "Status"}); err != nil {
		return err
	}
	for _, row := range rows {
		for _, kpi := range row.KPIs {
			if err := writer.Write([]string{
				row.KGI.Perspective.String(),
				row.KGI.Name,
				row.KGI.Owner,
				kpi.KPI.Name,
				kpi.KPI.Unit.Tag(),
				formatFloat(kpi.KPI.Target),
				formatFloat(kpi.KPI.Actual),
				formatFloat(kpi.Compliance),
				kpi.Status.String(),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAnalysisCSV emits the per-perspective analysis summary.
func WriteAnalysisCSV(w io.Writer, analysis []scorecard.PerspectiveAnalysis) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Perspective", "Score", "Gap", "Trend", "Optimal", "Warning", "Critical", "Risk Score", "Priority"}); err != nil {
		return err
	}
	for _, a := range analysis {
		if err := writer.Write([]string{
			a.Name,
			formatFloat(a.Score),
			formatFloat(a.Gap),
			string(a.Trend),
			strconv.Itoa(a.StatusCounts.Optimal),
			strconv.Itoa(a.StatusCounts.Warning),
			strconv.Itoa(a.StatusCounts.Critical),
			formatFloat(a.RiskScore),
			strconv.FormatBool(a.IsPriority),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
