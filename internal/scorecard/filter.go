package scorecard

import (
	"fmt"
	"math"
	"strings"
)

// EmptyTableMessage is shown when no KGI survives the filters.
const EmptyTableMessage = "No se encontraron indicadores con los filtros seleccionados."

// TableFilter narrows the KGI→KPI table. Zero fields mean "all".
type TableFilter struct {
	Perspective Perspective
	Status      Status
}

// ParseTableFilter reads perspective and status values; empty or "all" clears a field.
func ParseTableFilter(perspective, status string) (TableFilter, error) {
	var f TableFilter
	if v := strings.TrimSpace(perspective); v != "" && !strings.EqualFold(v, "all") {
		p, err := ParsePerspective(v)
		if err != nil {
			return TableFilter{}, err
		}
		f.Perspective = p
	}
	if v := strings.TrimSpace(status); v != "" && !strings.EqualFold(v, "all") {
		s, err := ParseStatus(v)
		if err != nil {
			return TableFilter{}, err
		}
		f.Status = s
	}
	return f, nil
}

// Active reports whether any field narrows the table.
func (f TableFilter) Active() bool {
	return f.Perspective != 0 || f.Status != 0
}

// PerspectiveSlug returns the perspective slug or "all".
func (f TableFilter) PerspectiveSlug() string {
	if f.Perspective == 0 {
		return "all"
	}
	return f.Perspective.Slug()
}

// StatusSlug returns the status slug or "all".
func (f TableFilter) StatusSlug() string {
	if f.Status == 0 {
		return "all"
	}
	return f.Status.Slug()
}

// KPIRow is one KPI line of the table with its derived figures.
type KPIRow struct {
	KPI        KPI
	Compliance float64
	Status     Status
	Target     string
	Actual     string
	// Progress is the compliance capped at 1 for bar widths.
	Progress float64
}

// CompliancePercent renders the compliance as a whole percentage.
func (r KPIRow) CompliancePercent() string {
	return FormatPercent(r.Compliance)
}

// TableRow is a KGI header plus its visible KPI rows.
type TableRow struct {
	KGI    KGI
	Score  float64
	Status Status
	KPIs   []KPIRow
}

// FilterTable applies f to kgis. A KGI passes the status filter when any of its
// KPIs has that status, and only those KPIs are kept under it.
func FilterTable(kgis []KGI, f TableFilter) []TableRow {
	rows := make([]TableRow, 0, len(kgis))
	for _, kgi := range kgis {
		if f.Perspective != 0 && kgi.Perspective != f.Perspective {
			continue
		}
		var kpis []KPIRow
		for _, kpi := range kgi.KPIs {
			row := NewKPIRow(kpi)
			if f.Status != 0 && row.Status != f.Status {
				continue
			}
			kpis = append(kpis, row)
		}
		if f.Status != 0 && len(kpis) == 0 {
			continue
		}
		score := kgi.Score()
		rows = append(rows, TableRow{KGI: kgi, Score: score, Status: Classify(score), KPIs: kpis})
	}
	return rows
}

// NewKPIRow derives the table figures for a KPI.
func NewKPIRow(kpi KPI) KPIRow {
	c := kpi.Compliance()
	return KPIRow{
		KPI:        kpi,
		Compliance: c,
		Status:     Classify(c),
		Target:     Format(kpi.Target, kpi.Unit),
		Actual:     Format(kpi.Actual, kpi.Unit),
		Progress:   math.Min(math.Max(c, 0), 1),
	}
}

// String implements fmt.Stringer.
func (f TableFilter) String() string {
	return fmt.Sprintf("perspective=%s status=%s", f.PerspectiveSlug(), f.StatusSlug())
}
