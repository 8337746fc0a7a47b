package scorecard

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Dataset is the read-only KGI collection loaded once per process.
type Dataset struct {
	kgis  []KGI
	index map[string]kpiRef
}

type kpiRef struct {
	kgi int
	kpi int
}

// NewDataset validates and copies the given KGIs. Ids must be unique across KGIs
// and KPIs; weights, targets and actuals must be non-negative.
func NewDataset(kgis []KGI) (*Dataset, error) {
	validate := validator.New()
	seenKGI := make(map[string]struct{}, len(kgis))
	ds := &Dataset{
		kgis:  make([]KGI, 0, len(kgis)),
		index: make(map[string]kpiRef),
	}
	for i, kgi := range kgis {
		if err := validate.Struct(kgi); err != nil {
			return nil, fmt.Errorf("%w: kgi %q: %v", ErrInvalidSeed, kgi.ID, err)
		}
		if !kgi.Perspective.Valid() {
			return nil, fmt.Errorf("%w: kgi %q: %v", ErrInvalidSeed, kgi.ID, ErrUnknownPerspective)
		}
		if _, dup := seenKGI[kgi.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate kgi %q", ErrInvalidSeed, kgi.ID)
		}
		seenKGI[kgi.ID] = struct{}{}

		cloned := kgi
		cloned.KPIs = make([]KPI, len(kgi.KPIs))
		copy(cloned.KPIs, kgi.KPIs)
		for j, kpi := range cloned.KPIs {
			if kpi.Unit.Tag() == "" {
				return nil, fmt.Errorf("%w: kpi %q: %v", ErrInvalidSeed, kpi.ID, ErrUnknownUnit)
			}
			if _, dup := ds.index[kpi.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate kpi %q", ErrInvalidSeed, kpi.ID)
			}
			ds.index[kpi.ID] = kpiRef{kgi: i, kpi: j}
		}
		ds.kgis = append(ds.kgis, cloned)
	}
	return ds, nil
}

// KGIs returns a copy of every KGI in seed order.
func (d *Dataset) KGIs() []KGI {
	if d == nil {
		return nil
	}
	out := make([]KGI, len(d.kgis))
	for i, kgi := range d.kgis {
		out[i] = cloneKGI(kgi)
	}
	return out
}

// ByPerspective returns the KGIs owned by p in seed order.
func (d *Dataset) ByPerspective(p Perspective) []KGI {
	if d == nil {
		return nil
	}
	var out []KGI
	for _, kgi := range d.kgis {
		if kgi.Perspective == p {
			out = append(out, cloneKGI(kgi))
		}
	}
	return out
}

// FindKPI resolves a KPI and its parent KGI.
func (d *Dataset) FindKPI(id string) (KPI, KGI, error) {
	if d == nil {
		return KPI{}, KGI{}, ErrKPINotFound
	}
	ref, ok := d.index[id]
	if !ok {
		return KPI{}, KGI{}, fmt.Errorf("%w: %q", ErrKPINotFound, id)
	}
	kgi := d.kgis[ref.kgi]
	return kgi.KPIs[ref.kpi], cloneKGI(kgi), nil
}

// KPICount returns the number of KPIs across all KGIs.
func (d *Dataset) KPICount() int {
	if d == nil {
		return 0
	}
	return len(d.index)
}

func cloneKGI(kgi KGI) KGI {
	kpis := make([]KPI, len(kgi.KPIs))
	copy(kpis, kgi.KPIs)
	kgi.KPIs = kpis
	return kgi
}
