package scorecard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownPerspective indicates a perspective slug or label outside the closed set.
	ErrUnknownPerspective = errors.New("scorecard: unknown perspective")
	// ErrUnknownStatus indicates a status slug or label outside the closed set.
	ErrUnknownStatus = errors.New("scorecard: unknown status")
	// ErrUnknownUnit indicates an unsupported unit-of-measure tag.
	ErrUnknownUnit = errors.New("scorecard: unknown unit")
	// ErrKPINotFound is returned when a KPI id is not part of the dataset.
	ErrKPINotFound = errors.New("scorecard: kpi not found")
	// ErrPerspectiveNotFound is returned when a perspective has no analysis.
	ErrPerspectiveNotFound = errors.New("scorecard: perspective not found")
	// ErrInvalidSeed is returned when the seed dataset breaks a load-time rule.
	ErrInvalidSeed = errors.New("scorecard: invalid seed")
)

// Perspective is one of the four Balanced Scorecard categories.
type Perspective int

// Perspectives in display order.
const (
	PerspectiveFinancial Perspective = iota + 1
	PerspectiveCustomer
	PerspectiveInternal
	PerspectiveLearning
)

var perspectiveOrder = [...]Perspective{
	PerspectiveFinancial,
	PerspectiveCustomer,
	PerspectiveInternal,
	PerspectiveLearning,
}

// Perspectives returns every perspective in display order.
func Perspectives() []Perspective {
	out := make([]Perspective, len(perspectiveOrder))
	copy(out, perspectiveOrder[:])
	return out
}

// Valid reports whether p belongs to the closed set.
func (p Perspective) Valid() bool {
	return p >= PerspectiveFinancial && p <= PerspectiveLearning
}

// String returns the display label.
func (p Perspective) String() string {
	switch p {
	case PerspectiveFinancial:
		return "Financiera"
	case PerspectiveCustomer:
		return "Clientes"
	case PerspectiveInternal:
		return "Procesos Internos"
	case PerspectiveLearning:
		return "Aprendizaje y Crecimiento"
	default:
		return fmt.Sprintf("Perspective(%d)", int(p))
	}
}

// Slug returns the URL-safe identifier.
func (p Perspective) Slug() string {
	switch p {
	case PerspectiveFinancial:
		return "financial"
	case PerspectiveCustomer:
		return "customer"
	case PerspectiveInternal:
		return "internal"
	case PerspectiveLearning:
		return "learning"
	default:
		return ""
	}
}

// ParsePerspective accepts either a slug or a display label.
func ParsePerspective(value string) (Perspective, error) {
	value = strings.TrimSpace(value)
	for _, p := range perspectiveOrder {
		if strings.EqualFold(value, p.Slug()) || value == p.String() {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPerspective, value)
}

// MarshalText encodes the perspective as its slug.
func (p Perspective) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPerspective, int(p))
	}
	return []byte(p.Slug()), nil
}

// UnmarshalText decodes a slug or label.
func (p *Perspective) UnmarshalText(text []byte) error {
	parsed, err := ParsePerspective(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Status is the derived health classification of a compliance ratio.
type Status int

// Status values ordered from best to worst.
const (
	StatusOptimal Status = iota + 1
	StatusWarning
	StatusCritical
)

var statusOrder = [...]Status{StatusOptimal, StatusWarning, StatusCritical}

// Statuses returns every status from best to worst.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder[:])
	return out
}

// String returns the display label.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Óptimo"
	case StatusWarning:
		return "Alerta"
	case StatusCritical:
		return "Crítico"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Slug returns the URL-safe identifier.
func (s Status) Slug() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	default:
		return ""
	}
}

// ParseStatus accepts either a slug or a display label.
func ParseStatus(value string) (Status, error) {
	value = strings.TrimSpace(value)
	for _, s := range statusOrder {
		if strings.EqualFold(value, s.Slug()) || value == s.String() {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, value)
}

// MarshalText encodes the status as its slug.
func (s Status) MarshalText() ([]byte, error) {
	if s.Slug() == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	return []byte(s.Slug()), nil
}

// UnmarshalText decodes a slug or label.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Unit is the unit-of-measure tag attached to a KPI.
type Unit int

// Supported units. UnitCount is the zero value and the formatting fallback.
const (
	UnitCount Unit = iota
	UnitPercentage
	UnitCurrency
	UnitRatio
	UnitDays
	UnitMilliseconds
	UnitSeconds
	UnitStars
	UnitHours
)

var unitTags = map[Unit]string{
	UnitCount:        "#",
	UnitPercentage:   "%",
	UnitCurrency:     "USD",
	UnitRatio:        "x",
	UnitDays:         "days",
	UnitMilliseconds: "ms",
	UnitSeconds:      "s",
	UnitStars:        "stars",
	UnitHours:        "TIME",
}

// Tag returns the measure tag used in seed files and spreadsheets.
func (u Unit) Tag() string {
	if tag, ok := unitTags[u]; ok {
		return tag
	}
	return ""
}

// String implements fmt.Stringer.
func (u Unit) String() string { return u.Tag() }

// ParseUnit resolves a measure tag.
func ParseUnit(tag string) (Unit, error) {
	tag = strings.TrimSpace(tag)
	for unit, candidate := range unitTags {
		if candidate == tag {
			return unit, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, tag)
}

// MarshalText encodes the unit as its tag.
func (u Unit) MarshalText() ([]byte, error) {
	tag := u.Tag()
	if tag == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, int(u))
	}
	return []byte(tag), nil
}

// UnmarshalText decodes a measure tag.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// KPI is a single measured indicator with a target.
type KPI struct {
	ID      string  `json:"id" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Unit    Unit    `json:"unit"`
	Target  float64 `json:"target" validate:"gte=0"`
	Actual  float64 `json:"actual" validate:"gte=0"`
	Inverse bool    `json:"inverse"`
	Weight  float64 `json:"weight" validate:"gte=0"`
}

// Compliance returns the direction-adjusted ratio of actual to target.
func (k KPI) Compliance() float64 {
	return Compliance(k.Actual, k.Target, k.Inverse)
}

// Status classifies the KPI compliance.
func (k KPI) Status() Status {
	return Classify(k.Compliance())
}

// KGI is a strategic objective grouping weighted KPIs.
type KGI struct {
	ID          string      `json:"id" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Perspective Perspective `json:"perspective" validate:"required"`
	Owner       string      `json:"owner"`
	KPIs        []KPI       `json:"kpis" validate:"dive"`
}

// Score is the weighted compliance of the KGI's KPIs.
func (g KGI) Score() float64 {
	return KGIScore(g.KPIs)
}

// Status classifies the weighted score.
func (g KGI) Status() Status {
	return Classify(g.Score())
}
