package scorecard

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Classification thresholds and the sentinel for a "perfect" score.
const (
	OptimalThreshold  = 0.95
	WarningThreshold  = 0.85
	PerfectCompliance = 1.5
)

var printer = message.NewPrinter(language.English)

// Compliance converts an (actual, target, inverse) triple into a ratio. A zero
// target scores PerfectCompliance only when actual is also zero; an inverse KPI
// with zero actual scores PerfectCompliance. The result is unbounded above.
func Compliance(actual, target float64, inverse bool) float64 {
	if target == 0 {
		if actual == 0 {
			return PerfectCompliance
		}
		return 0
	}
	if !inverse {
		return actual / target
	}
	if actual == 0 {
		return PerfectCompliance
	}
	return target / actual
}

// Classify maps a compliance ratio onto a Status.
func Classify(compliance float64) Status {
	switch {
	case compliance >= OptimalThreshold:
		return StatusOptimal
	case compliance >= WarningThreshold:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Format renders value in the given unit using a fixed English locale.
func Format(value float64, unit Unit) string {
	switch unit {
	case UnitPercentage:
		return fmt.Sprintf("%.1f%%", value*100)
	case UnitCurrency:
		return "$" + grouped(value)
	case UnitHours:
		return strconv.FormatFloat(value, 'f', -1, 64) + "h"
	case UnitRatio:
		return fmt.Sprintf("%.1fx", value)
	case UnitDays:
		return fmt.Sprintf("%.0fd", math.Round(value))
	case UnitMilliseconds:
		return fmt.Sprintf("%.0fms", math.Round(value))
	case UnitSeconds:
		return fmt.Sprintf("%.1fs", value)
	case UnitStars:
		return fmt.Sprintf("%.1f★", value)
	default:
		return grouped(value)
	}
}

// FormatPercent renders a ratio as a whole-number percentage.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", math.Round(ratio*100))
}

func grouped(value float64) string {
	return printer.Sprint(number.Decimal(value, number.MaxFractionDigits(3)))
}
