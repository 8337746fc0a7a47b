package scorecard

import "math/rand/v2"

const (
	defaultOwner     = "Director"
	escalationOwner  = "Comité Ejecutivo"
	shortDeadline    = "15 días"
	extendedDeadline = "30 días"
)

// RemediationPlan is a mock cause/action entry for an at-risk perspective.
type RemediationPlan struct {
	Cause    string `json:"cause"`
	Action   string `json:"action"`
	Owner    string `json:"owner"`
	Deadline string `json:"deadline"`
}

var remediationCauses = map[Perspective][]string{
	PerspectiveFinancial: {"Aumento inesperado en costos de servidor", "Tasa de cambio desfavorable", "Baja estacional en ventas B2B"},
	PerspectiveCustomer:  {"Problemas de UX en el checkout", "Competencia lanzó promociones agresivas", "Saturación en canales de soporte"},
	PerspectiveInternal:  {"Cuello de botella en post-producción", "Deuda técnica acumulada", "Falta de personal en QA"},
	PerspectiveLearning:  {"Fatiga del equipo post-lanzamiento", "Baja adopción de nuevas herramientas", "Presupuesto de capacitación congelado"},
}

var remediationActions = map[Perspective][]string{
	PerspectiveFinancial: {"Renegociar contratos con proveedores cloud", "Lanzar campaña de reactivación de churn", "Optimizar spend en Paid Media"},
	PerspectiveCustomer:  {"Implementar chat en vivo 24/7", "Lanzar programa de lealtad v2", "Rediseñar flujo de onboarding"},
	PerspectiveInternal:  {"Automatizar pipelines de video", "Sprint exclusivo de refactorización", "Contratar 2 editores freelance"},
	PerspectiveLearning:  {"Hackathon interno de bienestar", "Taller de IA para docentes", "Bono por certificación técnica"},
}

// Remediation picks up to two plan entries from the perspective lookup. One entry
// is produced when any KPI is at risk, a second escalated one when more than two are.
func Remediation(p Perspective, riskyCount int, owner string, r *rand.Rand) []RemediationPlan {
	if riskyCount <= 0 {
		return nil
	}
	causes := remediationCauses[p]
	actions := remediationActions[p]
	if owner == "" {
		owner = defaultOwner
	}
	plans := []RemediationPlan{{
		Cause:    pick(causes, r, 0),
		Action:   pick(actions, r, 0),
		Owner:    owner,
		Deadline: shortDeadline,
	}}
	if riskyCount > 2 {
		plans = append(plans, RemediationPlan{
			Cause:    pick(causes, r, 1),
			Action:   pick(actions, r, 1),
			Owner:    escalationOwner,
			Deadline: extendedDeadline,
		})
	}
	return plans
}

func pick(options []string, r *rand.Rand, offset int) string {
	if len(options) == 0 {
		return ""
	}
	return options[(r.IntN(len(options))+offset)%len(options)]
}
