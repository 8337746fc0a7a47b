package scorecard

// LoadSeed builds the Dataset from the built-in seed.
func LoadSeed() (*Dataset, error) {
	return NewDataset(SeedKGIs())
}

// SeedKGIs returns the fixed seed: 12 KGIs with 4 KPIs each, three per perspective.
func SeedKGIs() []KGI {
	return []KGI{
		{
			ID: "f1", Name: "Crecimiento Exponencial (Hypergrowth)", Perspective: PerspectiveFinancial, Owner: "CRO",
			KPIs: []KPI{
				{ID: "f1-main", Name: "Crecimiento de ARR (Anual)", Unit: UnitPercentage, Target: 0.40, Actual: 0.35, Weight: 0.4},
				{ID: "f1-1", Name: "MRR de Nuevas Ventas", Unit: UnitCurrency, Target: 500000, Actual: 410000, Weight: 0.2},
				{ID: "f1-2", Name: "MRR de Expansión (Upsell)", Unit: UnitCurrency, Target: 200000, Actual: 215000, Weight: 0.2},
				{ID: "f1-3", Name: "Ticket Promedio (ARPU)", Unit: UnitCurrency, Target: 35, Actual: 31, Weight: 0.2},
			},
		},
		{
			ID: "f2", Name: "Eficiencia de Capital", Perspective: PerspectiveFinancial, Owner: "CFO",
			KPIs: []KPI{
				{ID: "f2-main", Name: "Ratio LTV / CAC", Unit: UnitRatio, Target: 3.0, Actual: 2.6, Weight: 0.4},
				{ID: "f2-1", Name: "Costo de Adquisición (CAC)", Unit: UnitCurrency, Target: 150, Actual: 165, Inverse: true, Weight: 0.2},
				{ID: "f2-2", Name: "Valor de Vida (LTV)", Unit: UnitCurrency, Target: 450, Actual: 429, Weight: 0.2},
				{ID: "f2-3", Name: "Payback Period", Unit: UnitDays, Target: 180, Actual: 210, Inverse: true, Weight: 0.2},
			},
		},
		{
			ID: "f3", Name: "Minimizar Fuga de Ingresos", Perspective: PerspectiveFinancial, Owner: "VP Sales",
			KPIs: []KPI{
				{ID: "f3-main", Name: "Revenue Churn Rate", Unit: UnitPercentage, Target: 0.05, Actual: 0.058, Inverse: true, Weight: 0.4},
				{ID: "f3-1", Name: "Churn Voluntario", Unit: UnitPercentage, Target: 0.03, Actual: 0.038, Inverse: true, Weight: 0.2},
				{ID: "f3-2", Name: "Churn Involuntario", Unit: UnitPercentage, Target: 0.015, Actual: 0.012, Inverse: true, Weight: 0.2},
				{ID: "f3-3", Name: "Tasa de Downgrade", Unit: UnitPercentage, Target: 0.01, Actual: 0.008, Inverse: true, Weight: 0.2},
			},
		},
		{
			ID: "c1", Name: "Impacto Profesional (Outcome)", Perspective: PerspectiveCustomer, Owner: "VP Education",
			KPIs: []KPI{
				{ID: "c1-main", Name: "% Mejora Laboral", Unit: UnitPercentage, Target: 0.60, Actual: 0.59, Weight: 0.4},
				{ID: "c1-1", Name: "% Aumento Salarial Reportado", Unit: UnitPercentage, Target: 0.30, Actual: 0.24, Weight: 0.2},
				{ID: "c1-2", Name: "Estudiantes que lanzan empresa", Unit: UnitPercentage, Target: 0.05, Actual: 0.052, Weight: 0.2},
				{ID: "c1-3", Name: "Nuevos empleos conseguidos", Unit: UnitCount, Target: 1000, Actual: 950, Weight: 0.2},
			},
		},
		{
			ID: "c2", Name: "Retención de Estudiantes", Perspective: PerspectiveCustomer, Owner: "VP Growth",
			KPIs: []KPI{
				{ID: "c2-main", Name: "Tasa de Renovación Anual", Unit: UnitPercentage, Target: 0.75, Actual: 0.68, Weight: 0.4},
				{ID: "c2-1", Name: "Activos > 12 meses", Unit: UnitPercentage, Target: 0.40, Actual: 0.42, Weight: 0.2},
				{ID: "c2-2", Name: "Tasa de Reactivación (Win-back)", Unit: UnitPercentage, Target: 0.10, Actual: 0.06, Weight: 0.2},
				{ID: "c2-3", Name: "Finalización de Rutas", Unit: UnitPercentage, Target: 0.50, Actual: 0.49, Weight: 0.2},
			},
		},
		{
			ID: "c3", Name: "Engagement de Comunidad", Perspective: PerspectiveCustomer, Owner: "Community Mgr",
			KPIs: []KPI{
				{ID: "c3-main", Name: "DAU / MAU Ratio (Stickiness)", Unit: UnitPercentage, Target: 0.20, Actual: 0.23, Weight: 0.4},
				{ID: "c3-1", Name: "Participación en Platzi Live", Unit: UnitCount, Target: 5000, Actual: 5800, Weight: 0.2},
				{ID: "c3-2", Name: "Proyectos subidos", Unit: UnitCount, Target: 2000, Actual: 1600, Weight: 0.2},
				{ID: "c3-3", Name: "Interacciones en Foros", Unit: UnitCount, Target: 15000, Actual: 14800, Weight: 0.2},
			},
		},
		{
			ID: "p1", Name: "Velocidad de Producción", Perspective: PerspectiveInternal, Owner: "Content Director",
			KPIs: []KPI{
				{ID: "p1-main", Name: "Cursos Lanzados / Semana", Unit: UnitCount, Target: 10, Actual: 12, Weight: 0.4},
				{ID: "p1-1", Name: "Tiempo Post-producción", Unit: UnitDays, Target: 10, Actual: 14, Inverse: true, Weight: 0.2},
				{ID: "p1-2", Name: "Lanzados en fecha", Unit: UnitPercentage, Target: 0.90, Actual: 0.82, Weight: 0.2},
				{ID: "p1-3", Name: "Costo por minuto", Unit: UnitCurrency, Target: 50, Actual: 48, Inverse: true, Weight: 0.2},
			},
		},
		{
			ID: "p2", Name: "Frescura del Contenido", Perspective: PerspectiveInternal, Owner: "Curriculum Lead",
			KPIs: []KPI{
				{ID: "p2-main", Name: "% Cursos Obsoletos (>2 años)", Unit: UnitPercentage, Target: 0.10, Actual: 0.13, Inverse: true, Weight: 0.4},
				{ID: "p2-1", Name: "Cursos actualizados (Mes)", Unit: UnitCount, Target: 20, Actual: 16, Weight: 0.2},
				{ID: "p2-2", Name: "Cursos Deprecados", Unit: UnitCount, Target: 5, Actual: 5, Weight: 0.2},
				{ID: "p2-3", Name: "Auditorías realizadas", Unit: UnitCount, Target: 10, Actual: 8, Weight: 0.2},
			},
		},
		{
			ID: "p3", Name: "Calidad de Streaming", Perspective: PerspectiveInternal, Owner: "CTO",
			KPIs: []KPI{
				{ID: "p3-main", Name: "Tasa de Buffering/Errores", Unit: UnitPercentage, Target: 0.005, Actual: 0.006, Inverse: true, Weight: 0.4},
				{ID: "p3-1", Name: "Uptime Plataforma", Unit: UnitPercentage, Target: 0.9999, Actual: 0.9999, Weight: 0.2},
				{ID: "p3-2", Name: "Latencia en Vivo", Unit: UnitMilliseconds, Target: 2000, Actual: 2300, Inverse: true, Weight: 0.2},
				{ID: "p3-3", Name: "Velocidad de carga (LCP)", Unit: UnitSeconds, Target: 2.5, Actual: 2.1, Inverse: true, Weight: 0.2},
			},
		},
		{
			ID: "a1", Name: "Cultura \"Dogfooding\"", Perspective: PerspectiveLearning, Owner: "VP People",
			KPIs: []KPI{
				{ID: "a1-main", Name: "% Staff activo aprendiendo", Unit: UnitPercentage, Target: 0.90, Actual: 0.84, Weight: 0.4},
				{ID: "a1-1", Name: "Cursos terminados/empl/mes", Unit: UnitCount, Target: 1, Actual: 1.2, Weight: 0.2},
				{ID: "a1-2", Name: "Ranking Interno (Puntos)", Unit: UnitCount, Target: 1000, Actual: 920, Weight: 0.2},
				{ID: "a1-3", Name: "Feedback de producto", Unit: UnitCount, Target: 50, Actual: 70, Weight: 0.2},
			},
		},
		{
			ID: "a2", Name: "Excelencia Docente", Perspective: PerspectiveLearning, Owner: "Dean of Faculty",
			KPIs: []KPI{
				{ID: "a2-main", Name: "NPS de Profesores", Unit: UnitCount, Target: 70, Actual: 64, Weight: 0.4},
				{ID: "a2-1", Name: "Retención Top Teachers", Unit: UnitPercentage, Target: 0.95, Actual: 0.93, Weight: 0.2},
				{ID: "a2-2", Name: "Calif. Promedio Cursos", Unit: UnitStars, Target: 4.8, Actual: 4.9, Weight: 0.2},
				{ID: "a2-3", Name: "Tiempo pago instructores", Unit: UnitDays, Target: 30, Actual: 28, Inverse: true, Weight: 0.2},
			},
		},
		{
			ID: "a3", Name: "Innovación Pedagógica", Perspective: PerspectiveLearning, Owner: "Head of R&D",
			KPIs: []KPI{
				{ID: "a3-main", Name: "% Cursos nuevos formatos", Unit: UnitPercentage, Target: 0.15, Actual: 0.09, Weight: 0.4},
				{ID: "a3-1", Name: "Adopción Labs/Retos", Unit: UnitPercentage, Target: 0.40, Actual: 0.25, Weight: 0.2},
				{ID: "a3-2", Name: "Uso de AI en evaluaciones", Unit: UnitPercentage, Target: 0.20, Actual: 0.55, Weight: 0.2},
				{ID: "a3-3", Name: "Éxito Cohortes en Vivo", Unit: UnitPercentage, Target: 0.80, Actual: 0.78, Weight: 0.2},
			},
		},
	}
}
