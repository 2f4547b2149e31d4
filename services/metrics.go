package services

import "github.com/prometheus/client_golang/prometheus"

// Audit-Zähler für jede Entscheidung des Laufs: Dimensionen angelegt
// oder gemergt, Fakten eingefügt, aktualisiert oder unverändert
// übersprungen. Zusammen mit den Logzeilen lässt sich damit jeder Lauf
// nachträglich ohne Debugger prüfen.
var (
	entitiesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwh_entities_created_total",
			Help: "Neu angelegte Dimensionszeilen pro Entitätstyp.",
		},
		[]string{"entity"},
	)
	entitiesMerged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwh_entities_merged_total",
			Help: "Cross-Provider-Merges auf bestehende Dimensionszeilen.",
		},
		[]string{"entity"},
	)
	factsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwh_facts_inserted_total",
			Help: "Neu eingefügte Faktenzeilen pro Faktentyp.",
		},
		[]string{"fact"},
	)
	factsUpdated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwh_facts_updated_total",
			Help: "In-place aktualisierte Faktenzeilen pro Faktentyp.",
		},
		[]string{"fact"},
	)
	factsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwh_facts_skipped_total",
			Help: "Unveränderte, übersprungene Faktenzeilen pro Faktentyp.",
		},
		[]string{"fact"},
	)
)

func init() {
	prometheus.MustRegister(entitiesCreated, entitiesMerged, factsInserted, factsUpdated, factsSkipped)
}
