package models

import "time"

// MonthlyCount is one point of a per-month count series.
type MonthlyCount struct {
	Month string `db:"month" json:"mois"`
	Count int    `db:"count" json:"nombre"`
}

// MonthlyAmount is one point of a per-month revenue series.
type MonthlyAmount struct {
	Month  string  `db:"month" json:"mois"`
	Amount float64 `db:"amount" json:"montant"`
}

// DashboardStats aggregates the figures shown on the console dashboard.
type DashboardStats struct {
	TotalCourses     int             `json:"totalFormations"`
	TotalStudents    int             `json:"totalApprenants"`
	TotalEnrollments int             `json:"totalInscriptions"`
	TotalRevenue     float64         `json:"totalRevenue"`
	AverageCourseFee float64         `json:"moyennePrix"`
	ConfirmationRate float64         `json:"tauxReussite"`
	MonthlyCounts    []MonthlyCount  `json:"inscriptionsParMois"`
	MonthlyRevenue   []MonthlyAmount `json:"revenusParMois"`
	PopularCourses   []PopularCourse `json:"formationsPopulaires"`
}

// SystemMetrics is a lightweight runtime snapshot served alongside the
// Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	Kind       string    `db:"kind" json:"type"`
	Label      string    `db:"label" json:"label"`
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`
}
