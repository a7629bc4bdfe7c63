package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
)

// StatsRepository aggregates the figures behind the dashboard.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type dashboardTotals struct {
	TotalCourses     int     `db:"total_courses"`
	TotalStudents    int     `db:"total_students"`
	TotalEnrollments int     `db:"total_enrollments"`
	TotalRevenue     float64 `db:"total_revenue"`
	AverageCourseFee float64 `db:"average_course_fee"`
	Confirmed        int     `db:"confirmed"`
}

// Totals collects the scalar dashboard figures in one round trip.
func (r *StatsRepository) Totals(ctx context.Context) (models.DashboardStats, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM courses) AS total_courses,
        (SELECT COUNT(*) FROM students) AS total_students,
        (SELECT COUNT(*) FROM enrollments) AS total_enrollments,
        (SELECT COALESCE(SUM(amount), 0) FROM payments) AS total_revenue,
        (SELECT COALESCE(AVG(fee), 0) FROM courses) AS average_course_fee,
        (SELECT COUNT(*) FROM enrollments WHERE status = $1) AS confirmed`

	var totals dashboardTotals
	if err := r.db.GetContext(ctx, &totals, query, models.EnrollmentStatusConfirmed); err != nil {
		return models.DashboardStats{}, fmt.Errorf("dashboard totals: %w", err)
	}

	stats := models.DashboardStats{
		TotalCourses:     totals.TotalCourses,
		TotalStudents:    totals.TotalStudents,
		TotalEnrollments: totals.TotalEnrollments,
		TotalRevenue:     totals.TotalRevenue,
		AverageCourseFee: totals.AverageCourseFee,
	}
	if totals.TotalEnrollments > 0 {
		stats.ConfirmationRate = float64(totals.Confirmed) / float64(totals.TotalEnrollments) * 100
	}
	return stats, nil
}

// MonthlyEnrollments returns the enrollment count per month for the last
// twelve months.
func (r *StatsRepository) MonthlyEnrollments(ctx context.Context) ([]models.MonthlyCount, error) {
	const query = `SELECT TO_CHAR(DATE_TRUNC('month', enrolled_at), 'YYYY-MM') AS month, COUNT(*) AS count
        FROM enrollments
        WHERE enrolled_at >= DATE_TRUNC('month', NOW()) - INTERVAL '11 months'
        GROUP BY 1 ORDER BY 1`
	var counts []models.MonthlyCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("monthly enrollments: %w", err)
	}
	return counts, nil
}

// MonthlyRevenue returns the ledger total per month for the last twelve
// months.
func (r *StatsRepository) MonthlyRevenue(ctx context.Context) ([]models.MonthlyAmount, error) {
	const query = `SELECT TO_CHAR(DATE_TRUNC('month', paid_at), 'YYYY-MM') AS month, COALESCE(SUM(amount), 0) AS amount
        FROM payments
        WHERE paid_at >= DATE_TRUNC('month', NOW()) - INTERVAL '11 months'
        GROUP BY 1 ORDER BY 1`
	var amounts []models.MonthlyAmount
	if err := r.db.SelectContext(ctx, &amounts, query); err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	return amounts, nil
}

// RecentActivities merges the latest enrollments and payments into one feed.
func (r *StatsRepository) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	const query = `SELECT kind, label, occurred_at FROM (
        SELECT 'inscription' AS kind,
               s.last_name || ' ' || s.first_name || ' - ' || c.name AS label,
               e.created_at AS occurred_at
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        UNION ALL
        SELECT 'paiement' AS kind,
               s.last_name || ' ' || s.first_name || ' - ' || TO_CHAR(p.amount, 'FM999999990.00') AS label,
               p.created_at AS occurred_at
        FROM payments p
        JOIN enrollments e ON e.id = p.enrollment_id
        JOIN students s ON s.id = e.student_id
    ) feed ORDER BY occurred_at DESC LIMIT $1`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, limit); err != nil {
		return nil, fmt.Errorf("recent activities: %w", err)
	}
	return activities, nil
}
