package models

import "time"

// UserRole represents the available roles for the back-office RBAC.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleStaff      UserRole = "STAFF"
)

// User represents a back-office operator stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination is the metadata block returned with every list response. The
// gateway is the single authority for these fields; clients must not
// recompute them.
type Pagination struct {
	CurrentPage   int  `json:"current_page"`
	PageSize      int  `json:"page_size"`
	TotalElements int  `json:"total_elements"`
	TotalPages    int  `json:"total_pages"`
	HasNext       bool `json:"has_next"`
	HasPrevious   bool `json:"has_previous"`
	FirstPage     bool `json:"first_page"`
	LastPage      bool `json:"last_page"`
}

// NewPagination derives the full metadata block from a zero-based page index,
// page size and total element count.
func NewPagination(page, size, total int) *Pagination {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	return &Pagination{
		CurrentPage:   page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    totalPages,
		HasNext:       page < totalPages-1,
		HasPrevious:   page > 0,
		FirstPage:     page == 0,
		LastPage:      page >= totalPages-1,
	}
}
