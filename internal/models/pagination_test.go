package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		size  int
		total int
		want  Pagination
	}{
		{
			name: "first page of several", page: 0, size: 10, total: 47,
			want: Pagination{CurrentPage: 0, PageSize: 10, TotalElements: 47, TotalPages: 5, HasNext: true, HasPrevious: false, FirstPage: true, LastPage: false},
		},
		{
			name: "middle page", page: 2, size: 10, total: 47,
			want: Pagination{CurrentPage: 2, PageSize: 10, TotalElements: 47, TotalPages: 5, HasNext: true, HasPrevious: true, FirstPage: false, LastPage: false},
		},
		{
			name: "last page", page: 4, size: 10, total: 47,
			want: Pagination{CurrentPage: 4, PageSize: 10, TotalElements: 47, TotalPages: 5, HasNext: false, HasPrevious: true, FirstPage: false, LastPage: true},
		},
		{
			name: "exact multiple", page: 1, size: 10, total: 20,
			want: Pagination{CurrentPage: 1, PageSize: 10, TotalElements: 20, TotalPages: 2, HasNext: false, HasPrevious: true, FirstPage: false, LastPage: true},
		},
		{
			name: "empty result keeps one page", page: 0, size: 10, total: 0,
			want: Pagination{CurrentPage: 0, PageSize: 10, TotalElements: 0, TotalPages: 1, HasNext: false, HasPrevious: false, FirstPage: true, LastPage: true},
		},
		{
			name: "negative page clamps to zero", page: -3, size: 10, total: 5,
			want: Pagination{CurrentPage: 0, PageSize: 10, TotalElements: 5, TotalPages: 1, HasNext: false, HasPrevious: false, FirstPage: true, LastPage: true},
		},
		{
			name: "zero size defaults", page: 0, size: 0, total: 25,
			want: Pagination{CurrentPage: 0, PageSize: 10, TotalElements: 25, TotalPages: 3, HasNext: true, HasPrevious: false, FirstPage: true, LastPage: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.size, tt.total)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestEnrollmentStatusValid(t *testing.T) {
	assert.True(t, EnrollmentStatusPending.Valid())
	assert.True(t, EnrollmentStatusConfirmed.Valid())
	assert.True(t, EnrollmentStatusCancelled.Valid())
	assert.False(t, EnrollmentStatus("ARCHIVED").Valid())
}
