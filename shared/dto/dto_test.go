package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"appointer/shared/constant"
	"appointer/shared/dto"
	"appointer/shared/model"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		CreatedBy:  "creator",
		ModifiedBy: "modifier",
	})

	assert.NotEmpty(t, metadata.CreatedAt)
	assert.NotEmpty(t, metadata.ModifiedAt)
	assert.Equal(t, "creator", metadata.CreatedBy)
	assert.Equal(t, "modifier", metadata.ModifiedBy)

	metadata.FromModel(model.Metadata{CreatedAt: createdAt, CreatedBy: "system:migration"})
	assert.Empty(t, metadata.ModifiedAt)
	assert.Empty(t, metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all valid parameters",
			query:    "page=2&limit=20&sort_by=date&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "date", SortDir: "ASC"},
		},
		{
			name:           "defaults when empty",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "no defaults when disabled",
			expected: dto.QueryParams{},
		},
		{
			name:           "invalid numbers fall back to defaults",
			query:          "page=-1&limit=abc",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "invalid sort direction ignored",
			query:    "sort_dir=sideways",
			expected: dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/bookings?"+tt.query, nil)

			q := &dto.QueryParams{}
			q.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, *q)
		})
	}
}

func TestQueryParams_Restrict(t *testing.T) {
	tests := []struct {
		name     string
		in       dto.QueryParams
		expected dto.QueryParams
	}{
		{
			name:     "allowed column keeps its direction",
			in:       dto.QueryParams{SortBy: "date", SortDir: "ASC"},
			expected: dto.QueryParams{SortBy: "bookings.date", SortDir: "ASC"},
		},
		{
			name:     "allowed column without direction",
			in:       dto.QueryParams{SortBy: "date"},
			expected: dto.QueryParams{SortBy: "bookings.date", SortDir: "ASC"},
		},
		{
			name:     "unknown column",
			in:       dto.QueryParams{SortBy: "date; DROP TABLE bookings", SortDir: "ASC"},
			expected: dto.QueryParams{SortBy: "bookings.created_at", SortDir: "DESC"},
		},
		{
			name:     "empty",
			expected: dto.QueryParams{SortBy: "bookings.created_at", SortDir: "DESC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.in
			q.Restrict("bookings", "date", "start_time")

			assert.Equal(t, tt.expected, q)
		})
	}
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "eq with table",
			filter:    dto.Eq("bookings", "status", "confirmed"),
			wantWhere: "bookings.status = :status",
			wantArgs:  map[string]any{"status": "confirmed"},
		},
		{
			name:      "less with arg name",
			filter:    dto.Filter{Field: "start_time", ArgName: "end", Value: "10:00", Operator: dto.FilterOperatorLess},
			wantWhere: "start_time < :end",
			wantArgs:  map[string]any{"end": "10:00"},
		},
		{
			name:      "greater",
			filter:    dto.Filter{Field: "end_time", ArgName: "start", Value: "09:00", Operator: dto.FilterOperatorGreater},
			wantWhere: "end_time > :start",
			wantArgs:  map[string]any{"start": "09:00"},
		},
		{
			name:      "in slice",
			filter:    dto.Filter{Field: "status", Value: []string{"a", "b"}, Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status_0, :status_1) ",
			wantArgs:  map[string]any{"status_0": "a", "status_1": "b"},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "specialist_id", Operator: dto.FilterIsNull, Table: "bookings"},
			wantWhere: "bookings.specialist_id IS NULL",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.And(
		dto.Eq("", "date", "2024-06-03"),
		dto.Or(
			dto.Eq("", "status", "confirmed"),
			dto.Filter{Field: "status", ArgName: "other", Value: "completed", Operator: dto.FilterOperatorEq},
		),
		dto.FilterGroup{},
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(date = :date AND (status = :status OR status = :other))", where)
	assert.Len(t, args, 3)

	empty := dto.FilterGroup{}
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)
}

func TestSortDirectionConstants(t *testing.T) {
	assert.Equal(t, "ASC", dto.SortDirAsc)
	assert.Equal(t, "DESC", dto.SortDirDesc)
}
