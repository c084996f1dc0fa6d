package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func TestAnalysisQueryBuilder_BuildWhereClause(t *testing.T) {
	qb := NewAnalysisQueryBuilder()

	tests := []struct {
		name       string
		filters    repository.AnalysisFilters
		alias      string
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "no filters",
			wantClause: "",
			wantArgs:   nil,
		},
		{
			name:       "source type",
			filters:    repository.AnalysisFilters{SourceType: ptr(entity.SourceTypeURL)},
			wantClause: "WHERE source_type = $1",
			wantArgs:   []interface{}{"url"},
		},
		{
			name:       "source type with alias",
			filters:    repository.AnalysisFilters{SourceType: ptr(entity.SourceTypeText)},
			alias:      "a",
			wantClause: "WHERE a.source_type = $1",
			wantArgs:   []interface{}{"text"},
		},
		{
			name: "all filters",
			filters: repository.AnalysisFilters{
				SourceType: ptr(entity.SourceTypeImage),
				Mode:       ptr(entity.ModeSmart),
				Keyword:    ptr("  Harbor "),
			},
			wantClause: "WHERE source_type = $1 AND mode = $2 AND $3 = ANY(keywords)",
			wantArgs:   []interface{}{"image", "smart", "harbor"},
		},
		{
			name:       "keyword only",
			filters:    repository.AnalysisFilters{Keyword: ptr("sea")},
			wantClause: "WHERE $1 = ANY(keywords)",
			wantArgs:   []interface{}{"sea"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := qb.BuildWhereClause(tt.filters, tt.alias)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
