// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"literary-analysis/internal/repository"
)

// AnalysisQueryBuilder builds WHERE clauses for analysis listing.
// The same clause is shared by the COUNT and SELECT queries so totals and
// pages never disagree.
type AnalysisQueryBuilder struct{}

// NewAnalysisQueryBuilder creates a new query builder instance.
func NewAnalysisQueryBuilder() *AnalysisQueryBuilder {
	return &AnalysisQueryBuilder{}
}

// BuildWhereClause returns the WHERE clause for filters with $N placeholders
// starting at $1, and its arguments. It returns an empty clause when no
// filter is set.
func (qb *AnalysisQueryBuilder) BuildWhereClause(filters repository.AnalysisFilters, tableAlias string) (clause string, args []interface{}) {
	var conditions []string
	paramIndex := 1

	col := func(name string) string {
		if tableAlias != "" {
			return tableAlias + "." + name
		}
		return name
	}

	if filters.SourceType != nil {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col("source_type"), paramIndex))
		args = append(args, string(*filters.SourceType))
		paramIndex++
	}

	if filters.Mode != nil {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col("mode"), paramIndex))
		args = append(args, string(*filters.Mode))
		paramIndex++
	}

	// Keywords are stored lowercased; ANY() can use the GIN index.
	if filters.Keyword != nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(%s)", paramIndex, col("keywords")))
		args = append(args, strings.ToLower(strings.TrimSpace(*filters.Keyword)))
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
