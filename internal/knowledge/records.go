package knowledge

import (
	"context"
	"fmt"

	"github.com/povarna/knowledge-assistant/internal/database"
	"github.com/povarna/knowledge-assistant/internal/metrics"
	"github.com/povarna/knowledge-assistant/internal/policy"
	"github.com/rs/zerolog/log"
)

// QueryTranslator produces a candidate SQL query for a question, or an
// empty string when no query could be generated.
type QueryTranslator interface {
	Translate(ctx context.Context, question string, allowedTables []string) string
}

// QueryGuard decides whether a generated query may be executed.
type QueryGuard interface {
	Accept(query string) bool
}

// QueryExecutor is the external relational store collaborator.
type QueryExecutor interface {
	Run(ctx context.Context, sql string) ([]database.Row, error)
}

// RecordSearcher orchestrates translate, guard, execute and per-row
// filtering. A query is never executed unless the guard accepts it.
type RecordSearcher struct {
	translator    QueryTranslator
	guard         QueryGuard
	executor      QueryExecutor
	policy        *policy.ContentPolicy
	allowedTables []string
}

func NewRecordSearcher(
	queryTranslator QueryTranslator,
	guard QueryGuard,
	executor QueryExecutor,
	contentPolicy *policy.ContentPolicy,
	allowedTables []string,
) *RecordSearcher {
	return &RecordSearcher{
		translator:    queryTranslator,
		guard:         guard,
		executor:      executor,
		policy:        contentPolicy,
		allowedTables: allowedTables,
	}
}

// Search translates the question, gates the result, executes it and
// filters every returned row. Any failure along the way degrades to an
// empty record list; a single bad generated query must never take down
// the service.
func (s *RecordSearcher) Search(ctx context.Context, question string) []Record {
	query := s.translator.Translate(ctx, question, s.allowedTables)
	if !s.guard.Accept(query) {
		return nil
	}

	rows, err := s.executor.Run(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Query execution failed, continuing without database context")
		metrics.QueryExecutionFailuresTotal.Inc()
		return nil
	}

	var records []Record
	for _, row := range rows {
		if !s.safeRow(row) {
			metrics.PolicyDropsTotal.WithLabelValues("database").Inc()
			continue
		}
		records = append(records, Record(row))
	}

	return records
}

// safeRow checks the stringified form of every field value. One unsafe
// value excludes the whole row.
func (s *RecordSearcher) safeRow(row database.Row) bool {
	for _, value := range row {
		if !s.policy.Safe(fmt.Sprintf("%v", value)) {
			return false
		}
	}
	return true
}
