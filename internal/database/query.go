package database

import (
	"context"
	"fmt"
)

// Row maps column names to their values for one result row.
type Row map[string]any

// Run executes a single read query and returns every row as a column
// name to value mapping. The pool connection is scoped to this call and
// released on every exit path.
func (db *DB) Run(ctx context.Context, sql string) ([]Row, error) {
	rows, err := db.Pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("unable to run query: %w", err)
	}

	defer rows.Close()

	fields := rows.FieldDescriptions()

	var results []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}

		row := make(Row, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}
