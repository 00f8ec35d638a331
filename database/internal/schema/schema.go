// Package schema compares the columns of an existing table against the
// columns a backend expects.
package schema

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Column describes one table column as reported by the database.
type Column struct {
	DataType   string
	IsNullable bool
}

// Table is the expected layout of a table, keyed by column name.
type Table map[string]Column

// Compare reports every expected column that is missing from actual or
// differs in type or nullability. Extra columns in actual are allowed.
// Problems are listed in column name order.
func Compare(tableName string, expected, actual Table) error {
	var missing, mismatched []string

	for _, name := range slices.Sorted(maps.Keys(expected)) {
		want := expected[name]
		got, ok := actual[name]
		if !ok {
			missing = append(missing, name)
			continue
		}

		if !strings.EqualFold(got.DataType, want.DataType) {
			mismatched = append(mismatched, fmt.Sprintf("%s: expected %s, got %s", name, want.DataType, got.DataType))
		}
		if got.IsNullable != want.IsNullable {
			mismatched = append(mismatched, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, want.IsNullable, got.IsNullable))
		}
	}

	if len(missing) == 0 && len(mismatched) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "table %s schema validation failed:\n", tableName)
	if len(missing) > 0 {
		fmt.Fprintf(&b, "  missing columns: %s\n", strings.Join(missing, ", "))
	}
	if len(mismatched) > 0 {
		b.WriteString("  mismatched columns:\n")
		for _, m := range mismatched {
			fmt.Fprintf(&b, "    - %s\n", m)
		}
	}

	return errors.New(b.String())
}
