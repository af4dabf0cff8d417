package dialect

import "fmt"

// Factory returns the appropriate Dialect implementation based on driver name.
// Only drivers whose database has named enum types are accepted.
func GetDialect(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return &PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("driver %q has no named enum support (supported: postgres, pgx)", driver)
	}
}

// Ensure interface implementation
var _ Dialect = (*PostgresDialect)(nil)
