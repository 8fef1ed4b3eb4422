package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/lib/pq" // Postgres
	_ "modernc.org/sqlite" // SQLite
)

var drivers = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"postgres":   "postgres",
	"postgresql": "postgres",
}

// Drivers lists the accepted driver names.
func Drivers() []string {
	names := make([]string, 0, len(drivers))
	for k := range drivers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Cursor is a structured-query handle. The VM keeps it on its state but
// no opcode uses it yet.
type Cursor struct {
	Driver string
	DB     *sql.DB
}

// OpenCursor opens a database by driver name and checks it is reachable.
func OpenCursor(ctx context.Context, driver, dsn string) (*Cursor, error) {
	name, ok := drivers[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unknown driver %q (supported: %s)", driver, strings.Join(Drivers(), ", "))
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	return &Cursor{Driver: name, DB: db}, nil
}

// ParseDSN splits a "driver:dsn" flag value.
func ParseDSN(s string) (driver, dsn string, err error) {
	driver, dsn, ok := strings.Cut(s, ":")
	if !ok || driver == "" || dsn == "" {
		return "", "", fmt.Errorf("invalid database %q (want driver:dsn)", s)
	}
	return driver, dsn, nil
}

func (c *Cursor) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
