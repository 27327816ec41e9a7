package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"time"
)

// Direction is the direction a migration is run in.
type Direction string

// Migration directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Querier runs SQL statements. It's implemented by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Migration is a schema change, with the SQL to apply and to roll it back.
type Migration struct {
	Name    string
	Applied bool
	Up      string
	Down    string
}

var fnameRx = regexp.MustCompile(`^(?P<name>\d+-[a-z0-9-_]+)\.(?P<dir>up|down)\.sql$`)

// Load reads the SQL files in dir, and returns the migrations sorted by name.
// Files are named <number>-<name>.<up|down>.sql; other files are ignored.
func Load(dir fs.FS) ([]*Migration, error) {
	byName := make(map[string]*Migration)

	err := fs.WalkDir(dir, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || path.Ext(p) != ".sql" {
			return nil
		}

		match := fnameRx.FindStringSubmatch(d.Name())
		if match == nil {
			return nil
		}
		data, err := fs.ReadFile(dir, p)
		if err != nil {
			return err
		}

		name := match[fnameRx.SubexpIndex("name")]
		m, ok := byName[name]
		if !ok {
			m = &Migration{Name: name}
			byName[name] = m
		}
		if Direction(match[fnameRx.SubexpIndex("dir")]) == Up {
			m.Up = string(data)
		} else {
			m.Down = string(data)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed loading migrations: %w", err)
	}

	migrations := make([]*Migration, 0, len(byName))
	for _, m := range byName {
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})

	return migrations, nil
}

// Run applies or rolls back migrations up to and including the migration
// named to, or all of them if to is "all". Each step is recorded in the
// _migration_history table, which is also used to decide which migrations are
// already applied.
func Run(
	ctx context.Context, q Querier, migrations []*Migration, dir Direction,
	to string, logger *slog.Logger,
) error {
	if err := createHistorySchema(ctx, q); err != nil {
		return fmt.Errorf("failed creating migration history schema: %w", err)
	}

	if err := loadHistory(ctx, q, migrations); err != nil {
		return err
	}

	runPlan, err := plan(migrations, dir, to)
	if err != nil {
		return err
	}

	for _, run := range runPlan {
		if _, err := q.ExecContext(ctx, run.sql); err != nil {
			return fmt.Errorf("failed running %s migration '%s': %w", run.dir, run.name, err)
		}
		_, err := q.ExecContext(ctx,
			`INSERT INTO _migration_history (name, type, time) VALUES (?, ?, ?)`,
			run.name, string(run.dir), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed recording migration '%s': %w", run.name, err)
		}

		msg := "applied store migration"
		if run.dir == Down {
			msg = "rolled back store migration"
		}
		logger.Debug(msg, "name", run.name)
	}

	return nil
}

func loadHistory(ctx context.Context, q Querier, migrations []*Migration) error {
	byName := make(map[string]*Migration, len(migrations))
	for _, m := range migrations {
		byName[m.Name] = m
	}

	rows, err := q.QueryContext(ctx,
		`SELECT name, type FROM _migration_history ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("failed retrieving migration history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return fmt.Errorf("failed reading migration history: %w", err)
		}

		m, ok := byName[name]
		if !ok {
			return fmt.Errorf("found unknown migration in history: '%s'", name)
		}
		// The last event wins.
		m.Applied = Direction(typ) == Up
	}

	return rows.Err()
}

type migrationRun struct {
	name string
	dir  Direction
	sql  string
}

func plan(migrations []*Migration, dir Direction, to string) ([]migrationRun, error) {
	runPlan := []migrationRun{}

	toIdx := -1
	for i, m := range migrations {
		if m.Name == to {
			toIdx = i
			break
		}
	}
	if toIdx < 0 && to != "all" {
		return nil, fmt.Errorf("migration '%s' doesn't exist", to)
	}

	for idx, m := range migrations {
		switch {
		case dir == Up && !m.Applied && (to == "all" || idx <= toIdx):
			runPlan = append(runPlan, migrationRun{name: m.Name, dir: Up, sql: m.Up})
		case dir == Down && m.Applied && (to == "all" || idx > toIdx):
			// Roll back in reverse order.
			runPlan = append([]migrationRun{{name: m.Name, dir: Down, sql: m.Down}}, runPlan...)
		}
	}

	return runPlan, nil
}

func createHistorySchema(ctx context.Context, q Querier) error {
	_, err := q.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migration_history (
			name VARCHAR(128) NOT NULL,
			type VARCHAR(32) CHECK( type IN ('up','down') ) NOT NULL,
			time TIMESTAMP NOT NULL
		);`)
	return err
}
