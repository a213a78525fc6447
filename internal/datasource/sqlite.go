package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/qcview/pkg/model"
)

// SQLiteReader provides read access to a qc.db database.
//
// Expected schema, as written by the pipeline exporter:
//
//	CREATE TABLE statuses (
//	    module TEXT NOT NULL,
//	    sample TEXT NOT NULL,
//	    status TEXT NOT NULL
//	);
//	CREATE TABLE module_warnings (
//	    module  TEXT NOT NULL,
//	    warning INTEGER NOT NULL
//	);
//
// Module order follows first insertion order (rowid).
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Read performance pragmas; failures are non-fatal
	pragmas := []string{
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		_, _ = db.Exec(pragma)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadReport reads all modules and their sample statuses from the database.
func (r *SQLiteReader) LoadReport() (*model.Report, error) {
	rows, err := r.db.Query(`
		SELECT module, sample, status
		FROM statuses
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying statuses: %w", err)
	}
	defer rows.Close()

	var order []string
	byKey := make(map[string]model.SampleStatusMap)

	for rows.Next() {
		var module, sample, status string
		if err := rows.Scan(&module, &sample, &status); err != nil {
			return nil, fmt.Errorf("scanning status row: %w", err)
		}
		statuses, ok := byKey[module]
		if !ok {
			statuses = make(model.SampleStatusMap)
			byKey[module] = statuses
			order = append(order, module)
		}
		statuses[sample] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating statuses: %w", err)
	}

	warnings, err := r.loadWarnings()
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Title:    titleFromPath(r.path),
		Path:     r.path,
		LoadedAt: time.Now(),
	}
	for _, key := range order {
		statuses := byKey[key]
		if warnings[key] {
			statuses[model.WarningKey] = true
		}
		mod := model.Module{Key: key, Statuses: statuses}
		if err := mod.Validate(); err != nil {
			continue
		}
		report.Modules = append(report.Modules, mod)
	}
	if len(report.Modules) == 0 {
		return nil, fmt.Errorf("database %s contains no modules", r.path)
	}

	return report, nil
}

// loadWarnings reads the module_warnings table. A missing table is treated as
// no warnings, since older exporters did not write it.
func (r *SQLiteReader) loadWarnings() (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT module, warning FROM module_warnings`)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, nil
		}
		return nil, fmt.Errorf("querying module_warnings: %w", err)
	}
	defer rows.Close()

	warnings := make(map[string]bool)
	for rows.Next() {
		var module string
		var warning bool
		if err := rows.Scan(&module, &warning); err != nil {
			return nil, fmt.Errorf("scanning warning row: %w", err)
		}
		if warning {
			warnings[module] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating module_warnings: %w", err)
	}
	return warnings, nil
}

// CountModules returns the number of distinct modules in the database
func (r *SQLiteReader) CountModules() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(DISTINCT module) FROM statuses`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// titleFromPath derives a report title from the database filename.
func titleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return "QC Report"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
