// Package datasource provides multi-source detection and selection for qcv.
// It discovers, validates, and selects the freshest valid source from SQLite
// databases (qc.db) and flat report files (qc_report.json/yaml).
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/qcview/pkg/loader"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database (qc.db)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSON is a flat JSON report file
	SourceTypeJSON SourceType = "json"
	// SourceTypeYAML is a flat YAML report file
	SourceTypeYAML SourceType = "yaml"
)

// Priority values for source types (higher = more authoritative)
const (
	PrioritySQLite = 100
	PriorityJSON   = 80
	PriorityYAML   = 60
)

// DBName is the SQLite database filename looked for during discovery.
const DBName = "qc.db"

// DataSource represents a potential source of QC status data
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// ModuleCount is the number of modules in the source (set during validation)
	ModuleCount int `json:"module_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, modules=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.ModuleCount, status)
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Dir is the directory to search (uses cwd if empty)
	Dir string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds all potential data sources in the given directory
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering sources in: %s", dir))
	}

	var sources []DataSource

	// SQLite database
	dbPath := filepath.Join(dir, DBName)
	if info, err := os.Stat(dbPath); err == nil {
		sources = append(sources, DataSource{
			Type:     SourceTypeSQLite,
			Path:     dbPath,
			Priority: PrioritySQLite,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found SQLite: %s (mod=%s)", dbPath, info.ModTime().Format(time.RFC3339)))
		}
	}

	// Flat report files
	for _, name := range loader.PreferredReportNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		srcType := SourceTypeJSON
		priority := PriorityJSON
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			srcType = SourceTypeYAML
			priority = PriorityYAML
		}

		sources = append(sources, DataSource{
			Type:     srcType,
			Path:     path,
			Priority: priority,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found report: %s (mod=%s)", path, info.ModTime().Format(time.RFC3339)))
		}
	}

	if opts.ValidateAfterDiscovery {
		if err := ValidateSources(sources); err != nil && opts.Verbose {
			opts.Logger(fmt.Sprintf("Validation warning: %v", err))
		}
		if !opts.IncludeInvalid {
			var valid []DataSource
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	// Sort by mod time, then priority
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}

	return sources, nil
}

// ValidateSources validates all sources concurrently, recording results in
// place. Individual validation failures are recorded on the source, not
// returned; the error covers only infrastructure-level problems.
func ValidateSources(sources []DataSource) error {
	var g errgroup.Group
	g.SetLimit(4)

	for i := range sources {
		g.Go(func() error {
			ValidateSource(&sources[i])
			return nil
		})
	}
	return g.Wait()
}

// ValidateSource checks that a source can actually be loaded, filling in
// Valid, ValidationError, and ModuleCount.
func ValidateSource(source *DataSource) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(*source)
		if err != nil {
			source.Valid = false
			source.ValidationError = err.Error()
			return
		}
		defer reader.Close()

		count, err := reader.CountModules()
		if err != nil {
			source.Valid = false
			source.ValidationError = err.Error()
			return
		}
		if count == 0 {
			source.Valid = false
			source.ValidationError = "database contains no modules"
			return
		}
		source.Valid = true
		source.ModuleCount = count

	case SourceTypeJSON, SourceTypeYAML:
		report, err := loader.LoadReport(source.Path)
		if err != nil {
			source.Valid = false
			source.ValidationError = err.Error()
			return
		}
		if len(report.Modules) == 0 {
			source.Valid = false
			source.ValidationError = "report contains no modules"
			return
		}
		source.Valid = true
		source.ModuleCount = len(report.Modules)

	default:
		source.Valid = false
		source.ValidationError = fmt.Sprintf("unknown source type: %s", source.Type)
	}
}

// SelectBestSource picks the freshest valid source, breaking mod-time ties by
// priority. Returns an error if no source is valid.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	var best *DataSource
	for i := range sources {
		s := &sources[i]
		if !s.Valid {
			continue
		}
		if best == nil {
			best = s
			continue
		}
		if s.ModTime.After(best.ModTime) ||
			(s.ModTime.Equal(best.ModTime) && s.Priority > best.Priority) {
			best = s
		}
	}
	if best == nil {
		return DataSource{}, fmt.Errorf("no valid sources among %d candidates", len(sources))
	}
	return *best, nil
}
