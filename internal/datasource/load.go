package datasource

import (
	"fmt"

	"github.com/vanderheijden86/qcview/pkg/debug"
	"github.com/vanderheijden86/qcview/pkg/loader"
	"github.com/vanderheijden86/qcview/pkg/model"
)

// LoadReport performs smart multi-source detection and loading in dir.
// It discovers all available sources (SQLite, JSON, YAML), validates them,
// selects the freshest valid source, and loads the report from it. SQLite is
// preferred over flat files at equal freshness, since the database reflects
// the exporter's final state.
//
// Falls back to flat-file loading via loader.FindReportPath if smart
// detection finds no valid sources.
func LoadReport(dir string) (*model.Report, error) {
	report, smartErr := loadSmart(dir)
	if smartErr == nil {
		return report, nil
	}
	debug.Log("smart load failed, falling back to flat file: %v", smartErr)

	path, err := loader.FindReportPath("", dir)
	if err != nil {
		return nil, err
	}
	return loader.LoadReport(path)
}

// loadSmart discovers sources, validates, selects the best, and loads from it.
func loadSmart(dir string) (*model.Report, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         false,
		Verbose:                debug.Enabled(),
		Logger:                 func(msg string) { debug.Log("%s", msg) },
	})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid sources discovered in %s", dir)
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, err
	}
	debug.Log("selected source: %s", best)

	return LoadFromSource(best)
}

// LoadFromSource loads a report from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(source DataSource) (*model.Report, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadReport()

	case SourceTypeJSON, SourceTypeYAML:
		return loader.LoadReport(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
