// Command qcv is a terminal viewer for QC status reports. It renders one
// proportional pass/fail bar per module and lets the user inspect and act on
// the sample names behind each segment.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/qcview/internal/datasource"
	"github.com/vanderheijden86/qcview/pkg/config"
	"github.com/vanderheijden86/qcview/pkg/debug"
	"github.com/vanderheijden86/qcview/pkg/export"
	"github.com/vanderheijden86/qcview/pkg/loader"
	"github.com/vanderheijden86/qcview/pkg/model"
	"github.com/vanderheijden86/qcview/pkg/ui"
	"github.com/vanderheijden86/qcview/pkg/version"
	"github.com/vanderheijden86/qcview/pkg/watcher"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	robotFlag := flag.Bool("robot", false, "Print a plain-text summary and exit (default on non-TTY)")
	snapshotFlag := flag.String("export-snapshot", "", "Write an SVG/PNG snapshot to the given path and exit")
	noWatchFlag := flag.Bool("no-watch", false, "Disable live reload of the report file")
	checkFlag := flag.Bool("check-sources", false, "Compare all report sources for consistency and exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: qcv [options] [report-file-or-dir]")
		fmt.Println("\nA TUI viewer for QC status reports (qc_report.json/yaml or qc.db).")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("qcv %s\n", version.Version)
		os.Exit(0)
	}

	report, err := loadReport(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading report: %v\n", err)
		fmt.Fprintln(os.Stderr, "Point qcv at a qc_report.json/yaml file, a qc.db, or a directory containing one.")
		os.Exit(1)
	}

	if *checkFlag {
		os.Exit(checkSources(flag.Arg(0)))
	}

	if *snapshotFlag != "" {
		err := export.SaveBarSnapshot(export.BarSnapshotOptions{
			Path:   *snapshotFlag,
			Report: report,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", *snapshotFlag)
		os.Exit(0)
	}

	// Non-interactive output when asked for, or when stdout is not a
	// terminal (pipes, CI logs).
	if *robotFlag || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(ui.RenderRobotSummary(report))
		os.Exit(0)
	}

	appCfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue without config
		appCfg = config.DefaultConfig()
	}

	m := ui.NewModel(report, appCfg)

	if !*noWatchFlag && !appCfg.Watch.Disabled && report.Path != "" {
		w, werr := watcher.New(report.Path)
		if werr == nil && w.Start() == nil {
			defer w.Stop()
			m.SetWatcher(w)
			path := report.Path
			m.SetReload(func() (*model.Report, error) {
				return reloadPath(path)
			})
		} else {
			debug.Log("watcher unavailable for %s: %v", report.Path, werr)
		}
	}

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running qcv: %v\n", err)
		os.Exit(1)
	}
}

// loadReport resolves the positional argument into a loaded report: an
// explicit file, a directory to discover sources in, or the smart default
// (QCV_REPORT env, then the current directory).
func loadReport(arg string) (*model.Report, error) {
	if arg != "" {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return datasource.LoadReport(arg)
		}
		return loadPath(arg)
	}

	if env := os.Getenv(loader.ReportEnvVar); env != "" {
		return loadPath(env)
	}
	return datasource.LoadReport("")
}

// loadPath loads a single file, dispatching qc.db to the SQLite reader.
func loadPath(path string) (*model.Report, error) {
	if filepath.Ext(path) == ".db" {
		return datasource.LoadFromSource(datasource.DataSource{
			Type: datasource.SourceTypeSQLite,
			Path: path,
		})
	}
	return loader.LoadReport(path)
}

// reloadPath is loadPath with warnings routed to the debug log, used for
// live reloads where stderr would corrupt the TUI.
func reloadPath(path string) (*model.Report, error) {
	if filepath.Ext(path) == ".db" {
		return loadPath(path)
	}
	return loader.LoadReportWithOptions(path, loader.ParseOptions{
		WarningHandler: func(msg string) {
			debug.Log("reload warning: %s", msg)
		},
	})
}

// checkSources runs the cross-source consistency check.
func checkSources(dir string) int {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         false,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Source discovery failed: %v\n", err)
		return 1
	}
	if len(sources) < 2 {
		fmt.Printf("Found %d valid source(s); nothing to compare.\n", len(sources))
		return 0
	}

	diffs, err := datasource.CheckAllSourcesConsistent(sources, datasource.DefaultDiffOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Consistency check failed: %v\n", err)
		return 1
	}
	if len(diffs) == 0 {
		fmt.Printf("All %d sources are consistent.\n", len(sources))
		return 0
	}
	for _, d := range diffs {
		fmt.Print(d.Summary())
	}
	return 1
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set QCV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("QCV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
