// Package loader parses QC status report files. The wire format is the one
// emitted by upstream QC pipelines: a top-level object mapping module key to
// that module's sample status map, e.g.
//
//	{
//	  "per_base_quality": {"SRR001": "pass", "SRR002": "fail", "warning": true},
//	  "adapter_content":  {"SRR001": "pass", "SRR002": "pass"}
//	}
//
// Both JSON and YAML renditions are supported. Module order follows the file,
// since the rendered report mirrors the upstream section order.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/qcview/pkg/model"
)

// ReportEnvVar names the environment variable overriding report discovery.
const ReportEnvVar = "QCV_REPORT"

// PreferredReportNames defines the lookup order inside a report directory.
var PreferredReportNames = []string{"qc_report.json", "qc_report.yaml", "qc_report.yml"}

// ParseOptions configures report parsing.
type ParseOptions struct {
	// WarningHandler receives recoverable parse problems (bad value types,
	// empty modules). If nil, warnings go to os.Stderr.
	WarningHandler func(string)
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// LoadReport reads a report file, dispatching on extension (.json, .yaml,
// .yml). The report title is derived from the file name.
func LoadReport(path string) (*model.Report, error) {
	return LoadReportWithOptions(path, ParseOptions{})
}

// LoadReportWithOptions is LoadReport with custom parse options.
func LoadReportWithOptions(path string, opts ParseOptions) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var modules []model.Module
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		modules, err = ParseYAML(data, opts)
	default:
		modules, err = ParseJSON(data, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}

	return &model.Report{
		Title:    reportTitle(path),
		Modules:  modules,
		Path:     path,
		LoadedAt: time.Now(),
	}, nil
}

// ParseJSON parses the JSON rendition, preserving module order by walking the
// decoder's token stream. Module values are flat maps of scalars, so the walk
// never needs to recurse.
func ParseJSON(data []byte, opts ParseOptions) ([]model.Module, error) {
	dec := json.NewDecoder(bytes.NewReader(stripBOM(data)))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("report root: %w", err)
	}

	var modules []model.Module
	warn := opts.warn()
	for dec.More() {
		key, err := expectString(dec)
		if err != nil {
			return nil, fmt.Errorf("module key: %w", err)
		}

		raw, err := parseFlatObject(dec)
		if err != nil {
			return nil, fmt.Errorf("parsing module %q: %w", key, err)
		}

		if mod, ok := buildModule(key, raw, warn); ok {
			modules = append(modules, mod)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return modules, nil
}

// parseFlatObject consumes one {"k": scalar, ...} object from the stream.
func parseFlatObject(dec *json.Decoder) (map[string]any, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	raw := make(map[string]any)
	for dec.More() {
		key, err := expectString(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if _, nested := tok.(json.Delim); nested {
			return nil, fmt.Errorf("sample %q: nested values are not allowed", key)
		}
		raw[key] = tok
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return raw, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func expectString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %v", tok)
	}
	return s, nil
}

// ParseYAML parses the YAML rendition. Decoding through yaml.Node keeps the
// document's module order, which plain map decoding would lose.
func ParseYAML(data []byte, opts ParseOptions) ([]model.Module, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(stripBOM(data), &doc); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("report root must be a mapping, got yaml kind %d", root.Kind)
	}

	var modules []model.Module
	warn := opts.warn()
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]

		var raw map[string]any
		if err := valNode.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing module %q: %w", keyNode.Value, err)
		}

		if mod, ok := buildModule(keyNode.Value, raw, warn); ok {
			modules = append(modules, mod)
		}
	}
	return modules, nil
}

// buildModule sanitizes one raw module map. Sample values must be strings and
// the reserved warning key a bool; anything else is dropped with a warning.
// Modules left without samples are skipped entirely so downstream code never
// sees a zero-total module.
func buildModule(key string, raw map[string]any, warn func(string)) (model.Module, bool) {
	statuses := make(model.SampleStatusMap, len(raw))
	for name, v := range raw {
		if name == model.WarningKey {
			if _, ok := v.(bool); !ok {
				warn(fmt.Sprintf("module %q: warning flag is %T, expected bool; ignoring", key, v))
				continue
			}
			statuses[name] = v
			continue
		}
		s, ok := v.(string)
		if !ok {
			warn(fmt.Sprintf("module %q: sample %q has %T status, expected string; skipping", key, name, v))
			continue
		}
		if st := model.Status(s); st != model.StatusPass && st != model.StatusFail {
			warn(fmt.Sprintf("module %q: sample %q has unknown status %q, counting as fail", key, name, s))
		}
		statuses[name] = s
	}

	mod := model.Module{Key: key, Statuses: statuses}
	if err := mod.Validate(); err != nil {
		warn(fmt.Sprintf("skipping module: %v", err))
		return model.Module{}, false
	}
	return mod, true
}

// reportTitle derives a display title from the report file name.
func reportTitle(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	if base == "" {
		return "QC Report"
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

// FindReportPath locates a report file. An explicit path wins; otherwise the
// QCV_REPORT env var; otherwise the preferred names inside dir (or cwd).
func FindReportPath(explicit, dir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(ReportEnvVar); env != "" {
		return env, nil
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	for _, name := range PreferredReportNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path, nil
		}
	}
	return "", fmt.Errorf("no QC report found in %s", dir)
}

// stripBOM removes the UTF-8 Byte Order Mark if present.
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

// ParseReader parses a JSON report from a stream.
func ParseReader(r io.Reader, opts ParseOptions) ([]model.Module, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading report stream: %w", err)
	}
	return ParseJSON(data, opts)
}
