package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/qcview/pkg/watcher"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qc_report.json")
	writeFile(t, path, `{}`)

	w, err := watcher.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !w.IsStarted() {
		t.Error("IsStarted = false after Start")
	}
	if err := w.Start(); err != watcher.ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("IsStarted = true after Stop")
	}
	// Stop is idempotent
	w.Stop()
}

func TestDetectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qc_report.json")
	writeFile(t, path, `{"a": {"s1": "pass"}}`)

	w, err := watcher.New(path, watcher.WithDebounceDuration(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writeFile(t, path, `{"a": {"s1": "fail"}}`)

	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification after write")
	}
}

func TestPollingFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qc_report.yaml")
	writeFile(t, path, "a:\n  s1: pass\n")

	w, err := watcher.New(path,
		watcher.WithForcePoll(true),
		watcher.WithPollInterval(20*time.Millisecond),
		watcher.WithDebounceDuration(10*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("IsPolling = false with WithForcePoll(true)")
	}

	// Size change guarantees detection even with coarse mtime resolution.
	writeFile(t, path, "a:\n  s1: pass\n  s2: fail\n")

	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification in polling mode")
	}
}

func TestDebounceCollapsesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qc_report.json")
	writeFile(t, path, `{}`)

	w, err := watcher.New(path,
		watcher.WithForcePoll(true),
		watcher.WithPollInterval(10*time.Millisecond),
		watcher.WithDebounceDuration(100*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		writeFile(t, path, fmt.Sprintf(`{"burst%d": {"s1": "pass"}}`, i))
		time.Sleep(15 * time.Millisecond)
	}

	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification after burst")
	}

	// The burst should have been collapsed into a single notification.
	select {
	case <-w.Changed():
		t.Error("burst produced more than one notification")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRemovedFileReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qc_report.json")
	writeFile(t, path, `{}`)

	errCh := make(chan error, 1)
	w, err := watcher.New(path,
		watcher.WithForcePoll(true),
		watcher.WithPollInterval(10*time.Millisecond),
		watcher.WithOnError(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if err != watcher.ErrFileRemoved {
			t.Errorf("error = %v, want ErrFileRemoved", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no error after file removal")
	}
}
