package config

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/runtime"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Runtime.TickInterval.Std() != 16*time.Millisecond {
		t.Errorf("Runtime.TickInterval = %v, want 16ms", cfg.Runtime.TickInterval)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Runtime.HistorySize != DefaultHistorySize {
		t.Errorf("Runtime.HistorySize = %d, want %d", cfg.Runtime.HistorySize, DefaultHistorySize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archiving should be off by default")
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if !errors.HasCode(err, "E020") {
		t.Fatalf("Load(empty dir) = %v, want E020", err)
	}

	configYAML := `
runtime:
  tickInterval: 8ms
  maxScopesPerTick: 50
  debug: true
server:
  addr: "127.0.0.1:9000"
  allowedOrigins: ["https://example.com"]
archive:
  bucket: audit
  interval: 30s
log:
  level: debug
`
	if err := os.WriteFile(filepath.Join(tmpDir, "vtree.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := runtime.Config{
		TickInterval:     8 * time.Millisecond,
		MaxScopesPerTick: 50,
		QueueLimit:       256,
		Verify:           true,
	}
	if diff := cmp.Diff(want, cfg.RuntimeConfig()); diff != "" {
		t.Errorf("RuntimeConfig mismatch (-want +got):\n%s", diff)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.Path != "/ws" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.ArchiveEnabled() || cfg.Archive.Interval.Std() != 30*time.Second || cfg.Archive.Prefix != "vtree/" {
		t.Errorf("Archive = %+v", cfg.Archive)
	}
	if cfg.Path() != filepath.Join(tmpDir, "vtree.yaml") {
		t.Errorf("Path() = %q", cfg.Path())
	}

	rc := cfg.RemoteConfig()
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://example.com")
	if !rc.CheckOrigin(req) {
		t.Error("allowed origin rejected")
	}
	req.Header.Set("Origin", "https://evil.example")
	if rc.CheckOrigin(req) {
		t.Error("unknown origin accepted")
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "vtree.json")
	configJSON := `{"runtime": {"tickInterval": "1s", "queueLimit": 10}, "log": {"format": "json"}}`
	if err := os.WriteFile(path, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Runtime.TickInterval.Std() != time.Second || cfg.Runtime.QueueLimit != 10 {
		t.Errorf("Runtime = %+v", cfg.Runtime)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		yaml   bool
		code   string
		detail string
	}{
		{"bad json", "not valid json", false, "E021", "Failed to parse"},
		{"unknown json key", `{"runtme": {}}`, false, "E021", "runtme"},
		{"unknown yaml key", "server:\n  adress: x\n", true, "E021", "adress"},
		{"bad duration", `{"runtime": {"tickInterval": "fast"}}`, false, "E022", "fast"},
		{"numeric duration", `{"runtime": {"tickInterval": 16}}`, false, "E022", "strings"},
		{"bad yaml duration", "archive:\n  interval: soon\n", true, "E022", "soon"},
		{"negative budget", `{"runtime": {"maxScopesPerTick": -1}}`, false, "E021", "maxScopesPerTick"},
		{"relative path", "server:\n  path: ws\n", true, "E021", "server.path"},
		{"heartbeat too long", "server:\n  heartbeat: 2m\n", true, "E021", "heartbeat"},
		{"bad level", "log:\n  level: loud\n", true, "E021", "log.level"},
		{"bad format", "log:\n  format: xml\n", true, "E021", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.yaml)
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("Parse = %v, want %s", err, tt.code)
			}
			e, ok := err.(*errors.Error)
			if !ok || e.Code != tt.code {
				t.Fatalf("err = %#v, want *errors.Error with code %s", err, tt.code)
			}
			if !strings.Contains(e.Detail, tt.detail) {
				t.Errorf("Detail = %q, want it to mention %q", e.Detail, tt.detail)
			}
		})
	}
}

func TestParseEmptyYAML(t *testing.T) {
	cfg, err := Parse(nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(New().RuntimeConfig(), cfg.RuntimeConfig()); diff != "" {
		t.Errorf("empty file should give defaults (-want +got):\n%s", diff)
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{"vtree.yaml", "vtree.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := New()
			if err := cfg.Save(); err == nil {
				t.Error("Expected error when saving without path")
			}

			cfg.Runtime.TickInterval = Duration(250 * time.Millisecond)
			cfg.Archive.Bucket = "b"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile error: %v", err)
			}
			if loaded.Runtime.TickInterval.Std() != 250*time.Millisecond || loaded.Archive.Bucket != "b" {
				t.Errorf("reloaded = %+v", loaded)
			}

			loaded.Server.Addr = ":1"
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			reloaded, _ := LoadFile(path)
			if reloaded.Server.Addr != ":1" {
				t.Errorf("Server.Addr = %q, want :1", reloaded.Server.Addr)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nested); !errors.HasCode(err, "E020") {
		t.Errorf("FindProjectRoot without config = %v, want E020", err)
	}

	if err := os.WriteFile(filepath.Join(root, "vtree.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot = %q, want %q", got, want)
	}
}

func TestLogger(t *testing.T) {
	var sb strings.Builder
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"
	logger := cfg.Logger(&sb)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := sb.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("log output = %q", out)
	}
}
