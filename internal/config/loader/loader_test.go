package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/twick.toml", `
[history]
depth = 30
resume = false

[logging]
level = "debug"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/twick.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	history, ok := config["history"].(map[string]any)
	if !ok {
		t.Fatal("expected history to be a map")
	}
	if history["depth"] != int64(30) {
		t.Errorf("depth = %v (%T), want 30", history["depth"], history["depth"])
	}
	if history["resume"] != false {
		t.Errorf("resume = %v, want false", history["resume"])
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/nope.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[history]\ndepth = = 3\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q", perr.Path)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader(`key = "value"`))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if config["key"] != "value" {
		t.Errorf("key = %v", config["key"])
	}
}

func TestTOMLLoader_LoadWithIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/conf/base.toml", `
[history]
depth = 10
resume = true
`)
	memfs.AddFile("/conf/main.toml", `
"@include" = "base.toml"

[history]
depth = 40
`)

	config, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/conf/main.toml", 4)
	if err != nil {
		t.Fatalf("LoadWithIncludes failed: %v", err)
	}
	if _, ok := config[IncludeKey]; ok {
		t.Error("include directive should be removed")
	}
	history := config["history"].(map[string]any)
	if history["depth"] != int64(40) {
		t.Errorf("depth = %v, want 40", history["depth"])
	}
	if history["resume"] != true {
		t.Errorf("resume = %v, want true from include", history["resume"])
	}
}

func TestTOMLLoader_IncludeCycle(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = "b.toml"`)
	memfs.AddFile("/b.toml", `"@include" = "a.toml"`)

	if _, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/a.toml", 3); err == nil {
		t.Fatal("expected depth error")
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/twick.yaml", `
persistence:
  driver: sqlite
  path: /tmp/twick.db
script:
  timeout: 2s
`)

	config, err := NewYAMLLoaderWithFS(memfs, "/twick.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p := config["persistence"].(map[string]any)
	if p["driver"] != "sqlite" || p["path"] != "/tmp/twick.db" {
		t.Errorf("persistence = %v", p)
	}
	s := config["script"].(map[string]any)
	if s["timeout"] != "2s" {
		t.Errorf("timeout = %v", s["timeout"])
	}
}

func TestYAMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.yaml", "history:\n  depth: [1, 2\n")

	_, err := NewYAMLLoaderWithFS(memfs, "/bad.yaml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Line == 0 {
		t.Errorf("expected a line number in %q", perr.Message)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"twick.toml", FormatTOML, false},
		{"twick.YAML", FormatYAML, false},
		{"twick.yml", FormatYAML, false},
		{"twick.json", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err != nil) != tt.err {
			t.Errorf("FormatOf(%q) err = %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("FormatOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoadFiles_LaterWins(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", "[editor]\ndefault_duration = \"1s\"\nstrict_schema = true\n")
	memfs.AddFile("/b.yaml", "editor:\n  default_duration: 3s\n")

	config, err := LoadFiles(memfs, "/a.toml", "/missing.toml", "/b.yaml")
	if err != nil {
		t.Fatalf("LoadFiles failed: %v", err)
	}
	editor := config["editor"].(map[string]any)
	if editor["default_duration"] != "3s" {
		t.Errorf("default_duration = %v", editor["default_duration"])
	}
	if editor["strict_schema"] != true {
		t.Errorf("strict_schema = %v", editor["strict_schema"])
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"a": 1,
		"nested": map[string]any{"x": 1, "y": 2},
	}
	src := map[string]any{
		"b":      2,
		"nested": map[string]any{"y": 3},
	}
	got := DeepMerge(dst, src)
	if got["a"] != 1 || got["b"] != 2 {
		t.Errorf("merged = %v", got)
	}
	nested := got["nested"].(map[string]any)
	if nested["x"] != 1 || nested["y"] != 3 {
		t.Errorf("nested = %v", nested)
	}
}

func TestClone_IsDeep(t *testing.T) {
	src := map[string]any{
		"nested": map[string]any{"list": []any{map[string]any{"k": "v"}}},
	}
	cp := Clone(src)
	cp["nested"].(map[string]any)["list"].([]any)[0].(map[string]any)["k"] = "changed"

	orig := src["nested"].(map[string]any)["list"].([]any)[0].(map[string]any)["k"]
	if orig != "v" {
		t.Errorf("source mutated: %v", orig)
	}
}
