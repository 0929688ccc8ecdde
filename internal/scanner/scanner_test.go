package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/andywolf/loctreemap/internal/language"
	"github.com/andywolf/loctreemap/internal/tree"
)

// writeLines creates path under root with n lines of content.
func writeLines(t *testing.T, root, path string, n int) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	content := strings.Repeat("x := 1\n", n)
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func goClassifier(t *testing.T) *language.Classifier {
	t.Helper()
	reg, _, err := language.Parse([]byte("languages:\n  - name: Go\n    extensions: [.go]\n    enabled: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	c, err := language.NewClassifier(reg, 6)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func paths(n *tree.Node) []string {
	var out []string
	tree.Walk(n, func(c *tree.Node) bool {
		out = append(out, c.Path)
		return true
	})
	return out
}

func TestScanner_BasicTree(t *testing.T) {
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, "a.go", 10)
	writeLines(t, tmpDir, "b.go", 20)
	writeLines(t, tmpDir, "sub/c.go", 5)

	result, err := New(tmpDir, Options{Extensions: []string{".go"}, Classifier: goClassifier(t)}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	tree.Aggregate(result.Root)

	if result.Root.LineCount != 35 {
		t.Errorf("expected root line count 35, got %d", result.Root.LineCount)
	}
	if sub := tree.Find(result.Root, "sub"); sub == nil || sub.LineCount != 5 {
		t.Errorf("expected sub line count 5, got %+v", sub)
	}

	var counts []int
	for _, f := range tree.Files(result.Root) {
		counts = append(counts, f.LineCount)
		if f.Language != "Go" {
			t.Errorf("expected language Go for %s, got %q", f.Path, f.Language)
		}
	}
	if !reflect.DeepEqual(counts, []int{10, 20, 5}) {
		t.Errorf("expected file counts [10 20 5], got %v", counts)
	}
	if result.Files != 3 {
		t.Errorf("expected 3 files, got %d", result.Files)
	}
	if result.Root.Path != tree.RootPath || result.Root.Name != filepath.Base(tmpDir) {
		t.Errorf("unexpected root %q/%q", result.Root.Path, result.Root.Name)
	}
	if c := tree.Find(result.Root, "sub/c.go"); c == nil || c.Depth != 2 {
		t.Errorf("expected sub/c.go at depth 2, got %+v", c)
	}
}

func TestScanner_IgnoreDotFolders(t *testing.T) {
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, ".git/config.go", 100)
	writeLines(t, tmpDir, "main.go", 3)

	result, err := New(tmpDir, Options{Extensions: []string{".go"}, IgnoreDotFolders: true}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	tree.Aggregate(result.Root)

	if result.Root.LineCount != 3 {
		t.Errorf("expected root line count 3, got %d", result.Root.LineCount)
	}
	if tree.Find(result.Root, ".git") != nil {
		t.Error("expected .git subtree to be absent")
	}

	result, err = New(tmpDir, Options{Extensions: []string{".go"}}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tree.Find(result.Root, ".git/config.go") == nil {
		t.Error("expected .git/config.go when dot folders are not ignored")
	}
}

func TestScanner_EmptyFoldersOmitted(t *testing.T) {
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, "docs/readme.md", 40)
	writeLines(t, tmpDir, "docs/deep/notes.txt", 4)
	writeLines(t, tmpDir, "src/main.go", 7)
	if err := os.MkdirAll(filepath.Join(tmpDir, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := New(tmpDir, Options{Extensions: []string{"go"}}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{".", "src", "src/main.go"}
	if got := paths(result.Root); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestScanner_NoExtensions(t *testing.T) {
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, "main.go", 3)

	result, err := New(tmpDir, Options{}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Empty() {
		t.Errorf("expected empty result, got %d files", result.Files)
	}
}

func TestScanner_WorkspaceScope(t *testing.T) {
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, "main.go", 1)
	writeLines(t, tmpDir, "vendor/lib/lib.go", 50)
	writeLines(t, tmpDir, "node_modules/x/x.go", 50)

	scoped, err := New(tmpDir, Options{Extensions: []string{".go"}}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if scoped.Files != 1 {
		t.Errorf("expected 1 file in workspace scope, got %d", scoped.Files)
	}

	entire, err := New(tmpDir, Options{Extensions: []string{".go"}, ScanEntireRepo: true}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if entire.Files != 3 {
		t.Errorf("expected 3 files when scanning entire repo, got %d", entire.Files)
	}
}

func TestScanner_Exclude(t *testing.T) {
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, "main.go", 1)
	writeLines(t, tmpDir, "main_test.go", 1)
	writeLines(t, tmpDir, "gen/api.go", 1)
	writeLines(t, tmpDir, "pkg/testdata/fixture.go", 1)

	opts := Options{
		Extensions: []string{".go"},
		Exclude:    []string{"**/*_test.go", "*_test.go", "gen", "**/testdata"},
	}
	result, err := New(tmpDir, opts).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{".", "main.go"}
	if got := paths(result.Root); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}

	if _, err := New(tmpDir, Options{Exclude: []string{"[oops"}}).Scan(context.Background()); err == nil {
		t.Error("expected error for malformed exclude pattern")
	}
}

func TestScanner_BinaryFileSkipped(t *testing.T) {
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, "ok.go", 2)
	if err := os.WriteFile(filepath.Join(tmpDir, "blob.go"), []byte{'a', 0, 'b', '\n'}, 0644); err != nil {
		t.Fatal(err)
	}

	result, err := New(tmpDir, Options{Extensions: []string{".go"}}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tree.Find(result.Root, "blob.go") != nil {
		t.Error("expected binary file to be dropped")
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Kind != WarnBinaryFile || result.Warnings[0].Path != "blob.go" {
		t.Errorf("unexpected warnings %v", result.Warnings)
	}
}

func TestScanner_UnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, "main.go", 2)
	writeLines(t, tmpDir, "locked/secret.go", 9)
	locked := filepath.Join(tmpDir, "locked")
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	result, err := New(tmpDir, Options{Extensions: []string{".go"}}).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan must not fail on an unreadable directory: %v", err)
	}
	if result.Files != 1 {
		t.Errorf("expected 1 file, got %d", result.Files)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Kind != WarnUnreadableDir {
		t.Errorf("unexpected warnings %v", result.Warnings)
	}
}

func TestScanner_Deterministic(t *testing.T) {
	tmpDir := t.TempDir()
	for i, name := range []string{"z.go", "a.go", "m/b.go", "m/a.go", "B.go", "k/j/i.go"} {
		writeLines(t, tmpDir, name, i+1)
	}

	opts := Options{Extensions: []string{".go"}, Workers: 4}
	first, err := New(tmpDir, opts).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := New(tmpDir, opts).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	tree.Aggregate(first.Root)
	tree.Aggregate(second.Root)

	if !reflect.DeepEqual(first.Root, second.Root) {
		t.Error("two scans of the same tree differ")
	}
	want := []string{".", "B.go", "a.go", "k", "k/j", "k/j/i.go", "m", "m/a.go", "m/b.go", "z.go"}
	if got := paths(first.Root); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestScanner_RootErrors(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "file.go")
	writeLines(t, tmpDir, "file.go", 1)

	if _, err := New(file, Options{}).Scan(context.Background()); err == nil {
		t.Error("expected error when root is a file")
	}
	if _, err := New(filepath.Join(tmpDir, "missing"), Options{}).Scan(context.Background()); err == nil {
		t.Error("expected error when root does not exist")
	}
}

func TestScanner_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()
	writeLines(t, tmpDir, "main.go", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(tmpDir, Options{Extensions: []string{".go"}}).Scan(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Root == nil {
		t.Fatal("expected a partial result")
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"single newline", "\n", 1},
		{"trailing newline", "a\nb\n", 2},
		{"no trailing newline", "a\nb", 2},
		{"single partial line", "package main", 1},
		{"crlf", "a\r\nb\r\n", 2},
		{"blank lines", "\n\n\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "f.txt")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			got, err := CountLines(path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("CountLines(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}

func TestCountLines_LargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.go")
	content := strings.Repeat("0123456789\n", 20000) + "tail"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := CountLines(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != 20001 {
		t.Errorf("expected 20001 lines, got %d", got)
	}
}

func TestCountLines_Errors(t *testing.T) {
	if _, err := CountLines(filepath.Join(t.TempDir(), "missing.go")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bin.go")
	if err := os.WriteFile(path, []byte{0x7f, 'E', 'L', 'F', 0}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := CountLines(path); !errors.Is(err, ErrBinary) {
		t.Errorf("expected ErrBinary, got %v", err)
	}
}
