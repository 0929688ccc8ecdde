package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/andywolf/loctreemap/internal/language"
	"github.com/andywolf/loctreemap/internal/tree"
)

// Directories outside the workspace scope: dependency caches and build
// output. Only pruned when ScanEntireRepo is false.
var outOfScopeDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"bin":          true,
	"obj":          true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
}

// Scanner walks a repository and builds a line-counted tree.
type Scanner struct {
	rootDir    string
	opts       Options
	extensions map[string]bool
}

type countJob struct {
	node *tree.Node
	abs  string
}

// New creates a new Scanner for the given root directory.
func New(rootDir string, opts Options) *Scanner {
	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if ext = language.NormalizeExtension(ext); ext != "" {
			exts[ext] = true
		}
	}
	return &Scanner{rootDir: rootDir, opts: opts, extensions: exts}
}

// Scan walks the tree under the root and counts lines of every included
// file. Unreadable files and directories become warnings. If ctx is
// cancelled the partial tree scanned so far is returned along with the
// context error.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	abs, err := filepath.Abs(s.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", s.rootDir, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", s.rootDir)
	}
	for _, pattern := range s.opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	w := &walker{Scanner: s}
	root := tree.NewFolder(filepath.Base(abs), tree.RootPath, 0)
	walkErr := w.walk(ctx, root, abs)

	countErr := s.countAll(ctx, w)

	sort.SliceStable(w.warnings, func(i, j int) bool {
		return w.warnings[i].Path < w.warnings[j].Path
	})

	dropSkipped(root, w.skipped)
	tree.Prune(root)
	result := &Result{
		Root:     root,
		Warnings: w.warnings,
		Files:    len(tree.Files(root)),
	}

	if walkErr != nil {
		return result, walkErr
	}
	return result, countErr
}

type walker struct {
	*Scanner
	jobs     []countJob
	mu       sync.Mutex
	warnings []Warning
	skipped  map[*tree.Node]bool
}

func (w *walker) warn(path string, kind WarningKind, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warnings = append(w.warnings, Warning{Path: path, Kind: kind, Message: msg})
}

func (w *walker) skip(n *tree.Node, kind WarningKind, msg string) {
	w.warn(n.Path, kind, msg)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.skipped == nil {
		w.skipped = make(map[*tree.Node]bool)
	}
	w.skipped[n] = true
}

// dropSkipped removes files that could not be counted.
func dropSkipped(n *tree.Node, skipped map[*tree.Node]bool) {
	if len(skipped) == 0 || n.Kind == tree.KindFile {
		return
	}
	kept := n.Children[:0]
	for _, c := range n.Children {
		if skipped[c] {
			continue
		}
		dropSkipped(c, skipped)
		kept = append(kept, c)
	}
	n.Children = kept
}

// walk fills dir with the included entries of absDir. os.ReadDir returns
// entries sorted by name, which fixes child order.
func (w *walker) walk(ctx context.Context, dir *tree.Node, absDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		w.warn(dir.Path, WarnUnreadableDir, err.Error())
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		rel := tree.ChildPath(dir.Path, name)
		abs := filepath.Join(absDir, name)

		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(abs)
			if err != nil {
				continue
			}
			// Linked directories are not followed.
			if target.IsDir() {
				continue
			}
		}

		if w.excluded(rel) {
			continue
		}

		if isDir {
			if w.prune(name) {
				continue
			}
			child := tree.NewFolder(name, rel, dir.Depth+1)
			if err := w.walk(ctx, child, abs); err != nil {
				dir.Children = append(dir.Children, child)
				return err
			}
			dir.Children = append(dir.Children, child)
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !w.extensions[ext] {
			continue
		}
		lang := ""
		if w.opts.Classifier != nil {
			class, ok := w.opts.Classifier.ClassifyPath(name)
			if !ok {
				continue
			}
			lang = class.Language
		}

		file := tree.NewFile(name, rel, lang, 0, dir.Depth+1)
		dir.Children = append(dir.Children, file)
		w.jobs = append(w.jobs, countJob{node: file, abs: abs})
	}
	return nil
}

func (w *walker) prune(name string) bool {
	if w.opts.IgnoreDotFolders && strings.HasPrefix(name, ".") {
		return true
	}
	return !w.opts.ScanEntireRepo && outOfScopeDirs[name]
}

func (w *walker) excluded(rel string) bool {
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// countAll measures every collected file. Each job writes only its own
// node, so sibling reads can run concurrently.
func (s *Scanner) countAll(ctx context.Context, w *walker) error {
	workers := s.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, job := range w.jobs {
		job := job
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines, err := CountLines(job.abs)
			switch {
			case errors.Is(err, ErrBinary):
				w.skip(job.node, WarnBinaryFile, "binary content")
			case err != nil:
				w.skip(job.node, WarnUnreadableFile, err.Error())
			default:
				job.node.LineCount = lines
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
