// Package scanner walks a repository, counts lines in files of the enabled
// languages and builds the folder/file tree.
package scanner

import (
	"fmt"

	"github.com/andywolf/loctreemap/internal/language"
	"github.com/andywolf/loctreemap/internal/tree"
)

// WarningKind categorizes a recoverable scan problem.
type WarningKind string

const (
	// WarnUnreadableFile is a file that could not be opened or read.
	WarnUnreadableFile WarningKind = "unreadable_file"
	// WarnBinaryFile is a file that looks binary and was counted as zero.
	WarnBinaryFile WarningKind = "binary_file"
	// WarnUnreadableDir is a directory that could not be listed.
	WarnUnreadableDir WarningKind = "unreadable_dir"
)

// Warning records a file or directory that was skipped. Warnings never
// abort a scan.
type Warning struct {
	Path    string      `json:"path"`
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Path, w.Message, w.Kind)
}

// Classifier resolves a file name to a language bucket.
type Classifier interface {
	ClassifyPath(name string) (language.Classification, bool)
}

// Options controls which files a scan includes.
type Options struct {
	// Extensions is the resolved set of extensions to include.
	Extensions []string
	// ScanEntireRepo disables the workspace scope pruning of dependency and
	// build output directories.
	ScanEntireRepo bool
	// IgnoreDotFolders prunes every directory whose name starts with ".".
	IgnoreDotFolders bool
	// Exclude holds doublestar patterns matched against root-relative paths.
	Exclude []string
	// Workers bounds concurrent line counting. Zero means one per CPU.
	Workers int
	// Classifier, when set, supplies file languages. Files it does not
	// recognize are excluded.
	Classifier Classifier
}

// Result is the outcome of a scan.
type Result struct {
	Root     *tree.Node `json:"root"`
	Warnings []Warning  `json:"warnings,omitempty"`
	// Files is the number of included files.
	Files int `json:"files"`
}

// Empty reports whether the scan found no files.
func (r *Result) Empty() bool {
	return r == nil || r.Root == nil || r.Files == 0
}
