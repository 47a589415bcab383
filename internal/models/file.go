package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileDescriptor describes a file chosen for a slot.
// It is immutable once chosen; picking another file replaces it wholesale.
type FileDescriptor struct {
	Name string // base name as shown to the user and sent as the part filename
	Path string // local path the contents are read from at submit time
	Size int64  // size in bytes
}

// Extension returns the lower-cased text after the last '.' with a leading dot.
// A name without a dot yields the whole name, e.g. "README" -> ".readme".
func (f FileDescriptor) Extension() string {
	name := f.Name
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return "." + strings.ToLower(name)
}

// DescribeFile stats a local path and returns its descriptor.
func DescribeFile(path string) (*FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a file", path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}

	return &FileDescriptor{
		Name: info.Name(),
		Path: absPath,
		Size: info.Size(),
	}, nil
}

// Slot is one file-selection unit on the form, numbered from 1.
type Slot struct {
	Index     int
	File      *FileDescriptor // nil when nothing is selected
	SizeLabel string
}

// HasFile reports whether the slot holds a selection.
func (s Slot) HasFile() bool {
	return s.File != nil
}
