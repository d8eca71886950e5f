// Package output writes reports into the workspace directory.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrOutsideWorkspace is returned for paths that resolve outside the
	// workspace, including through symlinks.
	ErrOutsideWorkspace = errors.New("path is outside the workspace")

	// ErrExists is returned when the target exists and overwriting was not
	// requested.
	ErrExists = errors.New("file already exists")
)

// ValidatePath resolves path against workspace and checks that the result
// stays inside it. Relative paths are taken relative to the workspace.
// Symlinks are resolved for every existing component.
func ValidatePath(workspace, path string) (string, error) {
	if path == "" {
		return "", errors.New("empty output path")
	}

	root, err := realPath(workspace)
	if err != nil {
		return "", fmt.Errorf("resolving workspace %s: %w", workspace, err)
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	resolved, err := realPath(target)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w %s", path, ErrOutsideWorkspace, workspace)
	}
	return resolved, nil
}

// SaveReport writes report to path inside workspace with mode 0600 and
// returns the absolute path written. An existing file is replaced only
// when force is set.
func SaveReport(workspace, path, report string, force bool) (string, error) {
	target, err := ValidatePath(workspace, path)
	if err != nil {
		return "", err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(target, flags, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%s: %w, use --force to overwrite", target, ErrExists)
	}
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", target, err)
	}

	if _, err := f.WriteString(report); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", target, err)
	}
	return target, nil
}

// realPath is filepath.EvalSymlinks for paths whose trailing components may
// not exist yet: the deepest existing ancestor is resolved and the rest is
// appended unchanged.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	var missing []string
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			parts := append([]string{resolved}, missing...)
			return filepath.Join(parts...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = parent
	}
}
