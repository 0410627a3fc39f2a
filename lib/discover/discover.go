// Package discover finds component folders and produces their registration
// calls.
//
// A component folder is an immediate subdirectory name/ of the component
// directory that holds name.html, and optionally name.css:
//
//	components/
//	  card/card.html
//	  card/card.css
//	  badge/badge.html
//
// With prefix "x-" this yields:
//
//	define('x-badge', 'components/badge/badge.html', null);
//	define('x-card', 'components/card/card.html', 'components/card/card.css');
//
// The output file is read back with Load, which evaluates it as Starlark, so
// it can be generated at build time and consumed at startup.
package discover

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pthm/toast"
	"go.starlark.net/starlark"
)

// Entry is one discovered component. StylesheetPath is empty when the
// folder has no stylesheet.
type Entry struct {
	Tag            string
	TemplatePath   string
	StylesheetPath string
}

// Scan lists the component folders directly under dir in fsys, sorted by
// folder name. Paths in the result are relative to the root of fsys and
// always use forward slashes.
func Scan(fsys fs.FS, dir, prefix string) ([]Entry, error) {
	dir = path.Clean(filepath.ToSlash(dir))
	dirents, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		name := d.Name()
		tpl := path.Join(dir, name, name+".html")
		if !exists(fsys, tpl) {
			continue
		}
		e := Entry{Tag: prefix + name, TemplatePath: tpl}
		if css := path.Join(dir, name, name+".css"); exists(fsys, css) {
			e.StylesheetPath = css
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func exists(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

// Render produces the registration calls for entries, one per line.
func Render(entries []Entry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		css := "null"
		if e.StylesheetPath != "" {
			css = quote(e.StylesheetPath)
		}
		fmt.Fprintf(&buf, "define(%s, %s, %s);\n", quote(e.Tag), quote(e.TemplatePath), css)
	}
	return buf.Bytes()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// Write writes the registration calls to file, creating its directory. With
// dryRun nothing is written.
func Write(file string, entries []Entry, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, Render(entries), 0o644)
}

// Load evaluates a file produced by Render and returns its entries in order.
func Load(r io.Reader, filename string) ([]Entry, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	define := starlark.NewBuiltin("define", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var tag, tpl string
		var css starlark.Value = starlark.None
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &tag, &tpl, &css); err != nil {
			return nil, err
		}
		e := Entry{Tag: tag, TemplatePath: tpl}
		if css != starlark.None {
			s, ok := starlark.AsString(css)
			if !ok {
				return nil, fmt.Errorf("define: stylesheet for %s must be a string or null, got %s", tag, css.Type())
			}
			e.StylesheetPath = s
		}
		entries = append(entries, e)
		return starlark.None, nil
	})

	thread := &starlark.Thread{Name: filename}
	predeclared := starlark.StringDict{
		"define": define,
		"null":   starlark.None,
	}
	if _, err := starlark.ExecFile(thread, filename, src, predeclared); err != nil {
		return nil, err
	}
	return entries, nil
}

// Register defines every entry in reg. It stops at the first failure.
func Register(reg *toast.Registry, entries []Entry) error {
	for _, e := range entries {
		if err := reg.Define(e.Tag, e.TemplatePath, e.StylesheetPath); err != nil {
			return fmt.Errorf("define %s: %w", e.Tag, err)
		}
	}
	return nil
}

// ErrNoComponents is returned by Discover when the directory holds no
// component folders.
var ErrNoComponents = errors.New("discover: no component folders found")

// Discover scans dir and registers what it finds.
func Discover(reg *toast.Registry, fsys fs.FS, dir, prefix string) ([]Entry, error) {
	entries, err := Scan(fsys, dir, prefix)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoComponents
	}
	return entries, Register(reg, entries)
}
