// Package mod finds module source files
// and orders modules by their dependencies.
package mod

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eaburns/borf/ast"
)

// Ext is the extension of Borf source files.
const Ext = ".borf"

// SrcFiles returns the Borf source files at srcPath in alphabetical order.
// srcPath may be either a .borf source file or a directory of .borf source files.
// A file is returned regardless of its extension.
func SrcFiles(srcPath string) ([]string, error) {
	srcPath, err := realPath(srcPath)
	if err != nil {
		return nil, err
	}
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return nil, err
	}
	defer srcFile.Close()
	stat, err := srcFile.Stat()
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return []string{srcPath}, nil
	}
	finfos, err := srcFile.Readdir(-1)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, finfo := range finfos {
		if finfo.IsDir() || !strings.HasSuffix(finfo.Name(), Ext) {
			continue
		}
		paths = append(paths, filepath.Join(srcPath, finfo.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func realPath(dir string) (string, error) {
	switch dir {
	case string([]rune{filepath.Separator}):
		return dir, nil
	case ".":
		return os.Getwd()
	default:
		base := filepath.Base(dir)
		dir, err := realPath(filepath.Dir(dir))
		if err != nil {
			return "", err
		}
		switch base {
		case ".":
			return dir, nil
		case "..":
			return filepath.Dir(dir), nil
		default:
			return filepath.Join(dir, base), nil
		}
	}
}

// A Mod is a module and the modules that it depends on.
type Mod struct {
	Module *ast.Module
	// Deps are the modules named by the Module's dependency imports,
	// in alphabetical order on name.
	// Imports of unknown modules are not included.
	Deps []*Mod
}

// Order returns the modules in topologically sorted order,
// with dependencies before their dependants.
// Modules with no ordering constraint keep their relative order.
// It is an error if the dependencies form a cycle.
func Order(mods []*ast.Module) ([]*ast.Module, error) {
	ms := link(mods)
	var sorted []*ast.Module
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Mod]int)
	var path []*Mod
	var add func(*Mod) error
	add = func(m *Mod) error {
		switch state[m] {
		case done:
			return nil
		case visiting:
			return cycleError(path, m)
		}
		state[m] = visiting
		path = append(path, m)
		for _, d := range m.Deps {
			if err := add(d); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[m] = done
		sorted = append(sorted, m.Module)
		return nil
	}
	for _, m := range ms {
		if err := add(m); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// link returns a Mod for each module, with Deps set.
func link(mods []*ast.Module) []*Mod {
	ms := make([]*Mod, len(mods))
	byName := make(map[string][]*Mod)
	for i, m := range mods {
		ms[i] = &Mod{Module: m}
		byName[m.Name] = append(byName[m.Name], ms[i])
	}
	for _, m := range ms {
		for _, name := range imports(m.Module) {
			for _, d := range byName[name] {
				if d != m {
					m.Deps = append(m.Deps, d)
				}
			}
		}
	}
	return ms
}

// imports returns the sorted, unique names
// imported by the module's dependency declarations.
func imports(m *ast.Module) []string {
	var deps []string
	for _, d := range m.Decls {
		if dep, ok := d.(*ast.DepDecl); ok && dep.Import != m.Name {
			deps = append(deps, dep.Import)
		}
	}
	sort.Strings(deps)
	var i int
	for _, d := range deps {
		if i == 0 || d != deps[i-1] {
			deps[i] = d
			i++
		}
	}
	return deps[:i]
}

func cycleError(path []*Mod, m *Mod) error {
	var names []string
	for i := len(path) - 1; i >= 0; i-- {
		names = append(names, "@"+path[i].Module.Name)
		if path[i] == m {
			break
		}
	}
	// names is reversed; put it in dependency order starting from m.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return fmt.Errorf("dependency cycle: %s -> @%s", strings.Join(names, " -> "), m.Module.Name)
}
