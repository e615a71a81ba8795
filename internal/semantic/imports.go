package semantic

import (
	"fmt"
	"path/filepath"
	"sort"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/lexer"
	"ember/internal/parser"
	"ember/internal/stdlib"
)

// importModule loads the module named by imp and binds the requested
// exports into the importing module's scope. A module is read, parsed and
// checked once per absolute path; later imports reuse the cached scope.
func (c *Checker) importModule(m *module, imp *ast.Import) error {
	span := errors.SpanOf(imp)
	target, err := c.loadModule(m, imp.Path, span)
	if err != nil {
		return err
	}

	if imp.Names == nil {
		names := make([]string, 0, len(target.exports))
		for name := range target.exports {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := c.bindImport(m, target.exports[name], imp); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range imp.Names {
		name := &imp.Names[i]
		sym, ok := target.exports[name.Value]
		if !ok {
			return errors.MissingExport(name.Value, imp.Path, errors.SpanOf(name), exportNames(target))
		}
		if err := c.bindImport(m, sym, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) bindImport(m *module, sym *Symbol, at ast.Node) error {
	prev := m.scope.LookupLocal(sym.Name)
	if prev == sym {
		return nil
	}
	if prev != nil {
		return errors.New(errors.ErrorDuplicateDeclaration,
			fmt.Sprintf("import of '%s' conflicts with an earlier import", sym.Name), errors.SpanOf(at)).Build()
	}
	m.scope.Define(sym)
	return nil
}

func (c *Checker) loadModule(from *module, path string, span errors.Span) (*module, error) {
	resolved := ImportedPath(from.path, path)

	if cached, ok := c.modules[resolved]; ok {
		if cached.loading {
			return nil, errors.ImportCycle(path, span)
		}
		log.Debugf("reusing module %s", resolved)
		return cached, nil
	}

	log.Debugf("loading module %s", resolved)
	var source []byte
	if std := stdlib.GetModuleDefinition(resolved); std != nil {
		source = []byte(std.Source())
	} else {
		read, err := c.readFile(resolved)
		if err != nil {
			return nil, errors.ModuleNotFound(path, span, err)
		}
		source = read
	}

	tokens, lexErrors := lexer.ScanTokens(string(source), resolved)
	if len(lexErrors) > 0 {
		return nil, lexErrors[0]
	}
	prog, err := parser.Parse(resolved, tokens)
	if err != nil {
		return nil, err
	}
	prog.Path = resolved

	m := &module{
		path:    resolved,
		program: prog,
		scope:   NewScope(nil),
		exports: make(map[string]*Symbol),
		loading: true,
	}
	c.modules[resolved] = m
	if err := c.checkModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

func exportNames(m *module) []string {
	names := make([]string, 0, len(m.exports))
	for name := range m.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImportedPath returns the absolute path an import in the program at from
// resolves to. Standard module names are returned as they are.
func ImportedPath(from, path string) string {
	if stdlib.IsKnownModule(path) {
		return path
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
