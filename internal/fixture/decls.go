package fixture

import (
	"errors"
	"fmt"
	"strings"

	"rusttypes/internal/decl"
)

var errEmptyPath = errors.New("empty declaration path")

func splitPath(path string) ([]string, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), decl.Separator)
	if path == "" {
		return nil, errEmptyPath
	}
	parts := strings.Split(path, decl.Separator)
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty component in %q", path)
		}
	}
	return parts, nil
}

// declareNamespace creates every component of path as a namespace.
func declareNamespace(t *decl.Tree, path string) (decl.ContextID, error) {
	parts, err := splitPath(path)
	if err != nil {
		return decl.NoContextID, err
	}
	cur := t.Root()
	for _, p := range parts {
		if cur, err = t.GetOrCreateNamespace(cur, p); err != nil {
			return decl.NoContextID, err
		}
	}
	return cur, nil
}

// declarePath creates the namespaces leading to the last component and a
// declaration for it.
func declarePath(t *decl.Tree, path, mangled string) (decl.DeclID, error) {
	parts, err := splitPath(path)
	if err != nil {
		return decl.NoDeclID, err
	}
	parent := t.Root()
	if len(parts) > 1 {
		if parent, err = declareNamespace(t, strings.Join(parts[:len(parts)-1], decl.Separator)); err != nil {
			return decl.NoDeclID, err
		}
	}
	return t.GetOrCreateDecl(parent, parts[len(parts)-1], mangled)
}
