package decl

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Validate walks the arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Tree) Validate() error {
	var errs []error

	for idx := 1; idx < len(t.contexts); idx++ {
		id, err := toContextID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c := t.contexts[idx]
		if id != t.root && !c.Parent.IsValid() {
			errs = append(errs, fmt.Errorf("context %d has no parent", id))
		}
		if c.Parent.IsValid() && (int(c.Parent) >= len(t.contexts) || c.Parent == id) {
			errs = append(errs, fmt.Errorf("context %d has invalid parent %d", id, c.Parent))
		}
		for key, it := range c.Items {
			switch it.Kind {
			case ItemNamespace:
				child := t.ctx(it.Context)
				if child == nil {
					errs = append(errs, fmt.Errorf("context %d lists missing namespace %d", id, it.Context))
					continue
				}
				if child.Parent != id {
					errs = append(errs, fmt.Errorf("context %d child %d missing parent backlink", id, it.Context))
				}
				if child.Name != key {
					errs = append(errs, fmt.Errorf("context %d child %d indexed under a stale name", id, it.Context))
				}
			case ItemDecl:
				d := t.decl(it.Decl)
				if d == nil {
					errs = append(errs, fmt.Errorf("context %d lists missing decl %d", id, it.Decl))
					continue
				}
				if d.Parent != id || d.Name != key {
					errs = append(errs, fmt.Errorf("context %d decl %d has inconsistent backlink", id, it.Decl))
				}
			default:
				errs = append(errs, fmt.Errorf("context %d holds an item of invalid kind", id))
			}
		}
	}

	for idx := 1; idx < len(t.decls); idx++ {
		d := t.decls[idx]
		if t.ctx(d.Parent) == nil {
			errs = append(errs, fmt.Errorf("decl %d has invalid parent %d", idx, d.Parent))
		}
	}

	return errors.Join(errs...)
}

func toContextID(idx int) (ContextID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoContextID, fmt.Errorf("context index %d overflows: %w", idx, err)
	}
	return ContextID(value), nil
}
