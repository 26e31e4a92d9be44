// Package tree maintains the canvas hierarchy: a forest of named
// canvases with parent/child edges. Every mutation preserves the forest
// shape; cycle or dangling-parent attempts fail with ErrInvalidTreeEdit
// and leave the tree unchanged.
package tree

import (
	"fmt"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
)

// Model wraps a models.Tree with mutation operations.
type Model struct {
	t *models.Tree
}

// New wraps an existing tree. A nil tree starts from the default.
func New(t *models.Tree) *Model {
	if t == nil {
		t = models.DefaultTree()
	}
	if t.Canvases == nil {
		t.Canvases = map[string]*models.TreeNode{}
	}
	return &Model{t: t}
}

// Tree returns the underlying tree document.
func (m *Model) Tree() *models.Tree { return m.t }

// Node returns the node for a canvas id, or nil.
func (m *Model) Node(id string) *models.TreeNode { return m.t.Canvases[id] }

// AddCanvas registers a canvas under parentID, or as a root when parentID
// is nil.
func (m *Model) AddCanvas(id string, parentID *string, name string) error {
	if id == "" {
		return fmt.Errorf("tree: add: missing id: %w", apperr.ErrInvalidInput)
	}
	if _, exists := m.t.Canvases[id]; exists {
		return fmt.Errorf("tree: add %s: %w", id, apperr.ErrAlreadyExists)
	}
	if parentID != nil {
		parent, ok := m.t.Canvases[*parentID]
		if !ok {
			return fmt.Errorf("tree: add %s under missing parent %s: %w", id, *parentID, apperr.ErrInvalidTreeEdit)
		}
		parent.Children = append(parent.Children, id)
		p := *parentID
		m.t.Canvases[id] = &models.TreeNode{Name: name, Parent: &p, Children: []string{}}
		return nil
	}
	m.t.RootCanvases = append(m.t.RootCanvases, id)
	m.t.Canvases[id] = &models.TreeNode{Name: name, Children: []string{}}
	return nil
}

// RemoveCanvas deletes a canvas node and re-parents its children to the
// removed node's parent, or promotes them to roots.
func (m *Model) RemoveCanvas(id string) error {
	node, ok := m.t.Canvases[id]
	if !ok {
		return fmt.Errorf("tree: remove %s: %w", id, apperr.ErrNotFound)
	}
	children := append([]string(nil), node.Children...)
	if node.Parent != nil {
		parent := m.t.Canvases[*node.Parent]
		if parent != nil {
			parent.Children = removeString(parent.Children, id)
			parent.Children = append(parent.Children, children...)
		}
		for _, cid := range children {
			if c := m.t.Canvases[cid]; c != nil {
				p := *node.Parent
				c.Parent = &p
			}
		}
	} else {
		m.t.RootCanvases = removeString(m.t.RootCanvases, id)
		m.t.RootCanvases = append(m.t.RootCanvases, children...)
		for _, cid := range children {
			if c := m.t.Canvases[cid]; c != nil {
				c.Parent = nil
			}
		}
	}
	delete(m.t.Canvases, id)
	return nil
}

// Move re-parents a canvas. A nil newParent makes it a root. Moving a
// canvas under itself or one of its descendants is refused.
func (m *Model) Move(id string, newParent *string) error {
	node, ok := m.t.Canvases[id]
	if !ok {
		return fmt.Errorf("tree: move %s: %w", id, apperr.ErrNotFound)
	}
	if newParent != nil {
		if *newParent == id {
			return fmt.Errorf("tree: move %s under itself: %w", id, apperr.ErrInvalidTreeEdit)
		}
		if _, ok := m.t.Canvases[*newParent]; !ok {
			return fmt.Errorf("tree: move %s under missing parent %s: %w", id, *newParent, apperr.ErrInvalidTreeEdit)
		}
		if m.isDescendant(*newParent, id) {
			return fmt.Errorf("tree: move %s under its descendant %s: %w", id, *newParent, apperr.ErrInvalidTreeEdit)
		}
	}

	// Detach from the current parent or the root list.
	if node.Parent != nil {
		if parent := m.t.Canvases[*node.Parent]; parent != nil {
			parent.Children = removeString(parent.Children, id)
		}
	} else {
		m.t.RootCanvases = removeString(m.t.RootCanvases, id)
	}

	if newParent != nil {
		parent := m.t.Canvases[*newParent]
		parent.Children = append(parent.Children, id)
		p := *newParent
		node.Parent = &p
	} else {
		m.t.RootCanvases = append(m.t.RootCanvases, id)
		node.Parent = nil
	}
	return nil
}

// Rename changes a canvas's display name.
func (m *Model) Rename(id, name string) error {
	node, ok := m.t.Canvases[id]
	if !ok {
		return fmt.Errorf("tree: rename %s: %w", id, apperr.ErrNotFound)
	}
	node.Name = name
	return nil
}

// PathTo returns the ordered canvas ids from the root down to id,
// inclusive. Breadcrumbs are derived from this.
func (m *Model) PathTo(id string) ([]string, error) {
	if _, ok := m.t.Canvases[id]; !ok {
		return nil, fmt.Errorf("tree: path to %s: %w", id, apperr.ErrNotFound)
	}
	var path []string
	seen := map[string]struct{}{}
	for cur := &id; cur != nil; {
		if _, dup := seen[*cur]; dup {
			return nil, fmt.Errorf("tree: cycle at %s: %w", *cur, apperr.ErrInvariant)
		}
		seen[*cur] = struct{}{}
		path = append([]string{*cur}, path...)
		node := m.t.Canvases[*cur]
		if node == nil {
			break
		}
		cur = node.Parent
	}
	return path, nil
}

// isDescendant reports whether candidate sits in the subtree rooted at
// ancestor.
func (m *Model) isDescendant(candidate, ancestor string) bool {
	node := m.t.Canvases[candidate]
	seen := map[string]struct{}{}
	for node != nil && node.Parent != nil {
		if _, dup := seen[*node.Parent]; dup {
			return false
		}
		seen[*node.Parent] = struct{}{}
		if *node.Parent == ancestor {
			return true
		}
		node = m.t.Canvases[*node.Parent]
	}
	return false
}

// Validate checks the forest invariant: every id appears in exactly one of
// the root list or exactly one children list, and parent edges are acyclic.
func (m *Model) Validate() error {
	owner := map[string]int{}
	for _, id := range m.t.RootCanvases {
		owner[id]++
	}
	for pid, node := range m.t.Canvases {
		for _, cid := range node.Children {
			owner[cid]++
			child := m.t.Canvases[cid]
			if child == nil || child.Parent == nil || *child.Parent != pid {
				return fmt.Errorf("tree: child %s of %s has inconsistent parent: %w", cid, pid, apperr.ErrInvariant)
			}
		}
	}
	for id := range m.t.Canvases {
		if owner[id] != 1 {
			return fmt.Errorf("tree: id %s owned %d times: %w", id, owner[id], apperr.ErrInvariant)
		}
		if _, err := m.PathTo(id); err != nil {
			return err
		}
	}
	return nil
}

func removeString(ss []string, v string) []string {
	for i, s := range ss {
		if s == v {
			return append(ss[:i], ss[i+1:]...)
		}
	}
	return ss
}
