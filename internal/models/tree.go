package models

// TreeNode is one canvas entry in the hierarchy.
type TreeNode struct {
	Name     string   `json:"name"`
	Parent   *string  `json:"parent"`
	Children []string `json:"children"`
}

// Tree is the canvas hierarchy: a forest of canvases. Every canvas id
// appears in exactly one parent's Children or in RootCanvases, never both.
type Tree struct {
	RootCanvases []string             `json:"rootCanvases"`
	Canvases     map[string]*TreeNode `json:"canvases"`
}

// Default ids for the bootstrap canvas.
const (
	MainCanvasID   = "main"
	MainCanvasName = "Main Canvas"
)

// DefaultTree returns the tree a fresh store starts with: a single root
// canvas named "Main Canvas".
func DefaultTree() *Tree {
	return &Tree{
		RootCanvases: []string{MainCanvasID},
		Canvases: map[string]*TreeNode{
			MainCanvasID: {Name: MainCanvasName, Children: []string{}},
		},
	}
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	cp := &Tree{
		RootCanvases: append([]string(nil), t.RootCanvases...),
		Canvases:     make(map[string]*TreeNode, len(t.Canvases)),
	}
	for id, n := range t.Canvases {
		node := &TreeNode{
			Name:     n.Name,
			Children: append([]string(nil), n.Children...),
		}
		if n.Parent != nil {
			p := *n.Parent
			node.Parent = &p
		}
		cp.Canvases[id] = node
	}
	return cp
}
