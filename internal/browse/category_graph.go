// Package browse builds the category display tree from faceted category
// path counts.
package browse

import (
	"sort"
	"strings"
)

// Node is one node of the category display tree. Children stay sorted by id
// at all times.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Path     string  `json:"path,omitempty"`
	Count    int     `json:"count"`
	Children []*Node `json:"children,omitempty"`
}

// GraphBuilder assembles the tree from (path, name, count) triples arriving
// in arbitrary order. Insertion is permutation-invariant: any order of the
// same triples yields an identical tree.
type GraphBuilder struct {
	root      *Node
	separator string
}

// NewGraphBuilder creates a builder with an implicit root node.
func NewGraphBuilder(separator string) *GraphBuilder {
	return &GraphBuilder{root: &Node{}, separator: separator}
}

// Add inserts one category path with its display name and hit count. Path
// segments are node ids; intermediate nodes are created as needed and the
// leaf gets the name, count and full path.
func (b *GraphBuilder) Add(path, name string, count int) {
	segments := strings.Split(path, b.separator)
	current := b.root
	for _, segment := range segments {
		child := findChild(current, segment)
		if child == nil {
			child = &Node{ID: segment}
			current.Children = append(current.Children, child)
			// Fan-out per level is small; a full re-sort is fine.
			sort.Slice(current.Children, func(i, j int) bool {
				return current.Children[i].ID < current.Children[j].ID
			})
		}
		current = child
	}
	current.Name = name
	current.Path = path
	current.Count = count
}

// Root returns the implicit top node.
func (b *GraphBuilder) Root() *Node {
	return b.root
}

func findChild(parent *Node, id string) *Node {
	for _, child := range parent.Children {
		if child.ID == id {
			return child
		}
	}
	return nil
}
