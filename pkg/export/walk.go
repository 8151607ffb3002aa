// Package export dumps a configuration subtree read from the backend as
// Markdown, JSON or YAML.
package export

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/model"
)

// Lister lists the children of a node.
type Lister interface {
	List(ctx context.Context, collection string, q api.Query) ([]model.Entity, error)
}

// Node is one entity of an exported subtree.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Kind     string  `json:"kind" yaml:"kind"`
	Label    string  `json:"label" yaml:"label"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	kind model.EntityKind
	root bool
}

// Options bounds a walk.
type Options struct {
	// MaxDepth stops descending below this many levels; zero means no limit.
	MaxDepth int
	// Concurrency caps parallel listings; zero means 4.
	Concurrency int
}

// RootNode returns the export root for one of the top-level ids.
func RootNode(id string) (*Node, error) {
	for _, r := range model.RootNodes() {
		if r.ID == id {
			return &Node{ID: r.ID, Kind: r.Kind.String(), Label: r.Label, kind: r.Kind, root: true}, nil
		}
	}
	return nil, fmt.Errorf("unknown root %q", id)
}

// EntityNode returns an export root for an entity that is not top-level.
func EntityNode(id string, kind model.EntityKind, label string) *Node {
	return &Node{ID: id, Kind: kind.String(), Label: label, kind: kind}
}

func (n *Node) collection() string {
	if n.root {
		return n.ID
	}
	return n.kind.Collection()
}

// Walk fills in the subtree under root one level at a time, listing the
// nodes of a level concurrently. An id seen twice is not descended into
// again.
func Walk(ctx context.Context, l Lister, root *Node, opts Options) error {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}
	seen := map[string]bool{root.ID: true}
	level := []*Node{root}

	for depth := 0; len(level) > 0; depth++ {
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return nil
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		var mu sync.Mutex
		for _, n := range level {
			g.Go(func() error {
				entities, err := l.List(gctx, n.collection(), api.ChildrenQuery(n.ID))
				if err != nil {
					return fmt.Errorf("list children of %s: %w", n.ID, err)
				}
				children := make([]*Node, 0, len(entities))
				for _, e := range entities {
					kind := e.Kind()
					if e.ID == "" || !kind.IsValid() {
						continue
					}
					children = append(children, &Node{ID: e.ID, Kind: kind.String(), Label: e.Label(), kind: kind})
				}
				sortNodes(children)
				mu.Lock()
				n.Children = children
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var next []*Node
		for _, n := range level {
			for _, c := range n.Children {
				if seen[c.ID] {
					continue
				}
				seen[c.ID] = true
				next = append(next, c)
			}
		}
		level = next
	}
	return nil
}

// sortNodes orders siblings the way the console tree does.
func sortNodes(nodes []*Node) {
	model.SortSiblings(nodes,
		func(n *Node) model.EntityKind { return n.kind },
		func(n *Node) string { return n.Label })
}

// Count returns how many nodes of each kind the subtree holds, the root
// excluded.
func Count(root *Node) map[string]int {
	out := make(map[string]int)
	var visit func(n *Node)
	visit = func(n *Node) {
		for _, c := range n.Children {
			out[c.Kind]++
			visit(c)
		}
	}
	visit(root)
	return out
}
