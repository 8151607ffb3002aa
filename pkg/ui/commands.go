package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/attrs"
	"github.com/vanderheijden86/prsconf/pkg/config"
	"github.com/vanderheijden86/prsconf/pkg/journal"
	"github.com/vanderheijden86/prsconf/pkg/model"
)

// Backend is the part of the REST client the console needs.
type Backend interface {
	List(ctx context.Context, collection string, q api.Query) ([]model.Entity, error)
	Get(ctx context.Context, collection string, q api.Query) (model.Entity, error)
	Create(ctx context.Context, collection string, req api.CreateRequest) (string, error)
	Update(ctx context.Context, collection string, req api.UpdateRequest) error
	Delete(ctx context.Context, collection, id string) error
	LinkDataStorage(ctx context.Context, kind model.EntityKind, id string) error
	ReadData(ctx context.Context, q api.DataQuery) ([]model.TagData, error)
	WriteData(ctx context.Context, w api.DataWrite) error
}

// Recorder stores the outcome of changes.
type Recorder interface {
	Record(ctx context.Context, e *journal.Entry) error
}

// ConfigReloadedMsg carries a configuration re-read after the file changed.
type ConfigReloadedMsg struct {
	Config config.Config
	Err    error
}

type childrenLoadedMsg struct {
	nodeID     string
	generation uint64
	nodes      []model.TreeNode
	err        error
}

type entityLoadedMsg struct {
	seq           uint64
	kind          model.EntityKind
	entity        model.Entity
	candidates    []model.Entity
	err           error
	candidatesErr error
}

type tagDataMsg struct {
	tagID  string
	series []model.TagData
	err    error
}

// listChildrenCmd reads the direct children of a node.
func listChildrenCmd(b Backend, collection, nodeID string, generation uint64) tea.Cmd {
	return func() tea.Msg {
		entities, err := b.List(context.Background(), collection, api.ChildrenQuery(nodeID))
		msg := childrenLoadedMsg{nodeID: nodeID, generation: generation, err: err}
		for _, e := range entities {
			msg.nodes = append(msg.nodes, e.TreeNode())
		}
		return msg
	}
}

// loadEntityCmd reads the record behind a node. Methods also need every
// tag, alert and schedule that could initiate them; both requests run
// concurrently.
func loadEntityCmd(b Backend, seq uint64, kind model.EntityKind, collection, id string) tea.Cmd {
	return func() tea.Msg {
		msg := entityLoadedMsg{seq: seq, kind: kind}
		var g errgroup.Group
		g.Go(func() error {
			msg.entity, msg.err = b.Get(context.Background(), collection, api.EntityQuery(id, attrs.ReadAttributes))
			return nil
		})
		if kind == model.KindMethod {
			g.Go(func() error {
				msg.candidates, msg.candidatesErr = b.List(context.Background(),
					model.KindObject.Collection(), api.InitiatorCandidatesQuery())
				return nil
			})
		}
		_ = g.Wait()
		return msg
	}
}

// readDataCmd fetches recorded values of a tag.
func readDataCmd(b Backend, q api.DataQuery) tea.Cmd {
	return func() tea.Msg {
		series, err := b.ReadData(context.Background(), q)
		return tagDataMsg{tagID: q.TagID, series: series, err: err}
	}
}
