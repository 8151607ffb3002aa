package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/form"
	"github.com/vanderheijden86/prsconf/pkg/journal"
	"github.com/vanderheijden86/prsconf/pkg/model"
)

// Selection is the node an action applies to.
type Selection struct {
	NodeID string
	Kind   model.EntityKind
	IsRoot bool
}

// Collection is the REST collection of the selected node.
func (s Selection) Collection() string {
	if s.IsRoot {
		return s.NodeID
	}
	return s.Kind.Collection()
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.NodeID == "" }

// createdMsg reports a finished creation. linkErr is set when the entity
// exists but could not be attached to a data storage.
type createdMsg struct {
	parent  Selection
	node    model.TreeNode
	err     error
	linkErr error
}

type savedMsg struct {
	entityID string
	request  api.UpdateRequest
	sent     form.Snapshot
	err      error
}

type deletedMsg struct {
	target Selection
	err    error
}

type dataWrittenMsg struct {
	tagID string
	err   error
}

// EntityWriter turns create, update, delete and data-write actions into
// commands and records each outcome in the journal.
type EntityWriter struct {
	backend Backend
	journal Recorder
	log     logrus.FieldLogger
}

// NewEntityWriter creates a writer. rec may be nil.
func NewEntityWriter(b Backend, rec Recorder, log logrus.FieldLogger) *EntityWriter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EntityWriter{backend: b, journal: rec, log: log}
}

// Create adds an empty entity of kind under parent, reads back its name and
// links tags and alerts to the data storage.
func (w *EntityWriter) Create(parent Selection, kind model.EntityKind) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		collection := kind.Collection()
		req := api.NewCreateRequest(parent.NodeID)

		id, err := w.backend.Create(ctx, collection, req)
		w.record(ctx, journal.ActionCreate, collection, id, req, err)
		if err != nil {
			return createdMsg{parent: parent, err: fmt.Errorf("create %s: %w", kind, err)}
		}

		e, err := w.backend.Get(ctx, collection, api.LabelQuery(id))
		if err != nil {
			return createdMsg{parent: parent, err: fmt.Errorf("read new %s %s: %w", kind, id, err)}
		}
		node := e.TreeNode()
		if node.ID == "" {
			node.ID = id
		}
		if !node.Kind.IsValid() {
			node.Kind = kind
			node.Icon = kind.Icon()
		}

		msg := createdMsg{parent: parent, node: node}
		if kind == model.KindTag || kind == model.KindAlert {
			msg.linkErr = w.backend.LinkDataStorage(ctx, kind, id)
			w.record(ctx, journal.ActionLink, "dataStorages", id, nil, msg.linkErr)
		}
		return msg
	}
}

// Update sends a partial update of the entity behind target. sent is
// handed back with the result so only those fields are marked saved.
func (w *EntityWriter) Update(target Selection, req api.UpdateRequest, sent form.Snapshot) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		err := w.backend.Update(ctx, target.Collection(), req)
		w.record(ctx, journal.ActionUpdate, target.Collection(), req.ID, req, err)
		return savedMsg{entityID: req.ID, request: req, sent: sent, err: err}
	}
}

// Delete removes the entity behind target.
func (w *EntityWriter) Delete(target Selection) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		err := w.backend.Delete(ctx, target.Collection(), target.NodeID)
		w.record(ctx, journal.ActionDelete, target.Collection(), target.NodeID, nil, err)
		return deletedMsg{target: target, err: err}
	}
}

// WriteData stores one value for a tag.
func (w *EntityWriter) WriteData(tagID string, value any) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		body := api.SingleValueWrite(tagID, value)
		err := w.backend.WriteData(ctx, body)
		w.record(ctx, journal.ActionWriteData, "data", tagID, body, err)
		return dataWrittenMsg{tagID: tagID, err: err}
	}
}

func (w *EntityWriter) record(ctx context.Context, action, collection, id string, payload any, opErr error) {
	if w.journal == nil {
		return
	}
	entry := &journal.Entry{Action: action, Collection: collection, EntityID: id}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			entry.Payload = string(data)
		}
	}
	if opErr != nil {
		entry.Outcome = journal.OutcomeError
		entry.Error = opErr.Error()
	}
	if err := w.journal.Record(ctx, entry); err != nil {
		w.log.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"id":     id,
		}).Warn("journal write failed")
	}
}
