package api

import (
	"github.com/vanderheijden86/prsconf/pkg/model"
)

// Query is the JSON document passed in the q parameter of listing requests.
type Query struct {
	ID         string              `json:"id,omitempty"`
	Base       *string             `json:"base,omitempty"`
	Deref      *bool               `json:"deref,omitempty"`
	Scope      int                 `json:"scope,omitempty"`
	Filter     map[string][]string `json:"filter,omitempty"`
	Attributes []string            `json:"attributes,omitempty"`
	Hierarchy  bool                `json:"hierarchy,omitempty"`
	GetParent  bool                `json:"getParent,omitempty"`
}

// labelAttributes is what the tree needs to render a node.
var labelAttributes = []string{"cn", "objectClass"}

func stringPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// ChildrenQuery lists the direct children of a node. Root nodes list the
// top of their collection.
func ChildrenQuery(parentID string) Query {
	base := parentID
	if model.IsRootID(parentID) {
		base = ""
	}
	return Query{
		Base:       stringPtr(base),
		Attributes: labelAttributes,
		Filter:     map[string][]string{"objectClass": model.ObjectClasses()},
		Scope:      1,
		Hierarchy:  true,
	}
}

// EntityQuery reads the given attributes of a single entity together with
// its parent id.
func EntityQuery(id string, attributes []string) Query {
	return Query{
		ID:         id,
		Attributes: attributes,
		GetParent:  true,
	}
}

// LabelQuery reads just the name and class of a freshly created entity.
func LabelQuery(id string) Query {
	return Query{ID: id, Attributes: labelAttributes}
}

// InitiatorCandidatesQuery lists every tag, alert and schedule that can
// trigger a method.
func InitiatorCandidatesQuery() Query {
	return Query{
		Base:  stringPtr("prs"),
		Deref: boolPtr(false),
		Scope: 2,
		Filter: map[string][]string{"objectClass": {
			model.KindTag.ObjectClass(),
			model.KindAlert.ObjectClass(),
			model.KindSchedule.ObjectClass(),
		}},
		Attributes: labelAttributes,
	}
}

// DataStorageQuery lists data storages by name.
func DataStorageQuery() Query {
	return Query{Base: stringPtr(""), Attributes: []string{"cn"}}
}

// CreateRequest is the body of a POST. ParentID is omitted for entities
// created directly under a root.
type CreateRequest struct {
	Attributes map[string]any `json:"attributes"`
	ParentID   string         `json:"parentId,omitempty"`
}

// NewCreateRequest builds an empty-attribute creation under parentID.
func NewCreateRequest(parentID string) CreateRequest {
	req := CreateRequest{Attributes: map[string]any{}}
	if !model.IsRootID(parentID) {
		req.ParentID = parentID
	}
	return req
}

// UpdateRequest is the body of a PUT. InitiatedBy is only sent for methods,
// where an empty list clears every link.
type UpdateRequest struct {
	ID          string         `json:"id"`
	Attributes  map[string]any `json:"attributes"`
	InitiatedBy *[]string      `json:"initiatedBy,omitempty"`
}

// NewLabel returns the new name when the update renames the entity.
func (r UpdateRequest) NewLabel() (string, bool) {
	v, ok := r.Attributes["cn"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

type deleteRequest struct {
	ID string `json:"id"`
}

type createResponse struct {
	ID string `json:"id"`
}

type listResponse struct {
	Data []model.Entity `json:"data"`
}

// TagLink and AlertLink attach entities to a data storage.
type TagLink struct {
	TagID string `json:"tagId"`
}

type AlertLink struct {
	AlertID string `json:"alertId"`
}

type dataStorageLinkRequest struct {
	ID         string      `json:"id"`
	LinkTags   []TagLink   `json:"linkTags,omitempty"`
	LinkAlerts []AlertLink `json:"linkAlerts,omitempty"`
}

// DataQuery reads recorded values of a tag.
type DataQuery struct {
	TagID  string `json:"tagId"`
	Format bool   `json:"format,omitempty"`
	Actual bool   `json:"actual,omitempty"`
}

// DataWrite stores values; each series row is [value].
type DataWrite struct {
	Data []model.TagData `json:"data"`
}

// SingleValueWrite builds the write body for one value of one tag.
func SingleValueWrite(tagID string, value any) DataWrite {
	return DataWrite{Data: []model.TagData{{TagID: tagID, Data: [][]any{{value}}}}}
}

type dataResponse struct {
	Data []model.TagData `json:"data"`
}
