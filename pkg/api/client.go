// Package api is the HTTP client for the configuration backend's REST
// surface: one collection per entity kind under /v1/, plus data storages and
// tag data.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/prsconf/pkg/model"
)

const (
	dataStoragesCollection = "dataStorages"
	dataCollection         = "data"
)

// maxErrorBody bounds how much of a failed response is kept in StatusError.
const maxErrorBody = 512

// Client talks to <base><prefix>/v1/<collection>/.
type Client struct {
	base    string
	http    *http.Client
	log     logrus.FieldLogger
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout bounds each request. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for baseURL, e.g. "http://localhost:8002" or
// "http://grafana:3000/api/plugins/prs/resources" with a prefix already
// appended.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse api url %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: http.DefaultClient,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) collectionURL(collection string) string {
	return c.base + "/v1/" + collection + "/"
}

// QueryURL renders the GET URL for a listing query.
func (c *Client) QueryURL(collection string, q any) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", errors.Wrap(err, "encode query")
	}
	return c.collectionURL(collection) + "?q=" + url.QueryEscape(string(data)), nil
}

// DataQueryURL is the address of a tag's recorded values, shown in the tag
// data panel so it can be opened elsewhere.
func (c *Client) DataQueryURL(q DataQuery) (string, error) {
	return c.QueryURL(dataCollection, q)
}

// List runs a listing query against collection.
func (c *Client) List(ctx context.Context, collection string, q Query) ([]model.Entity, error) {
	target, err := c.QueryURL(collection, q)
	if err != nil {
		return nil, err
	}
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, target, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Get reads attributes of one entity. It returns ErrDataAbsent when the
// backend knows no such entity.
func (c *Client) Get(ctx context.Context, collection string, q Query) (model.Entity, error) {
	entities, err := c.List(ctx, collection, q)
	if err != nil {
		return model.Entity{}, err
	}
	if len(entities) == 0 {
		return model.Entity{}, errors.Wrapf(ErrDataAbsent, "%s %s", collection, q.ID)
	}
	return entities[0], nil
}

// Create posts a new entity and returns its id. Only 201 counts as success.
func (c *Client) Create(ctx context.Context, collection string, req CreateRequest) (string, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, c.collectionURL(collection), req, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.Wrapf(ErrDataAbsent, "create %s: empty id", collection)
	}
	return resp.ID, nil
}

// Update sends a partial attribute update.
func (c *Client) Update(ctx context.Context, collection string, req UpdateRequest) error {
	return c.do(ctx, http.MethodPut, c.collectionURL(collection), req, 0, nil)
}

// Delete removes an entity by id.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, c.collectionURL(collection), deleteRequest{ID: id}, 0, nil)
}

// LinkDataStorage attaches a new tag or alert to the first data storage so
// its values are recorded. Other kinds are not linked.
func (c *Client) LinkDataStorage(ctx context.Context, kind model.EntityKind, id string) error {
	link := dataStorageLinkRequest{}
	switch kind {
	case model.KindTag:
		link.LinkTags = []TagLink{{TagID: id}}
	case model.KindAlert:
		link.LinkAlerts = []AlertLink{{AlertID: id}}
	default:
		return nil
	}

	storages, err := c.List(ctx, dataStoragesCollection, DataStorageQuery())
	if err != nil {
		return errors.Wrap(err, "list data storages")
	}
	if len(storages) == 0 {
		return errors.Wrap(ErrDataAbsent, "no data storage to link")
	}
	link.ID = storages[0].ID
	return c.do(ctx, http.MethodPut, c.collectionURL(dataStoragesCollection), link, http.StatusAccepted, nil)
}

// ReadData fetches recorded values of a tag.
func (c *Client) ReadData(ctx context.Context, q DataQuery) ([]model.TagData, error) {
	target, err := c.DataQueryURL(q)
	if err != nil {
		return nil, err
	}
	var resp dataResponse
	if err := c.do(ctx, http.MethodGet, target, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.Wrapf(ErrDataAbsent, "tag %s", q.TagID)
	}
	return resp.Data, nil
}

// WriteData stores tag values.
func (c *Client) WriteData(ctx context.Context, w DataWrite) error {
	return c.do(ctx, http.MethodPost, c.collectionURL(dataCollection), w, 0, nil)
}

// do performs one request. want is the exact status required; zero accepts
// any 2xx. out, when non-nil, receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, target string, body any, want int, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "url": target}).WithError(err).Warn("request failed")
		return &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	ok := resp.StatusCode == want
	if want == 0 {
		ok = resp.StatusCode >= 200 && resp.StatusCode < 300
	}
	if !ok {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.WithFields(logrus.Fields{"method": method, "url": target, "status": resp.StatusCode}).Warn("unexpected status")
		return &StatusError{Method: method, URL: target, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Method: method, URL: target, Op: "decode response", Err: err}
	}
	return nil
}
