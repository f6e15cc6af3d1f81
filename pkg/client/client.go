// Package client is the catalogue's client component: it loads a snapshot of
// the product list, accumulates rating and comment edits locally, and
// submits the changed facets product by product on an explicit save. Writes
// require a login; the derived credential and user identity persist across
// runs through a pluggable SessionStore.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"catalogue/internal/models"
)

var (
	// ErrLoginRequired is returned by SaveAll when no session is present.
	ErrLoginRequired = errors.New("login required")
	// ErrUnknownProduct is returned when an edit names a product id that is
	// not in the loaded snapshot.
	ErrUnknownProduct = errors.New("unknown product")
)

// commentSeparator joins entries of the threaded comment format.
const commentSeparator = "\n\n---\n\n"

// pendingUpdate tracks the facets of one product changed since the last
// load or save. Only these facets are sent on save.
type pendingUpdate struct {
	ratings map[string]float64
	comment *string
}

// Client is a catalogue API client holding a locally mutable copy of the
// product list.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore

	mu       sync.Mutex
	session  Session
	products []models.Product
	index    map[string]int // product id hex -> position in products
	pending  map[string]*pendingUpdate

	now func() time.Time
}

// New creates a Client for the service at baseURL, restoring any persisted
// session from the store. A nil store gets an in-memory one.
func New(baseURL string, store SessionStore) *Client {
	if store == nil {
		store = NewMemorySessionStore()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		store:      store,
		index:      make(map[string]int),
		pending:    make(map[string]*pendingUpdate),
		now:        time.Now,
	}
	session, err := store.Load()
	if err != nil {
		log.Printf("Failed to restore session: %v", err)
	} else {
		c.session = session
	}
	return c
}

// Load fetches the full product list and replaces the local snapshot. Any
// unsaved local edits are discarded.
func (c *Client) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch products: status %d", resp.StatusCode)
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return fmt.Errorf("failed to decode products: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	c.index = make(map[string]int, len(products))
	for i, p := range products {
		c.index[p.ID.Hex()] = i
	}
	c.pending = make(map[string]*pendingUpdate)
	return nil
}

// Products returns a copy of the local product list with pending edits
// applied.
func (c *Client) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product returns the local copy of one product.
func (c *Client) Product(id string) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrUnknownProduct)
	}
	p := c.products[i]
	return &p, nil
}

// SetRating records a rating edit for one reviewer slot on the local copy.
// No network call happens until SaveAll.
func (c *Client) SetRating(id, reviewer string, value float64) error {
	if !models.ValidRating(value) {
		return fmt.Errorf("invalid rating %v: must be 0-10 in 0.5 steps", value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, ErrUnknownProduct)
	}

	if c.products[i].Ratings == nil {
		c.products[i].Ratings = make(map[string]float64)
	}
	c.products[i].Ratings[reviewer] = value

	edit := c.edit(id)
	if edit.ratings == nil {
		edit.ratings = make(map[string]float64)
	}
	edit.ratings[reviewer] = value
	return nil
}

// SetComment replaces the local comment. The empty string is a valid edit:
// it clears the stored comment on save.
func (c *Client) SetComment(id, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, ErrUnknownProduct)
	}
	c.products[i].Comment = text
	c.edit(id).comment = &text
	return nil
}

// AppendComment adds a timestamped, author-prefixed entry to the product's
// comment thread, preserving earlier entries.
func (c *Client) AppendComment(id, author, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("comment text is empty")
	}

	c.mu.Lock()
	i, ok := c.index[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("product %s: %w", id, ErrUnknownProduct)
	}
	existing := c.products[i].Comment
	timestamp := c.now().Format("2006-01-02 15:04:05")
	c.mu.Unlock()

	entry := fmt.Sprintf("[%s] %s:\n%s", timestamp, author, trimmed)
	if existing != "" {
		entry = existing + commentSeparator + entry
	}
	return c.SetComment(id, entry)
}

// edit returns the pending update for a product, creating it if needed.
// Caller must hold c.mu.
func (c *Client) edit(id string) *pendingUpdate {
	e, ok := c.pending[id]
	if !ok {
		e = &pendingUpdate{}
		c.pending[id] = e
	}
	return e
}

// loginResponse is the success payload of POST /login.
type loginResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

// errorResponse is the shape of service error payloads.
type errorResponse struct {
	Message string `json:"message"`
}

// Login submits credentials to the login endpoint. On success the client
// derives a reusable Basic credential from username:password and persists
// it with the user identity. On failure the session is left untouched and
// the server's message (or the transport error) is returned.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return fmt.Errorf("login failed: %s", errResp.Message)
		}
		return fmt.Errorf("login failed: status %d", resp.StatusCode)
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}

	session := Session{
		Credential: base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
		User:       &loginResp.User,
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if err := c.store.Save(session); err != nil {
		log.Printf("Failed to persist session: %v", err)
	}
	return nil
}

// Logout clears the session unconditionally. It never fails and makes no
// server round-trip.
func (c *Client) Logout() {
	c.mu.Lock()
	c.session = Session{}
	c.mu.Unlock()
	if err := c.store.Clear(); err != nil {
		log.Printf("Failed to clear persisted session: %v", err)
	}
}

// Authenticated reports whether the client holds a login session.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Authenticated()
}

// CurrentUser returns the logged-in user identity, or nil when anonymous.
func (c *Client) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.User
}

// SaveReport aggregates the per-product outcomes of one SaveAll.
type SaveReport struct {
	Saved  []string
	Failed map[string]error
	// SessionExpired is set when any update came back 401; the client has
	// already dropped back to the anonymous state and the user must log in
	// again before retrying.
	SessionExpired bool
}

// saveResult is one product's outcome, collected from the save goroutines.
type saveResult struct {
	id           string
	err          error
	unauthorized bool
}

// SaveAll submits every pending edit, one update request per modified
// product, concurrently. A failing product never aborts its siblings; all
// outcomes land in the returned report. Any 401 invalidates the session.
func (c *Client) SaveAll(ctx context.Context) (*SaveReport, error) {
	c.mu.Lock()
	if !c.session.Authenticated() {
		c.mu.Unlock()
		return nil, ErrLoginRequired
	}
	credential := c.session.Credential
	batch := make(map[string]*pendingUpdate, len(c.pending))
	for id, edit := range c.pending {
		batch[id] = edit
	}
	c.mu.Unlock()

	report := &SaveReport{Failed: make(map[string]error)}
	if len(batch) == 0 {
		return report, nil
	}

	results := make(chan saveResult, len(batch))
	var wg sync.WaitGroup
	for id, edit := range batch {
		wg.Add(1)
		go func(id string, edit *pendingUpdate) {
			defer wg.Done()
			results <- c.saveOne(ctx, credential, id, edit)
		}(id, edit)
	}
	wg.Wait()
	close(results)

	for result := range results {
		switch {
		case result.err == nil:
			report.Saved = append(report.Saved, result.id)
			c.mu.Lock()
			delete(c.pending, result.id)
			c.mu.Unlock()
		case result.unauthorized:
			report.SessionExpired = true
			report.Failed[result.id] = result.err
		default:
			report.Failed[result.id] = result.err
		}
	}
	sort.Strings(report.Saved)

	if report.SessionExpired {
		c.Logout()
	}
	return report, nil
}

// saveOne issues the update request for a single product's changed facets.
func (c *Client) saveOne(ctx context.Context, credential, id string, edit *pendingUpdate) saveResult {
	payload := struct {
		Ratings map[string]float64 `json:"ratings,omitempty"`
		Comment *string            `json:"comment,omitempty"`
	}{
		Ratings: edit.ratings,
		Comment: edit.comment,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return saveResult{id: id, err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/products/"+id, bytes.NewReader(body))
	if err != nil {
		return saveResult{id: id, err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return saveResult{id: id, err: fmt.Errorf("failed to save product %s: %w", id, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return saveResult{id: id, unauthorized: true, err: fmt.Errorf("failed to save product %s: unauthorized", id)}
	}
	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return saveResult{id: id, err: fmt.Errorf("failed to save product %s: %s", id, errResp.Message)}
		}
		return saveResult{id: id, err: fmt.Errorf("failed to save product %s: status %d", id, resp.StatusCode)}
	}
	return saveResult{id: id}
}
