// Package remote is the client side of the cloud: it implements the
// identity provider contract against the auth endpoints and the document
// store contract against the document endpoints, holding the bearer token
// in between.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/moumensalem/masroof/internal/identity"
	"github.com/moumensalem/masroof/internal/ledger"
)

type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	token     string
	current   *identity.Identity
	callbacks []func(*identity.Identity)
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, email, password string) (*identity.Identity, error) {
	return c.authenticate(ctx, "/api/v1/auth/register", email, password)
}

// Login signs in with existing credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*identity.Identity, error) {
	return c.authenticate(ctx, "/api/v1/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*identity.Identity, error) {
	body, err := json.Marshal(credentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encoding credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr != nil || errResp.Error == "" {
			errResp.Error = resp.Status
		}

		return nil, fmt.Errorf("%w: %s", identity.ErrAuth, errResp.Error)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: decoding session: %v", identity.ErrAuth, err)
	}

	ident := &identity.Identity{UID: session.UID, Email: session.Email}

	c.mu.Lock()
	c.token = session.Token
	c.current = ident
	c.mu.Unlock()

	c.notify(ident)

	return ident, nil
}

// Logout drops the session. Tokens are stateless, so there is nothing to
// tell the server.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.token = ""
	c.current = nil
	c.mu.Unlock()

	c.notify(nil)

	return nil
}

// OnChange registers fn and invokes it immediately with the current
// identity, matching the subscribe-then-deliver behavior of hosted auth
// SDKs.
func (c *Client) OnChange(fn func(*identity.Identity)) {
	c.mu.Lock()
	c.callbacks = append(c.callbacks, fn)
	current := c.current
	c.mu.Unlock()

	fn(current)
}

func (c *Client) notify(ident *identity.Identity) {
	c.mu.Lock()
	callbacks := append(([]func(*identity.Identity))(nil), c.callbacks...)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(ident)
	}
}

type documentResponse struct {
	Data *ledger.Document `json:"data"`
}

type mergeRequest struct {
	Data *ledger.Document `json:"data"`
}

// Read fetches the ledger document for the uid. Returns nil when no cloud
// document exists yet.
func (c *Client) Read(ctx context.Context, uid string) (*ledger.Document, error) {
	req, err := c.documentRequest(ctx, http.MethodGet, uid, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reading cloud document: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, nil
	case http.StatusOK:
	default:
		return nil, fmt.Errorf("reading cloud document: unexpected status %s", resp.Status)
	}

	var docResp documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&docResp); err != nil {
		return nil, fmt.Errorf("decoding cloud document: %w", err)
	}

	return docResp.Data, nil
}

// WriteMerge pushes the full ledger document. The server merges it into the
// stored row and stamps updatedAt; createdAt is only set on the first write.
func (c *Client) WriteMerge(ctx context.Context, uid string, doc *ledger.Document) error {
	body, err := json.Marshal(mergeRequest{Data: doc})
	if err != nil {
		return fmt.Errorf("encoding cloud document: %w", err)
	}

	req, err := c.documentRequest(ctx, http.MethodPut, uid, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("writing cloud document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("writing cloud document: unexpected status %s", resp.Status)
	}

	return nil
}

func (c *Client) documentRequest(ctx context.Context, method, uid string, body *bytes.Reader) (*http.Request, error) {
	c.mu.Lock()
	token := c.token
	current := c.current
	c.mu.Unlock()

	if current == nil || current.UID != uid {
		return nil, fmt.Errorf("no session for uid %s", uid)
	}

	var req *http.Request

	var err error

	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1/document", body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1/document", nil)
	}

	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	return req, nil
}
