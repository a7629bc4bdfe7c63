package listview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Session holds the bearer token shared by every fetcher of one client.
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// SetToken stores the bearer token used on subsequent requests.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear drops the stored token.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// GatewayFetcher queries one list resource of the admin gateway and decodes
// the envelope into a Snapshot.
type GatewayFetcher[T any] struct {
	client   *http.Client
	baseURL  string
	resource string
	session  *Session
}

// NewGatewayFetcher builds a fetcher for baseURL/resource. The session may be
// nil for resources served without authentication.
func NewGatewayFetcher[T any](client *http.Client, baseURL, resource string, session *Session) *GatewayFetcher[T] {
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewayFetcher[T]{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		resource: strings.Trim(resource, "/"),
		session:  session,
	}
}

type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *gatewayError) Error() string {
	return fmt.Sprintf("gateway error %s (%d): %s", e.Code, e.Status, e.Message)
}

type envelope[T any] struct {
	Data       []T           `json:"data"`
	Error      *gatewayError `json:"error"`
	Pagination *Pagination   `json:"pagination"`
}

// Fetch issues the list request for the query tuple.
func (f *GatewayFetcher[T]) Fetch(ctx context.Context, q Query) (*Snapshot[T], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.PageSize))
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortDirection != "" {
		params.Set("sortDirection", q.SortDirection)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	endpoint := fmt.Sprintf("%s/%s?%s", f.baseURL, f.resource, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if f.session != nil {
		if token := f.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.resource, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var body envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", f.resource, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if body.Error != nil {
			return nil, body.Error
		}
		return nil, fmt.Errorf("fetch %s: unexpected status %d", f.resource, resp.StatusCode)
	}
	if body.Pagination == nil {
		return nil, fmt.Errorf("fetch %s: response missing pagination", f.resource)
	}
	return &Snapshot[T]{Items: body.Data, Pagination: *body.Pagination}, nil
}
