package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

// PageSize is the fixed list page size used by the console.
const PageSize = 20

const maxResponseBytes = 4 << 20

// ListRequest is one list fetch.
type ListRequest struct {
	Page     int
	PerPage  int
	Status   string
	Type     string
	Category string
}

// ListResult is a decoded list response.
type ListResult struct {
	Suggestions []models.Suggestion
	Pagination  models.Pagination
}

// Client talks to the admin API on behalf of the gate's caller.
type Client struct {
	baseURL string
	http    *http.Client
	gate    Gate
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client for baseURL, e.g. http://localhost:8080/api/v1.
func NewClient(baseURL string, gate Gate, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		gate:    gate,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// envelope is the {success, error} header every API response carries.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

func (e *envelope) header() *envelope { return e }

type enveloped interface {
	header() *envelope
}

type listEnvelope struct {
	envelope
	Suggestions []models.Suggestion `json:"suggestions"`
	Pagination  models.Pagination   `json:"pagination"`
}

type singleEnvelope struct {
	envelope
	Suggestion *models.Suggestion `json:"suggestion"`
}

type loginEnvelope struct {
	envelope
	models.LoginResponse
}

// Login exchanges credentials for a token. It does not need an authenticated gate.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	body := models.LoginRequest{Email: email, Password: password}
	var env loginEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, false, &env); err != nil {
		return nil, err
	}
	return &env.LoginResponse, nil
}

// List fetches one filtered page.
func (c *Client) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	query := url.Values{}
	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = PageSize
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	if req.Status != "" && req.Status != dto.StatusAll {
		query.Set("status", req.Status)
	}
	if req.Type != "" && req.Type != dto.StatusAll {
		query.Set("suggestion_type", req.Type)
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		query.Set("gyeokguk_name", category)
	}

	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, "/suggestions", query, nil, true, &env); err != nil {
		return nil, err
	}
	if env.Suggestions == nil {
		env.Suggestions = []models.Suggestion{}
	}
	return &ListResult{Suggestions: env.Suggestions, Pagination: env.Pagination}, nil
}

// Get fetches one suggestion.
func (c *Client) Get(ctx context.Context, id string) (*models.Suggestion, error) {
	var env singleEnvelope
	if err := c.do(ctx, http.MethodGet, "/suggestions/"+url.PathEscape(id), nil, nil, true, &env); err != nil {
		return nil, err
	}
	if env.Suggestion == nil {
		return nil, appErrors.Clone(appErrors.ErrConnectivity, "connection failed")
	}
	return env.Suggestion, nil
}

// Approve issues the approve transition.
func (c *Client) Approve(ctx context.Context, id string, payload dto.ApproveSuggestionRequest) error {
	var env singleEnvelope
	return c.do(ctx, http.MethodPost, "/suggestions/"+url.PathEscape(id)+"/approve", nil, payload, true, &env)
}

// Reject issues the reject transition.
func (c *Client) Reject(ctx context.Context, id, reason string) error {
	var env singleEnvelope
	return c.do(ctx, http.MethodPost, "/suggestions/"+url.PathEscape(id)+"/reject", nil, dto.RejectSuggestionRequest{Reason: reason}, true, &env)
}

// Delete removes a suggestion.
func (c *Client) Delete(ctx context.Context, id string) error {
	var env singleEnvelope
	return c.do(ctx, http.MethodDelete, "/suggestions/"+url.PathEscape(id), nil, nil, true, &env)
}

// do performs one round trip and decodes the response into out. A transport
// error or a body that is not an envelope is a connectivity failure;
// {success:false} is reported verbatim.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, auth bool, out enveloped) error {
	if auth && (c.gate == nil || !c.gate.IsAuthenticated()) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "login required")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.gate.Token())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("console request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return appErrors.ErrConnectivity.Wrap(err, "connection failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.logger.Debug("console request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		return appErrors.ErrConnectivity.Wrap(err, "connection failed")
	}
	head := out.header()
	if err := json.Unmarshal(raw, out); err != nil || head.Success == nil {
		if err == nil {
			err = fmt.Errorf("status %d without envelope", resp.StatusCode)
		}
		return appErrors.ErrConnectivity.Wrap(err, "connection failed")
	}
	if !*head.Success {
		msg := strings.TrimSpace(head.Error)
		if msg == "" {
			msg = appErrors.ErrServerReported.Message
		}
		return appErrors.Clone(appErrors.ErrServerReported, msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.ErrConnectivity.Wrap(fmt.Errorf("status %d", resp.StatusCode), "connection failed")
	}
	return nil
}
