// Package directus implements the repositories on top of the headless content
// store's HTTP API: JSON filters in the query string, a token query parameter,
// dotted field-expansion selectors and a {"data": ...} response envelope.
package directus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// StatusError is returned for any non-2xx store response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("document store returned status %d: %s", e.Status, e.Body)
}

// IsStatus reports whether err is a StatusError with one of the given codes.
func IsStatus(err error, statuses ...int) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	for _, s := range statuses {
		if statusErr.Status == s {
			return true
		}
	}
	return false
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, dest)
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, dest)
}

func (c *Client) patch(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, dest)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", c.token)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if dest == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("malformed document store response: %w", err)
	}

	return json.Unmarshal(env.Data, dest)
}

// filterParam renders a store filter object into its query-string form.
func filterParam(filter map[string]any) url.Values {
	data, _ := json.Marshal(filter)

	query := url.Values{}
	query.Set("filter", string(data))

	return query
}

func eqFilter(field, value string) map[string]any {
	return map[string]any{field: map[string]any{"_eq": value}}
}
