// Package foodapi is the REST client for the platform services this console
// consumes. The platform is authoritative: there is no partial-patch
// endpoint, order updates always carry the full document, and a rejected
// update means re-fetch, never merge.
package foodapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quanviet/store-console/internal/model"
)

// Errors returned by the client.
var (
	ErrNotFound = errors.New("not found upstream")
	ErrUpstream = errors.New("order service error")
)

// Client talks to the platform REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a platform API client. token is the bearer token of the
// store session; it may be empty in tests.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// OrderPage is one page of a store's order list.
type OrderPage struct {
	Orders []model.Order `json:"orders"`
	Total  int           `json:"total"`
}

// GetOrder fetches the full order document.
func (c *Client) GetOrder(ctx context.Context, id string) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, http.MethodGet, "/order/"+url.PathEscape(id), nil, &out)
	return out, err
}

// UpdateOrder submits the full order document and returns the updated one.
func (c *Client) UpdateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, http.MethodPut, "/order/"+url.PathEscape(o.ID), o, &out)
	return out, err
}

// ListStoreOrders fetches a page of the store's orders filtered by one or
// more statuses.
func (c *Client) ListStoreOrders(ctx context.Context, storeID string, statuses []string, limit, page int) (OrderPage, error) {
	q := url.Values{}
	if len(statuses) > 0 {
		q.Set("status", strings.Join(statuses, ","))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	path := "/order/store/" + url.PathEscape(storeID)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out OrderPage
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// StoreDishes fetches the store's dish catalog with grouped toppings.
func (c *Client) StoreDishes(ctx context.Context, storeID string) ([]model.Dish, error) {
	var out []model.Dish
	err := c.do(ctx, http.MethodGet, "/food/store/"+url.PathEscape(storeID), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %d %s", ErrUpstream, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
