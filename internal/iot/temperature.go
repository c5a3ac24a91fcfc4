// Package iot reads the bathing-water temperature from the sensor platform.
// Both the auth token and the reading are cached in-process; they are pure
// performance caches and safely stale.
package iot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	tokenTTL   = time.Hour
	readingTTL = 20 * time.Minute
)

// cache is an explicit (value, expiresAt) pair so tests can drive expiry
// through the injected clock instead of waiting.
type cache[T any] struct {
	value     T
	expiresAt time.Time
	set       bool
}

func (c *cache[T]) get(now time.Time) (T, bool) {
	if !c.set || now.After(c.expiresAt) {
		var zero T
		return zero, false
	}
	return c.value, true
}

func (c *cache[T]) put(value T, now time.Time, ttl time.Duration) {
	c.value = value
	c.expiresAt = now.Add(ttl)
	c.set = true
}

type Client struct {
	baseURL  string
	username string
	password string
	deviceID string
	logger   *slog.Logger
	http     *http.Client
	now      func() time.Time

	mu      sync.Mutex
	token   cache[string]
	reading cache[string]
}

func NewClient(baseURL, username, password, deviceID string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		deviceID: deviceID,
		logger:   logger,
		http:     &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Temperature returns the latest water temperature, refreshing the cached
// reading when it has expired. If the refresh fails and a stale reading
// exists, the stale reading is returned instead of the error.
func (c *Client) Temperature(ctx context.Context) (string, error) {
	now := c.now()

	c.mu.Lock()
	if reading, ok := c.reading.get(now); ok {
		c.mu.Unlock()
		return reading, nil
	}
	stale := c.reading.value
	hadStale := c.reading.set
	c.mu.Unlock()

	reading, err := c.fetchTemperature(ctx)
	if err != nil {
		if hadStale {
			c.logger.Warn("temperature refresh failed, serving stale reading", "error", err)
			return stale, nil
		}
		return "", err
	}

	c.mu.Lock()
	c.reading.put(reading, c.now(), readingTTL)
	c.mu.Unlock()

	return reading, nil
}

func (c *Client) fetchTemperature(ctx context.Context) (string, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/api/plugins/telemetry/DEVICE/%s/values/timeseries?keys=Temperature", c.baseURL, c.deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("temperature request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Temperature []struct {
			Value string `json:"value"`
		} `json:"Temperature"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	if len(payload.Temperature) == 0 {
		return "", errors.New("temperature missing from sensor response")
	}

	return payload.Temperature[0].Value, nil
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	now := c.now()

	c.mu.Lock()
	if token, ok := c.token.get(now); ok {
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sensor platform authentication failed with status %d: %s", resp.StatusCode, respBody)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Token == "" {
		return "", errors.New("token missing from authentication response")
	}

	c.mu.Lock()
	c.token.put(payload.Token, c.now(), tokenTTL)
	c.mu.Unlock()

	return payload.Token, nil
}
