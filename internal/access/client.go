// Package access talks to the door access-control system. Door codes are
// issued there, scoped to the slot's time window, so they can be audited and
// revoked outside this service.
package access

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const preferredCodeLength = 6

type Client struct {
	baseURL  string
	token    string
	deviceID string
	http     *http.Client
}

func NewClient(baseURL, token, deviceID string) *Client {
	return &Client{
		baseURL:  baseURL,
		token:    token,
		deviceID: deviceID,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type createCodeRequest struct {
	DeviceID            string `json:"device_id"`
	StartsAt            string `json:"starts_at"`
	EndsAt              string `json:"ends_at"`
	Name                string `json:"name"`
	PreferredCodeLength int    `json:"preferred_code_length"`
}

type createCodeResponse struct {
	AccessCode struct {
		Code string `json:"code"`
	} `json:"access_code"`
}

func (c *Client) CreateCode(ctx context.Context, name string, startsAt, endsAt time.Time) (string, error) {
	payload := createCodeRequest{
		DeviceID:            c.deviceID,
		StartsAt:            startsAt.UTC().Format(time.RFC3339),
		EndsAt:              endsAt.UTC().Format(time.RFC3339),
		Name:                name,
		PreferredCodeLength: preferredCodeLength,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/access_codes/create", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("access code request failed with status %d: %s", resp.StatusCode, body)
	}

	var result createCodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if result.AccessCode.Code == "" {
		return "", errors.New("access code missing from response")
	}

	return result.AccessCode.Code, nil
}
