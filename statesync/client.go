package statesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type syncError string

func (s syncError) Error() string {
	return string(s)
}

// ErrNotFound distinguishes a device that is gone from a transient
// transport failure, the two render differently.
const ErrNotFound = syncError("not found")

const DefaultRequestTimeout = 10 * time.Second

type Device struct {
	ObjectId   string         `json:"object_id"`
	Type       string         `json:"type"`
	Name       string         `json:"name,omitempty"`
	SensorType string         `json:"sensor_type,omitempty"`
	State      map[string]any `json:"state,omitempty"`
	LastSeen   *time.Time     `json:"last_seen,omitempty"`
}

type DeviceCreate struct {
	Type       string `json:"type"`
	ObjectId   string `json:"object_id"`
	Name       string `json:"name,omitempty"`
	SensorType string `json:"sensor_type,omitempty"`
}

type DeviceUpdate struct {
	Type       *string `json:"type,omitempty"`
	Name       *string `json:"name,omitempty"`
	SensorType *string `json:"sensor_type,omitempty"`
}

type StateDocument struct {
	State map[string]any `json:"state"`
}

// Client speaks the backend's REST surface. The base address can be swapped
// at runtime when the operator saves new settings.
type Client struct {
	addressLock sync.RWMutex
	baseAddress string

	http *http.Client
}

func NewClient(baseAddress string) *Client {
	return &Client{
		baseAddress: strings.TrimSuffix(baseAddress, "/"),
		http:        &http.Client{Timeout: DefaultRequestTimeout},
	}
}

func (c *Client) BaseAddress() string {
	c.addressLock.RLock()
	defer c.addressLock.RUnlock()

	return c.baseAddress
}

func (c *Client) SetBaseAddress(baseAddress string) {
	c.addressLock.Lock()
	defer c.addressLock.Unlock()

	c.baseAddress = strings.TrimSuffix(baseAddress, "/")
}

func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var devices []Device

	if err := c.do(ctx, http.MethodGet, "/api/devices", nil, &devices); err != nil {
		return nil, err
	}

	return devices, nil
}

func (c *Client) GetDevice(ctx context.Context, id string) (Device, error) {
	var device Device

	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/devices/%s", id), nil, &device); err != nil {
		return Device{}, err
	}

	return device, nil
}

func (c *Client) CreateDevice(ctx context.Context, create DeviceCreate) (Device, error) {
	var device Device

	if err := c.do(ctx, http.MethodPost, "/api/devices", create, &device); err != nil {
		return Device{}, err
	}

	return device, nil
}

func (c *Client) UpdateDevice(ctx context.Context, id string, update DeviceUpdate) (Device, error) {
	var device Device

	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/devices/%s", id), update, &device); err != nil {
		return Device{}, err
	}

	return device, nil
}

func (c *Client) DeleteDevice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/devices/%s", id), nil, nil)
}

func (c *Client) GetState(ctx context.Context, id string) (map[string]any, error) {
	var doc StateDocument

	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/devices/%s/state", id), nil, &doc); err != nil {
		return nil, err
	}

	return doc.State, nil
}

func (c *Client) PutState(ctx context.Context, id string, state map[string]any) (map[string]any, error) {
	var doc StateDocument

	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/devices/%s/state", id), StateDocument{State: state}, &doc); err != nil {
		return nil, err
	}

	return doc.State, nil
}

func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/reload", nil, nil)
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reqBody io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}

		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseAddress()+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to construct request: %w", err)
	}

	if body != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to backend failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(resp.Body)

		message := strings.TrimSpace(string(data))
		if message == "" {
			message = resp.Status
		}

		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return nil
}
