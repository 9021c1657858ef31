package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"
)

// ErrNotPaired is returned when there is no application key or the bridge rejects it.
var ErrNotPaired = errors.New("not paired with the Hue bridge, run `gsilight pair`")

// Client provides access to the Hue v1 REST API
type Client struct {
	address    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Hue client
func NewClient(address, token string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		address: address,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Close closes the client
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Address returns the bridge address
func (c *Client) Address() string {
	return c.address
}

// HasToken reports whether an application key is configured
func (c *Client) HasToken() bool {
	return c.token != ""
}

func (c *Client) v1URL(path string) string {
	return fmt.Sprintf("http://%s/api/%s/%s", c.address, c.token, path)
}

func (c *Client) v1Request(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.v1URL(path), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

// do performs a request and returns the body of a successful response.
// v1 reports most failures as a 200 with an error array; those become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	resp, err := c.v1Request(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := apiError(data); err != nil {
		return nil, err
	}
	return data, nil
}

func apiError(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var responses []apiResponse
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil
	}
	for _, r := range responses {
		if r.Error != nil {
			return r.Error
		}
	}
	return nil
}

// GetLights returns all lights known to the bridge, ordered by ID
func (c *Client) GetLights(ctx context.Context) ([]Light, error) {
	data, err := c.do(ctx, http.MethodGet, "lights", nil)
	if err != nil {
		return nil, err
	}

	var raw map[string]Light
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	lights := make([]Light, 0, len(raw))
	for id, light := range raw {
		light.ID = id
		lights = append(lights, light)
	}
	sort.Slice(lights, func(i, j int) bool {
		return lessID(lights[i].ID, lights[j].ID)
	})

	return lights, nil
}

// SetLightState updates the state of a single light
func (c *Client) SetLightState(ctx context.Context, lightID string, state LightState) error {
	bodyBytes, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPut, fmt.Sprintf("lights/%s/state", lightID), bytes.NewReader(bodyBytes))
	return err
}

// lessID orders numeric light IDs numerically and everything else lexically.
func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
