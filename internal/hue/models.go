package hue

import "fmt"

// LightState is the body of a v1 light state update.
// TransitionTime is a pointer so that an explicit 0 (instant) is still sent.
type LightState struct {
	On             bool      `json:"on"`
	Bri            *uint8    `json:"bri,omitempty"`
	XY             []float64 `json:"xy,omitempty"`
	TransitionTime *uint16   `json:"transitiontime,omitempty"`
}

// Light is the subset of a v1 light resource the driver needs.
type Light struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	State struct {
		On        bool `json:"on"`
		Reachable bool `json:"reachable"`
	} `json:"state"`
}

// APIError is an error object returned by the v1 API in a 200 response.
type APIError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hue error %d at %s: %s", e.Type, e.Address, e.Description)
}

// Unauthorized reports whether the bridge rejected the application key.
func (e *APIError) Unauthorized() bool {
	return e.Type == errUnauthorizedUser
}

// v1 error type for an unknown application key
const errUnauthorizedUser = 1

// apiResponse is one element of a v1 response array.
type apiResponse struct {
	Error   *APIError      `json:"error,omitempty"`
	Success map[string]any `json:"success,omitempty"`
}
