package model

// DecodeError records a decode failure for one raw notification frame.
type DecodeError struct {
	Raw   string `json:"raw,omitempty"`
	Error string `json:"error"`
}
