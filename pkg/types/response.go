package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ListEnvelope wraps collection payloads with their size.
type ListEnvelope[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewList builds a ListEnvelope, normalising nil slices to empty arrays.
func NewList[T any](items []T) ListEnvelope[T] {
	if items == nil {
		items = []T{}
	}
	return ListEnvelope[T]{Items: items, Count: len(items)}
}
