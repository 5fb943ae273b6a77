// Package dto provides data transfer objects for the HTTP API.
// Domain entities carry their own JSON tags, so responses reuse them
// directly; this package holds request bodies and small envelopes.
package dto

// IDResponse returns the id of a created entity.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success envelope.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps collection results.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// NewListResponse builds the envelope for a slice of n items.
func NewListResponse(items any, n int) ListResponse {
	return ListResponse{Items: items, Count: n}
}
