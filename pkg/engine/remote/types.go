package remote

import "errors"

// Wire paths served by Handler.
const (
	PathCapacity = "/v1/capacity"
	PathMoves    = "/v1/moves"
	PathSolution = "/v1/solution"
)

// Sentinel errors for remote engine calls.
var (
	// ErrUnauthorized is returned when the engine rejects the token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnexpectedStatus is returned for non-2xx engine responses.
	ErrUnexpectedStatus = errors.New("unexpected engine response")
)

// CapacityResponse is returned by GET /v1/capacity.
type CapacityResponse struct {
	Capacity int `json:"capacity"`
}

// ComputeRequest is the body of POST /v1/moves and /v1/solution.
type ComputeRequest struct {
	Position string `json:"position"`
}

// ComputeResponse carries the engine status, its XML payload and the
// engine-reported runtime in milliseconds (-1 when unknown).
type ComputeResponse struct {
	Status    int64  `json:"status"`
	Payload   string `json:"payload,omitempty"`
	ElapsedMS int    `json:"elapsedMs"`
}

// ErrorResponse decodes the httputil.WriteError body returned with non-2xx
// statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
