package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ListEnvelope wraps paginated collections together with the total row
// count so clients can compute page boundaries.
type ListEnvelope struct {
	Data  any   `json:"data"`
	Total int64 `json:"total"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
