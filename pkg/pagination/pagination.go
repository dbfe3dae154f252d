package pagination

// Page parameters for the ledger's list endpoints. Listing here is
// offset-based: back-office screens page through bounded result sets.

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 200
)

// Params holds pagination inputs from controllers or repositories.
type Params struct {
	Limit  int
	Offset int
}

// Normalize enforces the configured default and maximum limits and a
// non-negative offset.
func (p Params) Normalize() Params {
	out := p
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

// Page wraps a list result with its total row count.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}
