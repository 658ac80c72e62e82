package likeapi

// Outcome is the normalized result of a like API call. Exactly one of the
// variants below is returned per call.
type Outcome interface {
	// Label is a low-cardinality name for logs and metrics.
	Label() string
}

// Success means the upstream granted likes (status 1).
type Success struct {
	Nickname    string
	LikesBefore int
	LikesAfter  int
	LikesAdded  int
}

func (Success) Label() string { return "success" }

// AlreadyMaxed means the target account cannot receive more likes today (status 2).
type AlreadyMaxed struct{}

func (AlreadyMaxed) Label() string { return "already_maxed" }

// APIError is any other recognized upstream status code.
type APIError struct {
	Status int
}

func (APIError) Label() string { return "api_error" }

// TransportError covers network failures, timeouts, non-200 HTTP statuses and
// malformed response bodies.
type TransportError struct {
	Err error
}

func (TransportError) Label() string { return "transport_error" }

func (e TransportError) Error() string { return e.Err.Error() }
