package domain

// SearchResultKind discriminates the closed result taxonomy every handler
// consumes. The external API's heterogeneous success/error payloads are
// normalized into exactly one of these by the e621 client; the antispam
// limiter contributes the throttled variant.
type SearchResultKind int

const (
	// SearchOK carries zero or more posts. An empty post list is a valid
	// success, not an error.
	SearchOK SearchResultKind = iota
	// SearchThrottled is a rate-limited outcome, not an error: the request
	// was understood but deferred for RemainingSeconds.
	SearchThrottled
	// SearchError carries a human-readable reason and at most one internal
	// detail string.
	SearchError
)

// SearchResult is the normalized outcome of a search operation.
type SearchResult struct {
	Kind  SearchResultKind
	Posts []Post

	// Reason is the user-visible failure or throttle description.
	Reason string
	// Detail is an internal diagnostic, logged but never shown to users.
	Detail string
	// RemainingSeconds is the throttle wait, populated only for
	// SearchThrottled.
	RemainingSeconds int
}

// OKResult wraps posts in a successful result.
func OKResult(posts []Post) SearchResult {
	return SearchResult{Kind: SearchOK, Posts: posts}
}

// ThrottledResult builds a rate-limited outcome.
func ThrottledResult(reason string, remaining int) SearchResult {
	return SearchResult{Kind: SearchThrottled, Reason: reason, RemainingSeconds: remaining}
}

// ErrorResult builds a failed outcome. detail may be empty.
func ErrorResult(reason, detail string) SearchResult {
	return SearchResult{Kind: SearchError, Reason: reason, Detail: detail}
}

// OK reports whether the result is a success.
func (r SearchResult) OK() bool { return r.Kind == SearchOK }
