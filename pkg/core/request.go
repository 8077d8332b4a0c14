package core

import (
	"net/url"
	"sort"
)

// Params holds query parameters for a REST request.
type Params map[string]string

// Encode renders the parameters as a canonical query string with keys
// sorted. The same string is signed and transmitted, keeping the
// signature byte-for-byte aligned with the wire.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Set(k, p[k])
	}
	return values.Encode()
}

// Request describes one REST call before signing. A fresh timestamp
// and signature are derived per attempt, so Request itself carries no
// signing state.
type Request struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  Params `json:"query,omitempty"`
	// Body is the exact byte sequence to transmit. The same bytes are
	// covered by the signature.
	Body []byte `json:"body,omitempty"`
	// Authenticated requests carry the ACCESS-* identity headers.
	Authenticated bool `json:"authenticated"`
	// IdempotencyKey marks a mutating call as safe to repeat. POSTs
	// without one are never auto-retried.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// NewRequest creates a request for the given method and path.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Query:  make(Params),
	}
}

// SetQuery sets one query parameter and returns the request.
func (r *Request) SetQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query[key] = value
	return r
}

// SetBody sets the request body bytes and returns the request.
func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

// SetAuthenticated marks the request as requiring identity headers.
func (r *Request) SetAuthenticated(auth bool) *Request {
	r.Authenticated = auth
	return r
}

// SetIdempotencyKey marks a mutating request as safe to repeat.
func (r *Request) SetIdempotencyKey(key string) *Request {
	r.IdempotencyKey = key
	return r
}

// Idempotent reports whether the dispatcher may retry this request.
// GET and DELETE are idempotent by contract; anything else needs a
// caller-supplied idempotency key.
func (r *Request) Idempotent() bool {
	switch r.Method {
	case "GET", "DELETE":
		return true
	default:
		return r.IdempotencyKey != ""
	}
}
