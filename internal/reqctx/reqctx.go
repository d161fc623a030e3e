// Package reqctx carries the identity of one extraction through its context
// so that every log line and error can be tied back to the URL that caused it.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type key int

const requestKey key = 0

// Request identifies one extraction
type Request struct {
	ID    string
	URL   string
	Start time.Time
}

// Start attaches a fresh Request for rawURL to ctx
func Start(ctx context.Context, rawURL string) (context.Context, *Request) {
	r := &Request{
		ID:    generateID(),
		URL:   rawURL,
		Start: time.Now(),
	}
	return context.WithValue(ctx, requestKey, r), r
}

// From returns the Request in ctx, or an "unknown" one
func From(ctx context.Context) *Request {
	if r, ok := ctx.Value(requestKey).(*Request); ok {
		return r
	}
	return &Request{ID: "unknown", Start: time.Now()}
}

// Elapsed is the time since the request started
func (r *Request) Elapsed() time.Duration {
	return time.Since(r.Start)
}

// Fields adds request_id and url to a logger context
func (r *Request) Fields(c zerolog.Context) zerolog.Context {
	return c.Str("request_id", r.ID).Str("url", r.URL)
}

func generateID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Error ties an error to the extraction it happened in
type Error struct {
	RequestID string
	URL       string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.RequestID, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap annotates err with the Request in ctx. A nil err stays nil.
func Wrap(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	r := From(ctx)
	return &Error{RequestID: r.ID, URL: r.URL, Err: err}
}
