package extract

import (
	"context"
	"net/url"
	"time"

	"github.com/law-makers/giftscrape/internal/engine/markup"
	"github.com/rs/zerolog"
)

// Input is everything a strategy may look at. Strategies never perform I/O.
type Input struct {
	RawURL   string
	URL      *url.URL // nil when RawURL does not parse
	PageURL  *url.URL // final URL after redirects, falls back to URL
	Doc      *markup.Document
	Override *Override // nil when no site override applies
	MinTitle int
}

// Host returns the lower-cased host of the product URL
func (in *Input) Host() string {
	if in.URL == nil {
		return ""
	}
	return in.URL.Hostname()
}

// Strategy is one named way of finding a field value
type Strategy struct {
	Name string
	Fn   func(ctx context.Context, in *Input) (string, bool)
}

// Event describes one strategy evaluation
type Event struct {
	Field    string
	Strategy string
	Found    bool
	Value    string
	Duration time.Duration
}

// Hook observes strategy evaluations. It must not affect the outcome.
type Hook interface {
	OnStrategy(ctx context.Context, ev Event)
}

// HookFunc adapts a function to a Hook
type HookFunc func(ctx context.Context, ev Event)

// OnStrategy calls f
func (f HookFunc) OnStrategy(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// LogHook writes every evaluation as a debug event on the context logger
type LogHook struct{}

// OnStrategy implements Hook
func (LogHook) OnStrategy(ctx context.Context, ev Event) {
	zerolog.Ctx(ctx).Debug().
		Str("field", ev.Field).
		Str("strategy", ev.Strategy).
		Bool("found", ev.Found).
		Str("value", ev.Value).
		Dur("took", ev.Duration).
		Msg("Strategy evaluated")
}

// Chain is an ordered list of strategies for one field
type Chain struct {
	Field      string
	Strategies []Strategy
}

// Resolve evaluates strategies in order and stops at the first success.
// It returns the value and the name of the strategy that produced it.
func (c Chain) Resolve(ctx context.Context, in *Input, hook Hook) (value, source string, ok bool) {
	for _, s := range c.Strategies {
		start := time.Now()
		value, ok = s.Fn(ctx, in)
		if hook != nil {
			hook.OnStrategy(ctx, Event{
				Field:    c.Field,
				Strategy: s.Name,
				Found:    ok,
				Value:    value,
				Duration: time.Since(start),
			})
		}
		if ok {
			return value, s.Name, true
		}
	}
	return "", "", false
}

// Names lists the chain's strategy names in evaluation order
func (c Chain) Names() []string {
	names := make([]string, len(c.Strategies))
	for i, s := range c.Strategies {
		names[i] = s.Name
	}
	return names
}
