// Package resolver implements the gateway's pipeline resolver runtime: an
// ordered chain of steps sharing one per-invocation context, each step able
// to read earlier results, stash values for later steps, or abort the chain
// with a typed error.
package resolver

import (
	"context"

	"github.com/upbanklab/upgate/internal/gateway/domain"
)

// Invocation is the per-call mutable state visible to every step. A fresh
// Invocation is built per resolver call; nothing in it is shared across
// invocations.
type Invocation struct {
	// Viewer is the verified identity, zero-valued for anonymous calls.
	Viewer domain.Viewer
	// Args are the declared operation arguments.
	Args map[string]string
	// Prev is the previous step's result, nil for the first step.
	Prev any

	// stash carries step-to-step values that must not appear in any step's
	// externally-inspectable result. Typed accessors below keep it from
	// degenerating into stringly-typed lookups.
	stash struct {
		upbankToken    string
		hasUpbankToken bool
	}
}

// StashUpbankToken records the fetched secret for later steps.
func (inv *Invocation) StashUpbankToken(token string) {
	inv.stash.upbankToken = token
	inv.stash.hasUpbankToken = true
}

// StashedUpbankToken returns the stashed secret. ok is false when no earlier
// step stashed one, which a consuming step must treat as an internal
// invariant violation.
func (inv *Invocation) StashedUpbankToken() (token string, ok bool) {
	return inv.stash.upbankToken, inv.stash.hasUpbankToken
}

// Operation is the side effect a step's request phase decided to perform.
type Operation func(ctx context.Context) (any, error)

// Step is one unit of a pipeline. Request decides what to do and may abort;
// Response interprets the operation's raw result, may stash, and may abort.
// Either phase aborts by returning a *Error, which short-circuits the chain.
type Step interface {
	Request(ctx context.Context, inv *Invocation) (Operation, error)
	Response(ctx context.Context, inv *Invocation, result any) (any, error)
}

// Run executes steps strictly in order against one shared Invocation. The
// chain's result is the last step's response value; each step sees the prior
// step's result via inv.Prev. Any abort propagates unchanged (after
// classification) and no later step runs.
func Run(ctx context.Context, inv *Invocation, steps ...Step) (any, error) {
	for _, step := range steps {
		op, err := step.Request(ctx, inv)
		if err != nil {
			return nil, AsError(err)
		}

		var raw any
		if op != nil {
			raw, err = op(ctx)
			if err != nil {
				return nil, AsError(err)
			}
		}

		result, err := step.Response(ctx, inv, raw)
		if err != nil {
			return nil, AsError(err)
		}
		inv.Prev = result
	}

	return inv.Prev, nil
}
