package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/upbanklab/upgate/internal/gateway/domain"
)

// scriptedStep is a configurable Step for exercising the runtime contract.
type scriptedStep struct {
	name       string
	requestErr error
	op         Operation
	respond    func(inv *Invocation, result any) (any, error)
	ran        *[]string
}

func (s *scriptedStep) Request(_ context.Context, _ *Invocation) (Operation, error) {
	*s.ran = append(*s.ran, s.name+":request")
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	return s.op, nil
}

func (s *scriptedStep) Response(_ context.Context, inv *Invocation, result any) (any, error) {
	*s.ran = append(*s.ran, s.name+":response")
	if s.respond != nil {
		return s.respond(inv, result)
	}
	return result, nil
}

func TestRunThreadsPrevAndReturnsLastResult(t *testing.T) {
	t.Parallel()

	var ran []string
	var prevSeenBySecond any

	first := &scriptedStep{
		name: "first",
		ran:  &ran,
		op:   func(context.Context) (any, error) { return "first-result", nil },
	}
	second := &scriptedStep{
		name: "second",
		ran:  &ran,
		respond: func(inv *Invocation, _ any) (any, error) {
			prevSeenBySecond = inv.Prev
			return "final", nil
		},
	}

	inv := &Invocation{Viewer: domain.Viewer{Sub: "u1"}}
	result, err := Run(context.Background(), inv, first, second)
	require.NoError(t, err)
	require.Equal(t, "final", result)
	require.Equal(t, "first-result", prevSeenBySecond)
	require.Equal(t, []string{"first:request", "first:response", "second:request", "second:response"}, ran)
}

func TestRunAbortShortCircuits(t *testing.T) {
	t.Parallel()

	var ran []string
	first := &scriptedStep{
		name:       "first",
		ran:        &ran,
		requestErr: Errorf(KindUnauthorized, "nope"),
	}
	second := &scriptedStep{name: "second", ran: &ran}

	_, err := Run(context.Background(), &Invocation{}, first, second)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, KindUnauthorized, rerr.Kind)
	require.Equal(t, []string{"first:request"}, ran)
}

func TestRunWrapsUnclassifiedErrors(t *testing.T) {
	t.Parallel()

	var ran []string
	step := &scriptedStep{
		name: "only",
		ran:  &ran,
		op: func(context.Context) (any, error) {
			return nil, context.DeadlineExceeded
		},
	}

	_, err := Run(context.Background(), &Invocation{}, step)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, KindInternal, rerr.Kind)
}

func TestStashIsPerInvocation(t *testing.T) {
	t.Parallel()

	first := &Invocation{}
	first.StashUpbankToken("token-a")

	second := &Invocation{}
	_, ok := second.StashedUpbankToken()
	require.False(t, ok)

	token, ok := first.StashedUpbankToken()
	require.True(t, ok)
	require.Equal(t, "token-a", token)
}

func TestPassthroughStepForwardsChainResult(t *testing.T) {
	t.Parallel()

	var ran []string
	inner := &scriptedStep{
		name: "inner",
		ran:  &ran,
		op:   func(context.Context) (any, error) { return "payload", nil },
	}
	// A pass-through step supplies no operation and forwards whatever the
	// chain produced so far.
	passthrough := &scriptedStep{
		name: "passthrough",
		ran:  &ran,
		respond: func(inv *Invocation, _ any) (any, error) {
			return inv.Prev, nil
		},
	}

	result, err := Run(context.Background(), &Invocation{}, inner, passthrough)
	require.NoError(t, err)
	require.Equal(t, "payload", result)
}
