package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/upbanklab/upgate/internal/gateway/domain"
	"github.com/upbanklab/upgate/internal/gateway/store"
	"github.com/upbanklab/upgate/internal/gateway/upstream"
)

// minTokenLength is the shortest secret accepted for registration. Real
// upstream personal access tokens are far longer; this only rejects obvious
// junk before it hits the store.
const minTokenLength = 10

// Recorder receives resolver outcome signals for observability. A nil
// Recorder is valid and records nothing.
type Recorder interface {
	RecordResolverError(kind string)
	RecordUpstreamStatus(code int)
}

// Resolvers hosts the gateway's query and mutation resolvers.
type Resolvers struct {
	secrets  store.Secrets
	upstream upstream.Getter
	metrics  Recorder
	now      func() time.Time
}

// New builds the resolver set. metrics may be nil.
func New(secrets store.Secrets, up upstream.Getter, metrics Recorder) *Resolvers {
	return &Resolvers{secrets: secrets, upstream: up, metrics: metrics, now: time.Now}
}

// fail classifies err and records it before returning.
func (r *Resolvers) fail(err error) *Error {
	rerr := AsError(err)
	if r.metrics != nil {
		r.metrics.RecordResolverError(string(rerr.Kind))
	}
	return rerr
}

func requireViewer(inv *Invocation) error {
	if inv.Viewer.Sub == "" {
		return Errorf(KindUnauthorized, "no verified identity on request")
	}
	return nil
}

// Me returns the caller's identity claims.
func (r *Resolvers) Me(_ context.Context, inv *Invocation) (domain.Viewer, error) {
	if err := requireViewer(inv); err != nil {
		return domain.Viewer{}, r.fail(err)
	}
	return inv.Viewer, nil
}

// TokenRegistered reports whether the caller has a usable secret stored.
func (r *Resolvers) TokenRegistered(ctx context.Context, inv *Invocation) (domain.TokenStatus, error) {
	if err := requireViewer(inv); err != nil {
		return domain.TokenStatus{}, r.fail(err)
	}

	secret, err := r.secrets.Get(ctx, domain.UserPK(inv.Viewer.Sub), domain.SecretSKUpBank)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenStatus{Registered: false}, nil
		}
		return domain.TokenStatus{}, r.fail(err)
	}

	if strings.TrimSpace(secret.Token) == "" {
		return domain.TokenStatus{Registered: false}, nil
	}

	updated := secret.UpdatedAt
	return domain.TokenStatus{Registered: true, UpdatedAt: &updated}, nil
}

// RegisterToken stores the caller's secret, overwriting any previous one.
// The raw value is validated here and never returned to any caller.
func (r *Resolvers) RegisterToken(ctx context.Context, inv *Invocation, token string) (domain.TokenStatus, error) {
	if err := requireViewer(inv); err != nil {
		return domain.TokenStatus{}, r.fail(err)
	}

	token = strings.TrimSpace(token)
	if len(token) < minTokenLength {
		return domain.TokenStatus{}, r.fail(Errorf(KindBadRequest, "Invalid token"))
	}

	updated := r.now().UTC()
	err := r.secrets.Put(ctx, domain.Secret{
		PK:        domain.UserPK(inv.Viewer.Sub),
		SK:        domain.SecretSKUpBank,
		Token:     token,
		UpdatedAt: updated,
	})
	if err != nil {
		return domain.TokenStatus{}, r.fail(err)
	}

	return domain.TokenStatus{Registered: true, UpdatedAt: &updated}, nil
}
