package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/upbanklab/upgate/internal/gateway/domain"
	"github.com/upbanklab/upgate/internal/gateway/store"
	"github.com/upbanklab/upgate/internal/gateway/upstream"
)

// Accounts lists the caller's accounts from the external API. Two-step
// chain: fetch the stored secret, then call upstream with it.
func (r *Resolvers) Accounts(ctx context.Context, inv *Invocation) ([]domain.Account, error) {
	result, err := Run(ctx, inv,
		&fetchSecretStep{secrets: r.secrets},
		&listAccountsStep{upstream: r.upstream, metrics: r.metrics},
	)
	if err != nil {
		return nil, r.fail(err)
	}

	accounts, ok := result.([]domain.Account)
	if !ok {
		return nil, r.fail(Errorf(KindInternal, "unexpected pipeline result type %T", result))
	}
	return accounts, nil
}

// AccountByID fetches one account. Returns nil without error when the
// account does not exist upstream.
func (r *Resolvers) AccountByID(ctx context.Context, inv *Invocation, id string) (*domain.Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, r.fail(Errorf(KindBadRequest, "account id is required"))
	}

	result, err := Run(ctx, inv,
		&fetchSecretStep{secrets: r.secrets},
		&getAccountStep{upstream: r.upstream, metrics: r.metrics, id: id},
	)
	if err != nil {
		return nil, r.fail(err)
	}

	if result == nil {
		return nil, nil
	}
	account, ok := result.(*domain.Account)
	if !ok {
		return nil, r.fail(Errorf(KindInternal, "unexpected pipeline result type %T", result))
	}
	return account, nil
}

// fetchSecretStep looks up the caller's stored secret and stashes it. The
// secret travels via the stash, never via the step's own result, so it
// cannot leak through an inspectable intermediate value.
type fetchSecretStep struct {
	secrets store.Secrets
}

func (s *fetchSecretStep) Request(_ context.Context, inv *Invocation) (Operation, error) {
	if inv.Viewer.Sub == "" {
		return nil, Errorf(KindUnauthorized, "no verified identity on request")
	}

	pk := domain.UserPK(inv.Viewer.Sub)
	return func(ctx context.Context) (any, error) {
		secret, err := s.secrets.Get(ctx, pk, domain.SecretSKUpBank)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Missing record is a business outcome, decided in the
				// response phase, not an operation failure.
				return nil, nil
			}
			return nil, err
		}
		return secret, nil
	}, nil
}

func (s *fetchSecretStep) Response(_ context.Context, inv *Invocation, result any) (any, error) {
	secret, ok := result.(domain.Secret)
	if !ok || strings.TrimSpace(secret.Token) == "" {
		return nil, Errorf(KindTokenNotRegistered, "Token not registered")
	}

	inv.StashUpbankToken(secret.Token)
	return "ok", nil
}

// listAccountsStep calls GET /api/v1/accounts with the stashed secret.
type listAccountsStep struct {
	upstream upstream.Getter
	metrics  Recorder
}

func (s *listAccountsStep) Request(_ context.Context, inv *Invocation) (Operation, error) {
	token, ok := inv.StashedUpbankToken()
	if !ok {
		return nil, Errorf(KindInternal, "secret missing from pipeline stash")
	}

	return func(ctx context.Context) (any, error) {
		return s.upstream.Get(ctx, "/api/v1/accounts", token)
	}, nil
}

func (s *listAccountsStep) Response(_ context.Context, _ *Invocation, result any) (any, error) {
	res, err := upstreamResult(result, s.metrics)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []upbankAccount `json:"data"`
	}
	if err := decodeUpstreamBody(res.Body, &envelope); err != nil {
		return nil, Errorf(KindInternal, "failed to decode upstream accounts: %v", err)
	}

	accounts := make([]domain.Account, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		accounts = append(accounts, mapAccount(raw))
	}
	return accounts, nil
}

// getAccountStep calls GET /api/v1/accounts/{id}. A 404 resolves to nil
// rather than an error; "not found" is a legitimate answer for a point read.
type getAccountStep struct {
	upstream upstream.Getter
	metrics  Recorder
	id       string
}

func (s *getAccountStep) Request(_ context.Context, inv *Invocation) (Operation, error) {
	token, ok := inv.StashedUpbankToken()
	if !ok {
		return nil, Errorf(KindInternal, "secret missing from pipeline stash")
	}

	path := "/api/v1/accounts/" + url.PathEscape(s.id)
	return func(ctx context.Context) (any, error) {
		return s.upstream.Get(ctx, path, token)
	}, nil
}

func (s *getAccountStep) Response(_ context.Context, _ *Invocation, result any) (any, error) {
	res, ok := result.(upstream.Result)
	if !ok {
		return nil, Errorf(KindInternal, "unexpected upstream result type %T", result)
	}
	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	res, err := upstreamResult(result, s.metrics)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data upbankAccount `json:"data"`
	}
	if err := decodeUpstreamBody(res.Body, &envelope); err != nil {
		return nil, Errorf(KindInternal, "failed to decode upstream account: %v", err)
	}

	account := mapAccount(envelope.Data)
	return &account, nil
}

// upstreamResult validates the raw step result and translates upstream HTTP
// failures into the resolver taxonomy.
func upstreamResult(result any, metrics Recorder) (upstream.Result, error) {
	res, ok := result.(upstream.Result)
	if !ok {
		return upstream.Result{}, Errorf(KindInternal, "unexpected upstream result type %T", result)
	}
	if metrics != nil {
		metrics.RecordUpstreamStatus(res.StatusCode)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return upstream.Result{}, &Error{
			Kind:       KindUpbankUnauthorized,
			Message:    "Upbank rejected the stored token",
			StatusCode: res.StatusCode,
			Body:       truncateBody(res.Body),
		}
	case res.StatusCode >= http.StatusBadRequest:
		return upstream.Result{}, &Error{
			Kind:       KindUpbankAPIError,
			Message:    fmt.Sprintf("Upbank API error (status %d)", res.StatusCode),
			StatusCode: res.StatusCode,
			Body:       truncateBody(res.Body),
		}
	}

	return res, nil
}

func truncateBody(body []byte) string {
	const limit = 1024
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}

// decodeUpstreamBody unmarshals an upstream body that may arrive either as
// JSON or as a JSON string wrapping JSON (some proxies double-encode).
func decodeUpstreamBody(body []byte, out any) error {
	var wrapped string
	if err := json.Unmarshal(body, &wrapped); err == nil {
		body = []byte(wrapped)
	}
	return json.Unmarshal(body, out)
}

// upbankAccount is the upstream wire shape.
type upbankAccount struct {
	ID         string `json:"id"`
	Attributes struct {
		DisplayName   *string `json:"displayName"`
		AccountType   *string `json:"accountType"`
		OwnershipType *string `json:"ownershipType"`
		Balance       *struct {
			Value            *string `json:"value"`
			ValueInBaseUnits *int64  `json:"valueInBaseUnits"`
			CurrencyCode     *string `json:"currencyCode"`
		} `json:"balance"`
		CreatedAt *string `json:"createdAt"`
	} `json:"attributes"`
}

// mapAccount flattens an upstream record into the caller-facing shape.
// Every absent attribute maps to nil, never a zero value.
func mapAccount(raw upbankAccount) domain.Account {
	account := domain.Account{
		ID:            raw.ID,
		DisplayName:   raw.Attributes.DisplayName,
		AccountType:   raw.Attributes.AccountType,
		OwnershipType: raw.Attributes.OwnershipType,
		CreatedAt:     raw.Attributes.CreatedAt,
	}
	if raw.Attributes.Balance != nil {
		account.BalanceValue = raw.Attributes.Balance.Value
		account.BalanceValueInBaseUnits = raw.Attributes.Balance.ValueInBaseUnits
		account.CurrencyCode = raw.Attributes.Balance.CurrencyCode
	}
	return account
}
