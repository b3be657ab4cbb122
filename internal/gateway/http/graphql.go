package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/upbanklab/upgate/internal/gateway/domain"
	"github.com/upbanklab/upgate/internal/gateway/resolver"
	"github.com/upbanklab/upgate/pkg/httpx"
)

// queryRequest is the query endpoint's wire format.
type queryRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type queryResponse struct {
	Data   map[string]any `json:"data"`
	Errors []gqlError     `json:"errors,omitempty"`
}

type gqlError struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType,omitempty"`
}

// Field matchers. The schema is fixed, so dispatch is by field name rather
// than a full query parser. Word boundaries keep "account" from matching
// "accounts" and operation names from matching fields.
var (
	reTokenRegistered = regexp.MustCompile(`\bgetTokenRegistered\b`)
	reRegisterToken   = regexp.MustCompile(`\bregisterToken\b`)
	reMe              = regexp.MustCompile(`\bme\b`)
	reAccounts        = regexp.MustCompile(`\baccounts\b`)
	reAccount         = regexp.MustCompile(`\baccount\b`)
)

// GraphQLHandler resolves the fixed operation set against the resolver
// layer. Each field in a request resolves independently; failures surface in
// the errors array with the field's data set to null, matching how managed
// GraphQL gateways report partial failures.
type GraphQLHandler struct {
	Resolvers *resolver.Resolvers
	Logger    *slog.Logger
}

func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, queryResponse{
			Errors: []gqlError{{Message: "invalid request body", ErrorType: string(resolver.KindBadRequest)}},
		})
		return
	}

	inv := invocationFromContext(ctx, req.Variables)
	resp := queryResponse{Data: map[string]any{}}
	matched := false

	if reTokenRegistered.MatchString(req.Query) {
		matched = true
		status, err := h.Resolvers.TokenRegistered(ctx, inv)
		if err != nil {
			resp.fail("getTokenRegistered", err)
		} else {
			resp.Data["getTokenRegistered"] = status.Registered
		}
	}

	if reRegisterToken.MatchString(req.Query) {
		matched = true
		token, _ := req.Variables["token"].(string)
		status, err := h.Resolvers.RegisterToken(ctx, inv, token)
		if err != nil {
			resp.fail("registerToken", err)
		} else {
			resp.Data["registerToken"] = status
		}
	}

	if reMe.MatchString(req.Query) {
		matched = true
		viewer, err := h.Resolvers.Me(ctx, inv)
		if err != nil {
			resp.fail("me", err)
		} else {
			resp.Data["me"] = viewer
		}
	}

	if reAccounts.MatchString(req.Query) {
		matched = true
		accounts, err := h.Resolvers.Accounts(ctx, inv)
		if err != nil {
			resp.fail("accounts", err)
		} else {
			resp.Data["accounts"] = accounts
		}
	} else if reAccount.MatchString(req.Query) {
		matched = true
		id, _ := req.Variables["id"].(string)
		account, err := h.Resolvers.AccountByID(ctx, inv, id)
		if err != nil {
			resp.fail("account", err)
		} else if account == nil {
			resp.Data["account"] = nil
		} else {
			resp.Data["account"] = account
		}
	}

	if !matched {
		httpx.WriteJSON(w, http.StatusBadRequest, queryResponse{
			Errors: []gqlError{{Message: "unknown operation", ErrorType: string(resolver.KindBadRequest)}},
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// fail nulls the field and records its classified error.
func (r *queryResponse) fail(field string, err error) {
	rerr := resolver.AsError(err)
	r.Data[field] = nil
	r.Errors = append(r.Errors, gqlError{Message: rerr.Message, ErrorType: string(rerr.Kind)})
}

// invocationFromContext builds a fresh per-request Invocation from the
// authenticated identity the authn middleware injected.
func invocationFromContext(ctx context.Context, variables map[string]any) *resolver.Invocation {
	viewer := domain.Viewer{Sub: httpx.UserIDFromContext(ctx)}
	if email := httpx.EmailFromContext(ctx); email != "" {
		viewer.Email = &email
	}

	args := make(map[string]string, len(variables))
	for k, v := range variables {
		if s, ok := v.(string); ok {
			args[k] = s
		}
	}

	return &resolver.Invocation{Viewer: viewer, Args: args}
}
