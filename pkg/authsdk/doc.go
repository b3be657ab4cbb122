// Package authsdk is the client-side SDK for the upgate service. It covers
// the OAuth2 Authorization Code flow with PKCE against the identity provider,
// the tab-scoped session/token lifecycle, and a typed client for the
// gateway's query endpoint (registration status, secret registration,
// identity and account queries).
//
// The package is transport-agnostic about where session state lives: callers
// supply a Storage implementation that models the lifetime they want
// (in browser embedding this is the tab's session storage; tests and CLI
// tooling use MemoryStorage).
package authsdk
