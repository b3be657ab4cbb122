// Package domain holds the gateway's core types, free of transport and
// storage concerns.
package domain

import "time"

// Secret record keys. One record per (subject, kind); SecretSKUpBank is the
// only kind today.
const (
	SecretPKPrefix = "USER#"
	SecretSKUpBank = "TOKEN#UPBANK"
)

// UserPK derives the partition key for a subject.
func UserPK(sub string) string {
	return SecretPKPrefix + sub
}

// Secret is a stored per-user credential for the external API. The raw token
// never leaves the store layer unsealed except into the resolver pipeline;
// callers only ever see TokenStatus.
type Secret struct {
	PK        string
	SK        string
	Token     string
	UpdatedAt time.Time
}

// TokenStatus is the caller-visible projection of a Secret.
type TokenStatus struct {
	Registered bool       `json:"registered"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}
