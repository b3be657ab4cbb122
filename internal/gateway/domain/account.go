package domain

// Viewer is the verified identity a resolver invocation runs as.
type Viewer struct {
	Sub   string  `json:"sub"`
	Email *string `json:"email,omitempty"`
}

// Account is the caller-facing shape mapped from upstream account records.
// Optional attributes are pointers so missing upstream fields serialize as
// null instead of zero values.
type Account struct {
	ID                      string  `json:"id"`
	DisplayName             *string `json:"displayName"`
	AccountType             *string `json:"accountType"`
	OwnershipType           *string `json:"ownershipType"`
	BalanceValue            *string `json:"balanceValue"`
	BalanceValueInBaseUnits *int64  `json:"balanceValueInBaseUnits"`
	CurrencyCode            *string `json:"currencyCode"`
	CreatedAt               *string `json:"createdAt"`
}
