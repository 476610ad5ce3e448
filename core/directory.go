package core

// Badge is a named, voteable category of attestation curated on-chain.
type Badge struct {
	Name        string
	Description string
	Creator     string
}

// Attestation is an on-chain record of one address vouching for another
// regarding a named badge.
type Attestation struct {
	UID           string
	Issuer        string
	Recipient     string
	BadgeName     string
	Justification string
	Revocable     bool
}

// Profile is a community member record held by the REST backend.
type Profile struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GithubLogin string `json:"github_login,omitempty"`
}

// ProfileInput carries the user-editable profile fields. Validation happens
// before any network call; failures surface the literal reason string.
type ProfileInput struct {
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description" validate:"max=512"`
	GithubLogin string `json:"github_login,omitempty" validate:"omitempty,max=39"`
}
