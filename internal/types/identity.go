package types

// Identity is the verified caller extracted from a bearer token. Email is the
// owner key used to scope every persistence operation; Role is carried through
// from the issuer but grants nothing here.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}
