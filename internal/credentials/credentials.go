// Package credentials decides which credential material authenticates the
// current operation.
//
// Precedence is fixed: a direct access token (pre-authenticated, supplied
// via configuration) beats an email/password pair, which beats nothing.
// Resolution happens on every call so configuration changes are picked up
// immediately.
package credentials

// Configuration keys recognized by the resolver. The direct token is
// checked under two spellings; the first non-empty value wins.
const (
	KeyEmail       = "MONEYLOVER_EMAIL"
	KeyPassword    = "MONEYLOVER_PASSWORD"
	KeyAccessToken = "MONEYLOVER_ACCESS_TOKEN"
	KeyToken       = "MONEYLOVER_TOKEN"
)

// DirectIdentity is the sentinel identity used when a direct token is the
// active credential source. It never reaches the token store.
const DirectIdentity = "token"

// Kind discriminates the mutually exclusive credential variants.
type Kind int

const (
	// KindNone means no usable credential source is configured.
	KindNone Kind = iota

	// KindDirectToken is a pre-authenticated token from configuration.
	// It is never cached and never refreshed: no email/password exists
	// to re-derive it.
	KindDirectToken

	// KindIdentity is an email/password pair requiring a login exchange.
	KindIdentity
)

// Material is the outcome of one resolution. Exactly one variant is active:
// Token for KindDirectToken, Email+Secret for KindIdentity.
type Material struct {
	Kind   Kind
	Token  string
	Email  string
	Secret string
}

// Lookup reads one configuration key, returning the empty string when the
// key is unset.
type Lookup func(key string) string

// Resolver resolves credential material from a configuration lookup.
type Resolver struct {
	lookup Lookup
}

// NewResolver creates a Resolver backed by the given lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve evaluates the configured sources in precedence order and returns
// the winning material. A Material with KindNone is not an error; the
// caller decides whether absence is fatal.
func (r *Resolver) Resolve() Material {
	for _, key := range []string{KeyAccessToken, KeyToken} {
		if token := r.lookup(key); token != "" {
			return Material{Kind: KindDirectToken, Token: token}
		}
	}

	email := r.lookup(KeyEmail)
	secret := r.lookup(KeyPassword)
	if email != "" && secret != "" {
		return Material{Kind: KindIdentity, Email: email, Secret: secret}
	}

	return Material{Kind: KindNone}
}
