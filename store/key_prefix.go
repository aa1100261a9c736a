package store

// Declare database key prefix for objects
const (
	PrefixAccount = "account:"
	PrefixNonce   = "nonce:"
)
