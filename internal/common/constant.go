package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultUserName is used when the identity provider has no display name
// for an account.
const DefaultUserName = "User"

// UntitledEntry is the title stored for entries saved without one.
const UntitledEntry = "Untitled Entry"
