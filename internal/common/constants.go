package common

// AuthHeaderName is the HTTP header carrying the bearer session token on
// requests to the sync API.
const AuthHeaderName = "Authorization"

// BearerPrefix precedes the token value in AuthHeaderName.
const BearerPrefix = "Bearer "
