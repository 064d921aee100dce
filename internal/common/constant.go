package common

// AuthorizationHeaderName carries the bearer access token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// DefaultDisplayName is used for sessions whose user has no name set.
const DefaultDisplayName = "Admin User"

// AdminRole is the only role issued by the back-office.
const AdminRole = "admin"
