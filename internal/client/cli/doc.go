// Package cli implements the siteadmin operator command line.
//
// Database commands (migrate, create-admin) talk to PostgreSQL directly.
// Content commands (whoami, list, get, create, update, delete, upload,
// stats, dashboard) sign in through the HTTP API with the typed client and
// sign out again when they finish. Passwords are always read from the
// terminal without echo.
package cli
