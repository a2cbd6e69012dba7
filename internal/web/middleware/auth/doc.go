// Package auth provides the session middleware of the API. It loads the user of the
// session cookie or bearer token into the request locals.
package auth
