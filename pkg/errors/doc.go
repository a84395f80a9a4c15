// Package errors provides the structured error taxonomy shared by every
// public operation of the portal authentication backend. Errors carry a
// stable code, a client-safe message, and optional details; the HTTP
// boundary maps codes to status codes with MapErrorCodeToHTTPStatus.
package errors
