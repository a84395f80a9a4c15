// Package login implements the credential service: login orchestration
// with brute-force lockout, registration, and password changes. It owns
// the ordering of checks on the login path; the attempt tracker and the
// session registry do the counting and token work.
package login
