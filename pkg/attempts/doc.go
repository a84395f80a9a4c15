// Package attempts tracks login attempts and derives brute-force lockout
// state. Lockout is a pure function of recent failed attempt rows for a
// normalized matricula; nothing is persisted as a locked flag.
package attempts
