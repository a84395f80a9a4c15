package users

import (
	"regexp"
	"strings"
)

// matriculaPattern matches a normalized matricula: 4-20 upper-case alphanumerics
var matriculaPattern = regexp.MustCompile(`^[A-Z0-9]{4,20}$`)

// NormalizeMatricula trims and upper-cases a matricula. Every read and write
// keyed by matricula goes through this so case or whitespace variants cannot
// split or bypass the lockout window.
func NormalizeMatricula(matricula string) string {
	return strings.ToUpper(strings.TrimSpace(matricula))
}

// ValidMatricula reports whether a normalized matricula has the required shape
func ValidMatricula(matricula string) bool {
	return matriculaPattern.MatchString(matricula)
}
