package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Order(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleTeacher))
	assert.True(t, RoleAdmin.AtLeast(RoleStudent))
	assert.True(t, RoleTeacher.AtLeast(RoleStudent))
	assert.True(t, RoleStudent.AtLeast(RoleStudent))

	assert.False(t, RoleStudent.AtLeast(RoleTeacher))
	assert.False(t, RoleTeacher.AtLeast(RoleAdmin))

	// Unknown roles rank below every valid role
	assert.False(t, Role("janitor").AtLeast(RoleStudent))
	assert.True(t, RoleStudent.AtLeast(Role("janitor")))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("")
	assert.True(t, ok)
	assert.Equal(t, RoleStudent, role)

	role, ok = ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestNormalizeMatricula(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeMatricula("abc123"))
	assert.Equal(t, "ABC123", NormalizeMatricula("  ABC123  "))
	assert.Equal(t, "ABC123", NormalizeMatricula("\tabc123\n"))
}

func TestValidMatricula(t *testing.T) {
	assert.True(t, ValidMatricula("ABC123"))
	assert.True(t, ValidMatricula("A1B2"))
	assert.True(t, ValidMatricula("12345678901234567890"))

	assert.False(t, ValidMatricula("abc123"))     // lower case
	assert.False(t, ValidMatricula("AB1"))        // too short
	assert.False(t, ValidMatricula("AB C123"))    // whitespace
	assert.False(t, ValidMatricula("ABC-123"))    // punctuation
	assert.False(t, ValidMatricula("123456789012345678901")) // too long
}
