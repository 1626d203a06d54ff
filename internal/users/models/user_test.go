package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "jobboard/pkg/domain"
)

func TestRoleOf(t *testing.T) {
	assert.Equal(t, id.RoleManager, RoleOf(&User{Role: id.RoleManager}))
	assert.Equal(t, id.Role(""), RoleOf(&User{Role: "root"}))
	assert.Equal(t, id.Role(""), RoleOf(nil))
}
