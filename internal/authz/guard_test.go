package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/whi-0404/TopCV-sub000/internal/model"
)

func TestAllow(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	assert.True(t, Allow(Principal{UserID: owner}, owner))
	assert.False(t, Allow(Principal{UserID: stranger}, owner))
	assert.False(t, Allow(Principal{}, owner))
}

func TestHasRole(t *testing.T) {
	p := Principal{UserID: uuid.New(), Role: model.RoleEmployer}

	assert.True(t, HasRole(p, model.RoleEmployer))
	assert.True(t, HasRole(p, model.RoleAdmin, model.RoleEmployer))
	assert.False(t, HasRole(p, model.RoleAdmin))
	assert.False(t, HasRole(p))
}

func TestAdminDoesNotInheritOwnership(t *testing.T) {
	owner := uuid.New()
	admin := Principal{UserID: uuid.New(), Role: model.RoleAdmin}

	// Moderation rights come from HasRole, never from Allow.
	assert.False(t, Allow(admin, owner))
	assert.True(t, HasRole(admin, model.RoleAdmin))
}

func TestPrincipalFromUser(t *testing.T) {
	u := model.User{ID: uuid.New(), Role: model.RoleApplicant}
	p := PrincipalFromUser(u)

	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, model.RoleApplicant, p.Role)
	assert.Nil(t, p.CompanyID)
}
