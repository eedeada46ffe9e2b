// Package authz decides whether an acting principal may touch a resource.
// It is pure and stateless; every mutating workflow operation calls exactly
// one of these checks before reading or writing anything else.
package authz

import (
	"github.com/google/uuid"

	"github.com/whi-0404/TopCV-sub000/internal/model"
)

// Principal is the resolved identity of the caller. It is always passed
// explicitly, there is no ambient "current user".
type Principal struct {
	UserID    uuid.UUID
	Role      string
	CompanyID *uint
}

// PrincipalFromUser builds a Principal from a loaded user record. The
// company id is attached separately where the caller has it.
func PrincipalFromUser(u model.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// Allow returns true when the principal owns the resource identified by
// ownerID.
func Allow(p Principal, ownerID uuid.UUID) bool {
	return p.UserID == ownerID
}

// HasRole returns true when the principal holds any of the given roles.
func HasRole(p Principal, roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
