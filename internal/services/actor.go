package services

import (
	"cardapio/internal/apperror"
	"cardapio/internal/models"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// authorizeOwner allows admins and the owner of a resource.
func (a Actor) authorizeOwner(ownerID, resource string) error {
	if a.IsAdmin() || a.UserID == ownerID {
		return nil
	}
	return apperror.Authorization("not allowed to access %s", resource)
}
