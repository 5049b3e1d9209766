package services

import (
	"context"
	"strings"

	"cardapio/internal/apperror"
	"cardapio/internal/models"
	"cardapio/internal/repositories"
)

// AddressService manages the delivery addresses of a user.
type AddressService struct {
	addressRepo repositories.AddressRepository
	userRepo    repositories.UserRepository
}

// NewAddressService creates a new AddressService.
func NewAddressService(addressRepo repositories.AddressRepository, userRepo repositories.UserRepository) *AddressService {
	return &AddressService{addressRepo: addressRepo, userRepo: userRepo}
}

// List returns the addresses of userID.
func (s *AddressService) List(ctx context.Context, actor Actor, userID string) ([]models.Address, error) {
	if err := actor.authorizeOwner(userID, "addresses of user "+userID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.addressRepo.ListByUser(ctx, userID)
}

// Get returns the address only when it belongs to userID.
func (s *AddressService) Get(ctx context.Context, actor Actor, userID, id string) (*models.Address, error) {
	if err := actor.authorizeOwner(userID, "addresses of user "+userID); err != nil {
		return nil, err
	}
	address, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, apperror.NotFound("address with ID %s not found", id)
	}
	return address, nil
}

// Create stores address for userID, which must exist.
func (s *AddressService) Create(ctx context.Context, actor Actor, userID string, address *models.Address) error {
	if err := actor.authorizeOwner(userID, "addresses of user "+userID); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	address.ID = ""
	address.UserID = userID
	normalizeAddress(address)
	return s.addressRepo.Create(ctx, address)
}

// Update overwrites the fields of an address owned by userID.
func (s *AddressService) Update(ctx context.Context, actor Actor, userID, id string, patch models.Address) (*models.Address, error) {
	address, err := s.Get(ctx, actor, userID, id)
	if err != nil {
		return nil, err
	}
	address.Street = patch.Street
	address.Number = patch.Number
	address.District = patch.District
	address.City = patch.City
	address.State = patch.State
	address.ZipCode = patch.ZipCode
	normalizeAddress(address)
	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// Delete fails with a conflict when an order still points at the address.
func (s *AddressService) Delete(ctx context.Context, actor Actor, userID, id string) error {
	if _, err := s.Get(ctx, actor, userID, id); err != nil {
		return err
	}
	return s.addressRepo.Delete(ctx, id)
}

func normalizeAddress(a *models.Address) {
	a.Street = strings.TrimSpace(a.Street)
	a.Number = strings.TrimSpace(a.Number)
	a.District = strings.TrimSpace(a.District)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	a.ZipCode = strings.TrimSpace(a.ZipCode)
}
