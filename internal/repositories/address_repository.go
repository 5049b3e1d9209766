package repositories

import (
	"context"
	"fmt"

	"cardapio/internal/apperror"
	"cardapio/internal/models"

	"gorm.io/gorm"
)

// AddressRepository defines the interface for address data access.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
	GetByID(ctx context.Context, id string) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
	// Delete fails with a conflict while any order references the address.
	Delete(ctx context.Context, id string) error
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

func (r *GORMAddressRepository) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses of user %s: %w", userID, err)
	}
	return addresses, nil
}

func (r *GORMAddressRepository) GetByID(ctx context.Context, id string) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get", "address", id)
	}
	return &address, nil
}

func (r *GORMAddressRepository) Create(ctx context.Context, address *models.Address) error {
	if address.ID == "" {
		address.ID = newID()
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(address).Error; err != nil {
		return translate(err, "create", "address", address.ID)
	}
	return nil
}

func (r *GORMAddressRepository) Update(ctx context.Context, address *models.Address) error {
	res := r.db.WithContext(ctx).Model(&models.Address{}).Where("id = ?", address.ID).Updates(map[string]interface{}{
		"street":   address.Street,
		"number":   address.Number,
		"district": address.District,
		"city":     address.City,
		"state":    address.State,
		"zip_code": address.ZipCode,
	})
	if res.Error != nil {
		return translate(res.Error, "update", "address", address.ID)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("address with ID %s not found for update", address.ID)
	}
	return nil
}

func (r *GORMAddressRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Order{}).Where("address_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count orders for address %s: %w", id, err)
		}
		if refs > 0 {
			return apperror.Conflict("address %s is used by %d order(s) and cannot be deleted", id, refs)
		}
		res := tx.Delete(&models.Address{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "delete", "address", id)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("address with ID %s not found for deletion", id)
		}
		return nil
	})
}
