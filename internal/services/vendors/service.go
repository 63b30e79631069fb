package vendors

import (
	"context"
	"errors"

	"github.com/warehub-io/warehub/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrVendorNotFound is returned when the vendor ID does not exist
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrVendorHasProducts blocks deletion of a vendor with supply links
	ErrVendorHasProducts = errors.New("cannot delete vendor with linked products")

	// ErrDuplicateVendorProduct is returned on a second add of the same
	// (vendor, product) association
	ErrDuplicateVendorProduct = errors.New("vendor already supplies this product")

	// ErrLinkNotFound is returned when the association does not exist
	ErrLinkNotFound = errors.New("vendor product link not found")

	// ErrContactNotFound is returned when the contact ID does not exist
	ErrContactNotFound = errors.New("vendor contact not found")
)

// Service owns vendors, their product associations and contacts
type Service struct {
	db *gorm.DB
}

// NewService creates a new vendor catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns vendors, optionally filtered by status and main category
func (s *Service) List(ctx context.Context, status, mainCategory string) ([]models.Vendor, error) {
	q := s.db.WithContext(ctx).Model(&models.Vendor{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if mainCategory != "" {
		q = q.Where("main_category = ?", mainCategory)
	}
	var list []models.Vendor
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns one vendor with contacts and product links preloaded
func (s *Service) Get(ctx context.Context, id uint) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.WithContext(ctx).
		Preload("Contacts").
		Preload("Products").
		Preload("Products.Product").
		First(&vendor, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// Create persists a new vendor
func (s *Service) Create(ctx context.Context, vendor *models.Vendor) error {
	if vendor.Status == "" {
		vendor.Status = models.VendorStatusActive
	}
	return s.db.WithContext(ctx).Create(vendor).Error
}

// Update saves changed vendor fields
func (s *Service) Update(ctx context.Context, vendor *models.Vendor) error {
	return s.db.WithContext(ctx).Save(vendor).Error
}

// Delete removes a vendor. Fails with ErrVendorHasProducts while supply
// links exist, mirroring the warehouse deletion guard.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vendor models.Vendor
		if err := tx.First(&vendor, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrVendorNotFound
			}
			return err
		}

		var links int64
		if err := tx.Model(&models.VendorProduct{}).Where("vendor_id = ?", id).Count(&links).Error; err != nil {
			return err
		}
		if links > 0 {
			return ErrVendorHasProducts
		}

		if err := tx.Where("vendor_id = ?", id).Delete(&models.VendorContact{}).Error; err != nil {
			return err
		}
		return tx.Delete(&vendor).Error
	})
}

// AddProduct links a product to a vendor. The (vendor, product) pair is
// unique; a duplicate add is rejected.
func (s *Service) AddProduct(ctx context.Context, link *models.VendorProduct) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.VendorProduct{}).
			Where("vendor_id = ? AND product_id = ?", link.VendorID, link.ProductID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateVendorProduct
		}
		return tx.Create(link).Error
	})
}

// RemoveProduct unlinks a product from a vendor
func (s *Service) RemoveProduct(ctx context.Context, vendorID, productID uint) error {
	res := s.db.WithContext(ctx).
		Where("vendor_id = ? AND product_id = ?", vendorID, productID).
		Delete(&models.VendorProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// ProductVendors returns every vendor supplying a product, preferred first
func (s *Service) ProductVendors(ctx context.Context, productID uint) ([]models.VendorProduct, error) {
	var links []models.VendorProduct
	err := s.db.WithContext(ctx).
		Preload("Vendor").
		Where("product_id = ?", productID).
		Order("is_preferred DESC").
		Order("price ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Contacts returns the contacts of a vendor
func (s *Service) Contacts(ctx context.Context, vendorID uint) ([]models.VendorContact, error) {
	var contacts []models.VendorContact
	err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("is_primary DESC").
		Order("name ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// AddContact creates a contact for a vendor
func (s *Service) AddContact(ctx context.Context, contact *models.VendorContact) error {
	return s.db.WithContext(ctx).Create(contact).Error
}

// UpdateContact saves changed contact fields
func (s *Service) UpdateContact(ctx context.Context, contact *models.VendorContact) error {
	return s.db.WithContext(ctx).Save(contact).Error
}

// DeleteContact removes a contact
func (s *Service) DeleteContact(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.VendorContact{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}

// Stats summarizes the vendor base for the dashboard
type Stats struct {
	Total      int64            `json:"total"`
	Active     int64            `json:"active"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByCategory map[string]int64 `json:"by_category"`
}

// GetStats aggregates vendor counts by status and main category
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStatus:   map[string]int64{},
		ByCategory: map[string]int64{},
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Vendor{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Vendor{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var byStatus []bucket
	err := db.Model(&models.Vendor{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	var byCategory []bucket
	err = db.Model(&models.Vendor{}).
		Select("main_category AS key, COUNT(*) AS count").
		Group("main_category").
		Scan(&byCategory).Error
	if err != nil {
		return nil, err
	}
	for _, b := range byCategory {
		stats.ByCategory[b.Key] = b.Count
	}

	return stats, nil
}
