package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nuoitoi/internal/domain"
	"nuoitoi/internal/models"

	"gorm.io/gorm"
)

// DonationAggregate is the on-demand summary of the ledger.
type DonationAggregate struct {
	TotalAmount      int64 `json:"total_amount"`
	DonationCount    int64 `json:"donation_count"`
	WeeklyDonorCount int64 `json:"weekly_donor_count"`
}

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Insert appends a donation and returns the row as stored.
func (r *DonationRepository) Insert(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	if d.Amount < domain.MinDonationAmount {
		return nil, fmt.Errorf("%w: amount %d below minimum %d", domain.ErrValidation, d.Amount, domain.MinDonationAmount)
	}
	if strings.TrimSpace(d.Name) == "" {
		d.Name = domain.AnonymousName
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateDonation
		}
		return nil, fmt.Errorf("%w: insert: %v", domain.ErrStoreUnavailable, err)
	}
	var out models.Donation
	if err := r.db.WithContext(ctx).First(&out, "id = ?", d.ID).Error; err != nil {
		return nil, fmt.Errorf("%w: read back %s: %v", domain.ErrStoreUnavailable, d.ID, err)
	}
	return &out, nil
}

// FindByOrderCode returns nil, nil when no webhook row exists for the order.
func (r *DonationRepository) FindByOrderCode(ctx context.Context, orderCode int64) (*models.Donation, error) {
	var d models.Donation
	err := r.db.WithContext(ctx).Where("order_code = ?", orderCode).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find order %d: %v", domain.ErrStoreUnavailable, orderCode, err)
	}
	return &d, nil
}

func (r *DonationRepository) ListRecent(ctx context.Context, limit int) ([]models.Donation, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	if limit > domain.MaxRecentLimit {
		limit = domain.MaxRecentLimit
	}
	var list []models.Donation
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", domain.ErrStoreUnavailable, err)
	}
	return list, nil
}

// AggregateStats sums every row; WeeklyDonorCount counts rows created at or after since.
func (r *DonationRepository) AggregateStats(ctx context.Context, since time.Time) (*DonationAggregate, error) {
	var agg DonationAggregate
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("COALESCE(SUM(amount), 0) AS total_amount, COUNT(*) AS donation_count, "+
			"COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS weekly_donor_count", since).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate: %v", domain.ErrStoreUnavailable, err)
	}
	return &agg, nil
}
