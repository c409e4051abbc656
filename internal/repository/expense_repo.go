package repository

import (
	"context"
	"fmt"

	"nuoitoi/internal/domain"
	"nuoitoi/internal/models"

	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) ListByMonth(ctx context.Context, month string) ([]models.Expense, error) {
	var list []models.Expense
	err := r.db.WithContext(ctx).Where("month = ?", month).Order("percentage DESC").Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("%w: expenses %s: %v", domain.ErrStoreUnavailable, month, err)
	}
	return list, nil
}
