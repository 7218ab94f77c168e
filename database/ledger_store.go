package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripbudget/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerStore 基于 gorm 的账本存储。
// 每次写入在一个事务内完成：对预算行加行锁，执行修改，追加支出与份额，更新类别与预算。
type LedgerStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedgerStore 创建账本存储
func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db, now: time.Now}
}

// Apply 在预算行锁内执行 fn 并一次性提交
func (s *LedgerStore) Apply(ctx context.Context, itineraryID uint, fn func(budget *models.Budget) (*models.Expense, error)) (*models.Budget, *models.Expense, error) {
	var (
		committed models.Budget
		saved     *models.Expense
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockBudget(tx, itineraryID)
		if err != nil {
			return err
		}

		working := current.Clone()
		expense, err := fn(&working)
		if err != nil {
			return err
		}

		if expense != nil {
			e := expense.Clone()
			working.ExpenseCount++
			e.ItineraryID = itineraryID
			e.Seq = working.ExpenseCount
			for i := range e.Shares {
				e.Shares[i].ExpenseID = e.ID
				e.Shares[i].Position = i
			}
			if err := tx.Omit(clause.Associations).Create(&e).Error; err != nil {
				return fmt.Errorf("insert expense: %w", err)
			}
			if len(e.Shares) > 0 {
				if err := tx.Create(&e.Shares).Error; err != nil {
					return fmt.Errorf("insert shares: %w", err)
				}
			}
			saved = &e
		}

		if err := upsertCategories(tx, itineraryID, current.Categories, working.Categories); err != nil {
			return err
		}

		working.UpdatedAt = s.now().UTC()
		if err := tx.Model(&models.Budget{}).
			Where("itinerary_id = ?", itineraryID).
			Updates(map[string]interface{}{
				"currency":             working.Currency,
				"total":                working.Total,
				"spent":                working.Spent,
				"per_person":           working.PerPerson,
				"is_splitwise_enabled": working.IsSplitwiseEnabled,
				"expense_count":        working.ExpenseCount,
				"updated_at":           working.UpdatedAt,
			}).Error; err != nil {
			return fmt.Errorf("update budget: %w", err)
		}

		committed = working
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &committed, saved, nil
}

// lockBudget 读取并锁定预算行，不存在时先创建默认预算
func lockBudget(tx *gorm.DB, itineraryID uint) (models.Budget, error) {
	var b models.Budget
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("itinerary_id = ?", itineraryID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b = models.NewBudget(itineraryID)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&b).Error; err != nil {
			return b, fmt.Errorf("create budget: %w", err)
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("itinerary_id = ?", itineraryID).
			First(&b).Error
	}
	if err != nil {
		return b, fmt.Errorf("lock budget: %w", err)
	}

	cats, err := loadCategories(tx, itineraryID)
	if err != nil {
		return b, err
	}
	b.Categories = cats
	return b, nil
}

func loadCategories(db *gorm.DB, itineraryID uint) (map[string]decimal.Decimal, error) {
	var rows []models.BudgetCategory
	if err := db.Where("itinerary_id = ?", itineraryID).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	cats := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		cats[r.Name] = r.Amount
	}
	return cats, nil
}

// upsertCategories 只写入有变化的类别
func upsertCategories(tx *gorm.DB, itineraryID uint, before, after map[string]decimal.Decimal) error {
	changed := make([]models.BudgetCategory, 0, 1)
	probe := models.Budget{Categories: after}
	for _, name := range probe.CategoryNames() {
		amount := after[name]
		if prev, ok := before[name]; ok && prev.Equal(amount) {
			continue
		}
		changed = append(changed, models.BudgetCategory{ItineraryID: itineraryID, Name: name, Amount: amount})
	}
	if len(changed) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "itinerary_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&changed).Error
	if err != nil {
		return fmt.Errorf("upsert categories: %w", err)
	}
	return nil
}

// GetBudget 读取已提交的预算，尚未创建时返回默认预算
func (s *LedgerStore) GetBudget(ctx context.Context, itineraryID uint) (*models.Budget, error) {
	db := s.db.WithContext(ctx)
	var b models.Budget
	err := db.Where("itinerary_id = ?", itineraryID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		nb := models.NewBudget(itineraryID)
		return &nb, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	cats, err := loadCategories(db, itineraryID)
	if err != nil {
		return nil, err
	}
	b.Categories = cats
	return &b, nil
}

// ListExpenses 按 seq 升序返回完整账本
func (s *LedgerStore) ListExpenses(ctx context.Context, itineraryID uint) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.db.WithContext(ctx).
		Preload("Shares", orderedShares).
		Where("itinerary_id = ?", itineraryID).
		Order("seq ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// PageExpenses 按 seq 倒序分页
func (s *LedgerStore) PageExpenses(ctx context.Context, itineraryID uint, offset, limit int) ([]models.Expense, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Expense{}).Where("itinerary_id = ?", itineraryID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	var expenses []models.Expense
	err := db.Preload("Shares", orderedShares).
		Where("itinerary_id = ?", itineraryID).
		Order("seq DESC").
		Offset(offset).
		Limit(limit).
		Find(&expenses).Error
	if err != nil {
		return nil, 0, fmt.Errorf("page expenses: %w", err)
	}
	return expenses, total, nil
}

func orderedShares(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
