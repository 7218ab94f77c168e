package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"tripbudget/models"
)

// UpdateBudgetInput 预算总额与币种，Currency 为空时保持原值
type UpdateBudgetInput struct {
	Total    decimal.Decimal
	Currency string
}

// BudgetEditor 修改预算总额与分摊模式
type BudgetEditor struct {
	access   *AccessResolver
	store    LedgerStore
	notifier Notifier
	log      *slog.Logger
}

// NewBudgetEditor 创建预算编辑器
func NewBudgetEditor(log *slog.Logger, access *AccessResolver, store LedgerStore, notifier Notifier) *BudgetEditor {
	return &BudgetEditor{
		access:   access,
		store:    store,
		notifier: notifier,
		log:      log.With("service", "budget"),
	}
}

// UpdateTotals 设置预算总额与币种，不影响已花费金额与账本
func (e *BudgetEditor) UpdateTotals(ctx context.Context, itineraryID, actorID uint, in UpdateBudgetInput) (*models.Budget, error) {
	if in.Total.IsNegative() {
		return nil, models.NewValidationError("total", "预算不能为负数")
	}
	if err := ValidateAmount("total", in.Total); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency != "" && !isCurrencyCode(currency) {
		return nil, models.NewValidationError("currency", "币种必须为 3 位字母代码")
	}

	membership, err := e.access.RequireEditor(ctx, itineraryID, actorID)
	if err != nil {
		return nil, err
	}

	budget, _, err := e.store.Apply(ctx, itineraryID, func(b *models.Budget) (*models.Expense, error) {
		b.Total = in.Total
		if currency != "" {
			b.Currency = currency
		}
		if b.IsSplitwiseEnabled {
			b.PerPerson = PerPersonBudget(b.Total, membership.Count())
		}
		return nil, nil
	})
	if err != nil {
		return nil, storeError("update budget", err)
	}

	e.log.InfoContext(ctx, "budget updated",
		"itinerary_id", itineraryID,
		"actor_id", actorID,
		"total", budget.Total.String(),
		"currency", budget.Currency)

	e.broadcast(ctx, itineraryID, budget)
	return budget, nil
}

// SetSplitwise 开关分摊模式，开启时按当前成员数计算人均预算，关闭时人均为 0
func (e *BudgetEditor) SetSplitwise(ctx context.Context, itineraryID, actorID uint, enabled bool) (*models.Budget, error) {
	membership, err := e.access.RequireEditor(ctx, itineraryID, actorID)
	if err != nil {
		return nil, err
	}

	budget, _, err := e.store.Apply(ctx, itineraryID, func(b *models.Budget) (*models.Expense, error) {
		b.IsSplitwiseEnabled = enabled
		if enabled {
			b.PerPerson = PerPersonBudget(b.Total, membership.Count())
		} else {
			b.PerPerson = decimal.Zero
		}
		return nil, nil
	})
	if err != nil {
		return nil, storeError("toggle splitwise", err)
	}

	e.log.InfoContext(ctx, "splitwise toggled",
		"itinerary_id", itineraryID,
		"actor_id", actorID,
		"enabled", enabled,
		"per_person", budget.PerPerson.String())

	e.broadcast(ctx, itineraryID, budget)
	return budget, nil
}

func (e *BudgetEditor) broadcast(ctx context.Context, itineraryID uint, budget *models.Budget) {
	publish(ctx, e.log, e.notifier, itineraryID, EventBudgetUpdate, BudgetUpdateEvent{
		ItineraryID: itineraryID,
		Budget:      budget.Clone(),
	})
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
