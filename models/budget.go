package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency 预算默认币种
const DefaultCurrency = "USD"

// Budget 行程预算（每个行程一条）
// Spent 恒等于所有非结算支出金额之和，Categories 各项之和恒等于 Spent
type Budget struct {
	ItineraryID        uint            `json:"itinerary_id" gorm:"primaryKey;autoIncrement:false"`
	Currency           string          `json:"currency" gorm:"size:3;not null;default:USD"`
	Total              decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null;default:0"`
	Spent              decimal.Decimal `json:"spent" gorm:"type:decimal(12,2);not null;default:0"`
	PerPerson          decimal.Decimal `json:"per_person" gorm:"type:decimal(12,2);not null;default:0"`
	IsSplitwiseEnabled bool            `json:"is_splitwise_enabled" gorm:"not null;default:false"`
	// ExpenseCount 账本条目数，用于分配追加序号
	ExpenseCount uint64                     `json:"expense_count" gorm:"not null;default:0"`
	Categories   map[string]decimal.Decimal `json:"categories" gorm:"-"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// NewBudget 新建行程时的默认预算
func NewBudget(itineraryID uint) Budget {
	return Budget{
		ItineraryID: itineraryID,
		Currency:    DefaultCurrency,
		Categories:  map[string]decimal.Decimal{},
	}
}

// Remaining 剩余预算
func (b *Budget) Remaining() decimal.Decimal {
	return b.Total.Sub(b.Spent)
}

// Clone 深拷贝（复制 Categories）
func (b Budget) Clone() Budget {
	cats := make(map[string]decimal.Decimal, len(b.Categories))
	for k, v := range b.Categories {
		cats[k] = v
	}
	b.Categories = cats
	return b
}

// CategoryNames 按名称排序的类别列表
func (b *Budget) CategoryNames() []string {
	names := make([]string, 0, len(b.Categories))
	for name := range b.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BudgetCategory 类别累计金额，首次使用某类别时创建
type BudgetCategory struct {
	ItineraryID uint            `gorm:"primaryKey;autoIncrement:false"`
	Name        string          `gorm:"primaryKey;size:50"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// TableName 设置表名
func (BudgetCategory) TableName() string {
	return "budget_categories"
}
