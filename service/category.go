package service

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tripbudget/models"
)

// CategoryKey 类别名，为空时归入 other
func CategoryKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CategoryOther
	}
	return name
}

// AddToCategory 累加类别金额，首次使用时创建
func AddToCategory(b *models.Budget, name string, amount decimal.Decimal) {
	if b.Categories == nil {
		b.Categories = map[string]decimal.Decimal{}
	}
	key := CategoryKey(name)
	b.Categories[key] = b.Categories[key].Add(amount)
}

// CategoryTotal 类别汇总
type CategoryTotal struct {
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CategoryTotals 按金额降序（同额按名称）排列，附带占已花费的百分比
func CategoryTotals(b *models.Budget) []CategoryTotal {
	totals := make([]CategoryTotal, 0, len(b.Categories))
	for _, name := range b.CategoryNames() {
		amount := b.Categories[name]
		pct := decimal.Zero
		if b.Spent.IsPositive() {
			pct = amount.Div(b.Spent).Mul(decimal.NewFromInt(100)).Round(2)
		}
		totals = append(totals, CategoryTotal{Category: name, Total: amount, Percentage: pct})
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals
}
