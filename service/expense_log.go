package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tripbudget/models"
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ExpensePage 账本分页结果
type ExpensePage struct {
	Items    []ExpenseView `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// ExpenseLog 只读账本查询，任意成员可用
type ExpenseLog struct {
	access   *AccessResolver
	store    LedgerStore
	profiles ProfileResolver
}

// NewExpenseLog 创建账本查询
func NewExpenseLog(access *AccessResolver, store LedgerStore, profiles ProfileResolver) *ExpenseLog {
	return &ExpenseLog{access: access, store: store, profiles: profiles}
}

// Page 最新条目在前
func (l *ExpenseLog) Page(ctx context.Context, itineraryID, actorID uint, page, pageSize int) (*ExpensePage, error) {
	if _, err := l.access.RequireMember(ctx, itineraryID, actorID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	expenses, total, err := l.store.PageExpenses(ctx, itineraryID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, storeError("page expenses", err)
	}

	items := make([]ExpenseView, 0, len(expenses))
	for i := range expenses {
		items = append(items, DescribeExpense(ctx, l.profiles, &expenses[i]))
	}
	return &ExpensePage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// LedgerSnapshot 导出用的完整账本
type LedgerSnapshot struct {
	Budget   models.Budget
	Expenses []models.Expense
	Profiles map[uint]models.Profile
}

// Snapshot 按追加顺序返回完整账本与涉及成员的展示信息
func (l *ExpenseLog) Snapshot(ctx context.Context, itineraryID, actorID uint) (*LedgerSnapshot, error) {
	if _, err := l.access.RequireMember(ctx, itineraryID, actorID); err != nil {
		return nil, err
	}
	budget, err := l.store.GetBudget(ctx, itineraryID)
	if err != nil {
		return nil, storeError("load budget", err)
	}
	expenses, err := l.store.ListExpenses(ctx, itineraryID)
	if err != nil {
		return nil, storeError("load expenses", err)
	}

	seen := map[uint]bool{}
	ids := []uint{}
	add := func(id uint) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range expenses {
		add(e.PaidBy)
		for _, s := range e.Shares {
			add(s.MemberID)
		}
	}
	profiles, err := l.profiles.Profiles(ctx, ids)
	if err != nil {
		return nil, storeError("resolve profiles", err)
	}

	return &LedgerSnapshot{Budget: budget.Clone(), Expenses: expenses, Profiles: profiles}, nil
}

// LedgerSummary 时间范围内的花费汇总
type LedgerSummary struct {
	Currency     string          `json:"currency"`
	Spent        decimal.Decimal `json:"spent"`
	Settled      decimal.Decimal `json:"settled"`
	ExpenseCount int             `json:"expense_count"`
	Categories   []CategoryTotal `json:"categories"`
}

// Summary 统计 [from, to] 内的支出与结算，零值表示不限。
// 不限时间时花费与类别直接取预算上的累计值。
func (l *ExpenseLog) Summary(ctx context.Context, itineraryID, actorID uint, from, to time.Time) (*LedgerSummary, error) {
	if _, err := l.access.RequireMember(ctx, itineraryID, actorID); err != nil {
		return nil, err
	}
	budget, err := l.store.GetBudget(ctx, itineraryID)
	if err != nil {
		return nil, storeError("load budget", err)
	}
	expenses, err := l.store.ListExpenses(ctx, itineraryID)
	if err != nil {
		return nil, storeError("load expenses", err)
	}

	inRange := func(t time.Time) bool {
		return (from.IsZero() || !t.Before(from)) && (to.IsZero() || !t.After(to))
	}

	window := models.Budget{Spent: decimal.Zero}
	settled := decimal.Zero
	count := 0
	for i := range expenses {
		e := &expenses[i]
		if !inRange(e.Timestamp) {
			continue
		}
		if e.IsSettlement() {
			settled = settled.Add(e.Amount)
			continue
		}
		count++
		window.Spent = window.Spent.Add(e.Amount)
		AddToCategory(&window, e.Category, e.Amount)
	}

	if from.IsZero() && to.IsZero() {
		window = budget.Clone()
	}
	return &LedgerSummary{
		Currency:     budget.Currency,
		Spent:        window.Spent,
		Settled:      settled,
		ExpenseCount: count,
		Categories:   CategoryTotals(&window),
	}, nil
}
