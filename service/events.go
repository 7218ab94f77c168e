package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"tripbudget/models"
)

// 行程频道事件名
const (
	EventNewExpense   = "new-expense"
	EventBudgetUpdate = "budget-update"
	EventSettlement   = "settlement"
)

// NewExpenseEvent new-expense 事件负载
type NewExpenseEvent struct {
	Expense ExpenseView `json:"expense"`
}

// BudgetUpdateEvent budget-update 事件负载
type BudgetUpdateEvent struct {
	ItineraryID uint          `json:"itinerary_id"`
	Budget      models.Budget `json:"budget"`
}

// SettlementEvent settlement 事件负载
type SettlementEvent struct {
	From      uint            `json:"from"`
	To        uint            `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	ExpenseID string          `json:"expense_id"`
}

// ExpenseView 附带成员展示信息的支出
type ExpenseView struct {
	models.Expense
	PaidByUser models.Profile `json:"paid_by_user"`
	Shares     []ShareView    `json:"shares"`
}

// ShareView 附带成员展示信息的份额
type ShareView struct {
	models.MemberShare
	Member models.Profile `json:"member"`
}

// DescribeExpense 解析支出涉及成员的展示信息，解析失败时只保留 ID
func DescribeExpense(ctx context.Context, profiles ProfileResolver, e *models.Expense) ExpenseView {
	ids := make([]uint, 0, len(e.Shares)+1)
	ids = append(ids, e.PaidBy)
	for _, s := range e.Shares {
		ids = append(ids, s.MemberID)
	}

	known, err := profiles.Profiles(ctx, ids)
	if err != nil {
		slog.WarnContext(ctx, "resolve member profiles failed", "expense_id", e.ID, "error", err)
		known = nil
	}
	lookup := func(id uint) models.Profile {
		if p, ok := known[id]; ok {
			return p
		}
		return models.Profile{ID: id}
	}

	view := ExpenseView{Expense: *e, PaidByUser: lookup(e.PaidBy), Shares: make([]ShareView, 0, len(e.Shares))}
	for _, s := range e.Shares {
		view.Shares = append(view.Shares, ShareView{MemberShare: s, Member: lookup(s.MemberID)})
	}
	return view
}

// publish 提交之后发送通知，不等待投递结果，失败只记录日志
func publish(ctx context.Context, log *slog.Logger, n Notifier, itineraryID uint, event string, payload any) {
	ctx = context.WithoutCancel(ctx)
	if err := n.Publish(ctx, itineraryID, event, payload); err != nil {
		log.WarnContext(ctx, "publish event failed",
			"itinerary_id", itineraryID,
			"event", event,
			"error", err)
	}
}
