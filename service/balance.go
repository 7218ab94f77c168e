package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"tripbudget/models"
)

// MemberBalance 成员余额：Net = Owed - Owes
type MemberBalance struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Paid    decimal.Decimal `json:"paid"`
	Owes    decimal.Decimal `json:"owes"`
	Owed    decimal.Decimal `json:"owed"`
	Net     decimal.Decimal `json:"net"`
	Details []BalanceDetail `json:"details"`
	// Former 已不在成员列表中但仍出现在账本里
	Former bool `json:"former,omitempty"`
}

// BalanceDetail 与另一成员之间的往来，正数表示对方欠自己
type BalanceDetail struct {
	ID     uint            `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// MemberView 成员展示信息
type MemberView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// BudgetSummary 预算概览
type BudgetSummary struct {
	Total              decimal.Decimal `json:"total"`
	PerPerson          decimal.Decimal `json:"per_person"`
	Spent              decimal.Decimal `json:"spent"`
	Remaining          decimal.Decimal `json:"remaining"`
	Currency           string          `json:"currency"`
	IsSplitwiseEnabled bool            `json:"is_splitwise_enabled"`
}

// Breakdown 账本视图
type Breakdown struct {
	Budget            BudgetSummary              `json:"budget"`
	Members           []MemberView               `json:"members"`
	Balances          []MemberBalance            `json:"balances"`
	CategoryBreakdown map[string]decimal.Decimal `json:"category_breakdown"`
}

type balanceAcc struct {
	paid, owes, owed decimal.Decimal
	details          map[uint]decimal.Decimal
	former           bool
}

type balanceBook struct {
	order []uint
	accs  map[uint]*balanceAcc
}

func (b *balanceBook) get(id uint, former bool) *balanceAcc {
	if a, ok := b.accs[id]; ok {
		return a
	}
	a := &balanceAcc{details: map[uint]decimal.Decimal{}, former: former}
	b.accs[id] = a
	b.order = append(b.order, id)
	return a
}

// CalculateBalances 按追加顺序扫描一次账本。
// 只有未结清的份额计入：份额成员 owes 增加，付款人 owed 增加，双方往来对称调整。
// 账本中出现但不在 memberIDs 内的成员会追加在末尾并标记 Former。
func CalculateBalances(memberIDs []uint, expenses []models.Expense) []MemberBalance {
	book := &balanceBook{accs: make(map[uint]*balanceAcc, len(memberIDs))}
	for _, id := range memberIDs {
		book.get(id, false)
	}

	for i := range expenses {
		e := &expenses[i]
		payer := book.get(e.PaidBy, true)
		payer.paid = payer.paid.Add(e.Amount)

		for _, s := range e.Shares {
			if s.Settled {
				continue
			}
			member := book.get(s.MemberID, true)
			member.owes = member.owes.Add(s.Amount)
			payer.owed = payer.owed.Add(s.Amount)
			if s.MemberID != e.PaidBy {
				member.details[e.PaidBy] = member.details[e.PaidBy].Sub(s.Amount)
				payer.details[s.MemberID] = payer.details[s.MemberID].Add(s.Amount)
			}
		}
	}

	balances := make([]MemberBalance, 0, len(book.order))
	for _, id := range book.order {
		a := book.accs[id]
		details := make([]BalanceDetail, 0, len(book.order)-1)
		for _, other := range book.order {
			if other == id {
				continue
			}
			details = append(details, BalanceDetail{ID: other, Amount: a.details[other]})
		}
		balances = append(balances, MemberBalance{
			ID:      id,
			Paid:    a.paid,
			Owes:    a.owes,
			Owed:    a.owed,
			Net:     a.owed.Sub(a.owes),
			Details: details,
			Former:  a.former,
		})
	}
	return balances
}

// BalanceCalculator 每次都从已提交的账本重新计算，不缓存
type BalanceCalculator struct {
	access   *AccessResolver
	store    LedgerStore
	profiles ProfileResolver
	log      *slog.Logger
}

// NewBalanceCalculator 创建余额计算器
func NewBalanceCalculator(log *slog.Logger, access *AccessResolver, store LedgerStore, profiles ProfileResolver) *BalanceCalculator {
	return &BalanceCalculator{
		access:   access,
		store:    store,
		profiles: profiles,
		log:      log.With("service", "balance"),
	}
}

// Compute 任意成员可查看
func (c *BalanceCalculator) Compute(ctx context.Context, itineraryID, actorID uint) (*Breakdown, error) {
	membership, err := c.access.RequireMember(ctx, itineraryID, actorID)
	if err != nil {
		return nil, err
	}

	budget, err := c.store.GetBudget(ctx, itineraryID)
	if err != nil {
		return nil, storeError("load budget", err)
	}
	expenses, err := c.store.ListExpenses(ctx, itineraryID)
	if err != nil {
		return nil, storeError("load expenses", err)
	}

	memberIDs := membership.MemberIDs()
	balances := CalculateBalances(memberIDs, expenses)

	ids := make([]uint, 0, len(balances))
	for _, b := range balances {
		ids = append(ids, b.ID)
	}
	profiles, err := c.profiles.Profiles(ctx, ids)
	if err != nil {
		return nil, storeError("resolve profiles", err)
	}
	nameOf := func(id uint) string {
		return profiles[id].DisplayName()
	}

	for i := range balances {
		balances[i].Name = nameOf(balances[i].ID)
		for j := range balances[i].Details {
			balances[i].Details[j].Name = nameOf(balances[i].Details[j].ID)
		}
	}

	members := make([]MemberView, 0, len(memberIDs))
	for _, id := range memberIDs {
		p := profiles[id]
		members = append(members, MemberView{
			ID:    id,
			Name:  p.DisplayName(),
			Email: p.Email,
			Role:  membership.RoleOf(id),
		})
	}

	categories := budget.Clone().Categories

	c.log.DebugContext(ctx, "breakdown computed",
		"itinerary_id", itineraryID,
		"expenses", len(expenses),
		"members", len(members))

	return &Breakdown{
		Budget: BudgetSummary{
			Total:              budget.Total,
			PerPerson:          budget.PerPerson,
			Spent:              budget.Spent,
			Remaining:          budget.Remaining(),
			Currency:           budget.Currency,
			IsSplitwiseEnabled: budget.IsSplitwiseEnabled,
		},
		Members:           members,
		Balances:          balances,
		CategoryBreakdown: categories,
	}, nil
}
