package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripbudget/models"
)

// RecordExpenseInput 记录支出参数，MemberIDs 为空时由全体成员分摊
type RecordExpenseInput struct {
	Title     string
	Amount    decimal.Decimal
	Category  string
	Notes     string
	MemberIDs []uint
}

// ExpenseRecorder 校验并追加支出，同时更新花费、类别汇总与人均预算
type ExpenseRecorder struct {
	access   *AccessResolver
	store    LedgerStore
	profiles ProfileResolver
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewExpenseRecorder 创建支出记录器
func NewExpenseRecorder(log *slog.Logger, access *AccessResolver, store LedgerStore, profiles ProfileResolver, notifier Notifier) *ExpenseRecorder {
	return &ExpenseRecorder{
		access:   access,
		store:    store,
		profiles: profiles,
		notifier: notifier,
		log:      log.With("service", "expense"),
		now:      time.Now,
	}
}

// Record 由操作者付款记录一笔支出
func (r *ExpenseRecorder) Record(ctx context.Context, itineraryID, actorID uint, in RecordExpenseInput) (*models.Expense, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("title", "标题不能为空")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLen {
		return nil, models.NewValidationError("title", fmt.Sprintf("标题不能超过 %d 个字符", models.MaxTitleLen))
	}
	if !in.Amount.IsPositive() {
		return nil, models.NewValidationError("amount", "金额必须大于 0")
	}
	if err := ValidateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	category := CategoryKey(in.Category)
	if category == models.CategorySettlement {
		return nil, models.NewValidationError("category", "settlement 为保留类别")
	}
	if utf8.RuneCountInString(category) > models.MaxCategoryLen {
		return nil, models.NewValidationError("category", fmt.Sprintf("类别不能超过 %d 个字符", models.MaxCategoryLen))
	}
	notes := strings.TrimSpace(in.Notes)
	if utf8.RuneCountInString(notes) > models.MaxNotesLen {
		return nil, models.NewValidationError("notes", fmt.Sprintf("备注不能超过 %d 个字符", models.MaxNotesLen))
	}

	membership, err := r.access.RequireEditor(ctx, itineraryID, actorID)
	if err != nil {
		return nil, err
	}

	participants, err := resolveParticipants(membership, in.MemberIDs)
	if err != nil {
		return nil, err
	}
	shares, err := SplitEvenly(in.Amount, participants, actorID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ID:          uuid.NewString(),
		ItineraryID: itineraryID,
		Title:       title,
		Amount:      in.Amount,
		PaidBy:      actorID,
		Category:    category,
		Notes:       notes,
		Timestamp:   r.now().UTC(),
		Shares:      shares,
	}

	_, saved, err := r.store.Apply(ctx, itineraryID, func(b *models.Budget) (*models.Expense, error) {
		spent := b.Spent.Add(expense.Amount)
		if spent.GreaterThan(MaxAmount) {
			return nil, models.NewValidationError("amount", "累计支出超出上限 "+MaxAmount.StringFixed(MinorUnitExp))
		}
		b.Spent = spent
		AddToCategory(b, expense.Category, expense.Amount)
		if b.IsSplitwiseEnabled {
			b.PerPerson = PerPersonBudget(b.Total, membership.Count())
		}
		return expense, nil
	})
	if err != nil {
		return nil, storeError("record expense", err)
	}

	r.log.InfoContext(ctx, "expense recorded",
		"itinerary_id", itineraryID,
		"expense_id", saved.ID,
		"seq", saved.Seq,
		"amount", saved.Amount.String(),
		"category", saved.Category,
		"participants", len(saved.Shares))

	publish(ctx, r.log, r.notifier, itineraryID, EventNewExpense, NewExpenseEvent{
		Expense: DescribeExpense(ctx, r.profiles, saved),
	})
	return saved, nil
}

// resolveParticipants 未指定时为全体成员（所有者在前），指定时去重并校验均为成员
func resolveParticipants(m *models.Membership, memberIDs []uint) ([]uint, error) {
	if len(memberIDs) == 0 {
		return m.MemberIDs(), nil
	}
	seen := make(map[uint]bool, len(memberIDs))
	participants := make([]uint, 0, len(memberIDs))
	for _, id := range memberIDs {
		if !m.IsMember(id) {
			return nil, models.NewValidationError("member_ids", fmt.Sprintf("成员 %d 不属于该行程", id))
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		participants = append(participants, id)
	}
	return participants, nil
}
