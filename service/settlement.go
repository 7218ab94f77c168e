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

// SettlementPolicy 决定结算条目的份额形态。
// 结算份额是否预先结清直接决定余额计算是否抵扣既有欠款。
type SettlementPolicy interface {
	Name() string
	SettlementShare(payeeID uint, amount decimal.Decimal) models.MemberShare
}

// AuditOnlyPolicy 结算只作为转账记录入账：唯一份额预先结清，不改变余额
type AuditOnlyPolicy struct{}

// PolicyAuditOnly 默认结算策略名
const PolicyAuditOnly = "audit-only"

// Name 实现 SettlementPolicy
func (AuditOnlyPolicy) Name() string { return PolicyAuditOnly }

// SettlementShare 实现 SettlementPolicy
func (AuditOnlyPolicy) SettlementShare(payeeID uint, amount decimal.Decimal) models.MemberShare {
	return models.MemberShare{MemberID: payeeID, Amount: amount, Settled: true}
}

// SettlementPolicyByName 按配置名选择策略，空名使用默认策略
func SettlementPolicyByName(name string) (SettlementPolicy, error) {
	switch strings.TrimSpace(name) {
	case "", PolicyAuditOnly:
		return AuditOnlyPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown settlement policy %q", name)
	}
}

// RecordSettlementInput 结算参数：操作者向 PayeeID 转账 Amount
type RecordSettlementInput struct {
	PayeeID uint
	Amount  decimal.Decimal
	Notes   string
}

// SettlementProcessor 记录成员之间的直接转账，不计入花费与类别
type SettlementProcessor struct {
	access   *AccessResolver
	store    LedgerStore
	notifier Notifier
	policy   SettlementPolicy
	log      *slog.Logger
	now      func() time.Time
}

// NewSettlementProcessor 创建结算处理器，policy 为 nil 时使用 AuditOnlyPolicy
func NewSettlementProcessor(log *slog.Logger, access *AccessResolver, store LedgerStore, notifier Notifier, policy SettlementPolicy) *SettlementProcessor {
	if policy == nil {
		policy = AuditOnlyPolicy{}
	}
	return &SettlementProcessor{
		access:   access,
		store:    store,
		notifier: notifier,
		policy:   policy,
		log:      log.With("service", "settlement"),
		now:      time.Now,
	}
}

// Record 追加一条结算记录
func (p *SettlementProcessor) Record(ctx context.Context, itineraryID, actorID uint, in RecordSettlementInput) (*models.Expense, error) {
	if in.PayeeID == 0 {
		return nil, models.NewValidationError("member_id", "收款成员不能为空")
	}
	if !in.Amount.IsPositive() {
		return nil, models.NewValidationError("amount", "金额必须大于 0")
	}
	if err := ValidateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	if in.PayeeID == actorID {
		return nil, models.NewValidationError("member_id", "不能与自己结算")
	}

	membership, err := p.access.RequireEditor(ctx, itineraryID, actorID)
	if err != nil {
		return nil, err
	}
	if !membership.IsMember(in.PayeeID) {
		return nil, models.NewValidationError("member_id", fmt.Sprintf("成员 %d 不属于该行程", in.PayeeID))
	}

	notes := strings.TrimSpace(in.Notes)
	if utf8.RuneCountInString(notes) > models.MaxNotesLen {
		return nil, models.NewValidationError("notes", fmt.Sprintf("备注不能超过 %d 个字符", models.MaxNotesLen))
	}
	if notes == "" {
		notes = "Settlement between users"
	}
	share := p.policy.SettlementShare(in.PayeeID, in.Amount)
	settlement := &models.Expense{
		ID:          uuid.NewString(),
		ItineraryID: itineraryID,
		Title:       "Settlement",
		Amount:      in.Amount,
		PaidBy:      actorID,
		Category:    models.CategorySettlement,
		Notes:       notes,
		Timestamp:   p.now().UTC(),
		Shares:      []models.MemberShare{share},
	}

	// 预算字段保持不变，只追加日志
	_, saved, err := p.store.Apply(ctx, itineraryID, func(*models.Budget) (*models.Expense, error) {
		return settlement, nil
	})
	if err != nil {
		return nil, storeError("record settlement", err)
	}

	p.log.InfoContext(ctx, "settlement recorded",
		"itinerary_id", itineraryID,
		"expense_id", saved.ID,
		"from", actorID,
		"to", in.PayeeID,
		"amount", saved.Amount.String(),
		"policy", p.policy.Name())

	publish(ctx, p.log, p.notifier, itineraryID, EventSettlement, SettlementEvent{
		From:      actorID,
		To:        in.PayeeID,
		Amount:    saved.Amount,
		ExpenseID: saved.ID,
	})
	return saved, nil
}
