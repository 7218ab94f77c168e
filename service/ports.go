package service

import (
	"context"

	"tripbudget/models"
)

// LedgerStore 账本存储：每个行程一份预算 + 按序追加的支出日志
type LedgerStore interface {
	// Apply 在行程预算的隔离范围内执行 fn，fn 修改的预算与返回的支出（可为 nil）作为一个整体提交。
	// fn 返回错误时不产生任何写入。返回提交后的预算与支出。
	Apply(ctx context.Context, itineraryID uint, fn func(budget *models.Budget) (*models.Expense, error)) (*models.Budget, *models.Expense, error)
	// GetBudget 读取已提交的预算（含类别汇总）
	GetBudget(ctx context.Context, itineraryID uint) (*models.Budget, error)
	// ListExpenses 按追加顺序返回完整日志，份额按创建顺序
	ListExpenses(ctx context.Context, itineraryID uint) ([]models.Expense, error)
	// PageExpenses 按追加顺序倒序分页
	PageExpenses(ctx context.Context, itineraryID uint, offset, limit int) ([]models.Expense, int64, error)
}

// MembershipProvider 提供行程所有者与协作者列表，行程不存在时返回 models.ErrNotFound
type MembershipProvider interface {
	Membership(ctx context.Context, itineraryID uint) (*models.Membership, error)
}

// ProfileResolver 成员 ID -> 展示信息，未知 ID 不出现在结果中
type ProfileResolver interface {
	Profiles(ctx context.Context, memberIDs []uint) (map[uint]models.Profile, error)
}

// Notifier 向订阅某行程频道的客户端广播事件，尽力而为
type Notifier interface {
	Publish(ctx context.Context, itineraryID uint, event string, payload any) error
}

// NotifierFunc 函数适配器
type NotifierFunc func(ctx context.Context, itineraryID uint, event string, payload any) error

// Publish 实现 Notifier
func (f NotifierFunc) Publish(ctx context.Context, itineraryID uint, event string, payload any) error {
	return f(ctx, itineraryID, event, payload)
}

// NopNotifier 丢弃所有事件
type NopNotifier struct{}

// Publish 实现 Notifier
func (NopNotifier) Publish(context.Context, uint, string, any) error { return nil }
