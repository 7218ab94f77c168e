package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense 账本条目，追加后不可修改
type Expense struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	ItineraryID uint            `json:"itinerary_id" gorm:"not null;uniqueIndex:idx_itinerary_seq,priority:1"`
	Seq         uint64          `json:"seq" gorm:"not null;uniqueIndex:idx_itinerary_seq,priority:2"`
	Title       string          `json:"title" gorm:"size:200;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaidBy      uint            `json:"paid_by" gorm:"index;not null"`
	Category    string          `json:"category" gorm:"size:50;not null"`
	Notes       string          `json:"notes" gorm:"size:500"`
	Timestamp   time.Time       `json:"timestamp" gorm:"not null"`
	Shares      []MemberShare   `json:"shares" gorm:"foreignKey:ExpenseID;references:ID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "ledger_expenses"
}

// 文本字段长度上限（按字符计），与列宽一致
const (
	MaxTitleLen    = 200
	MaxCategoryLen = 50
	MaxNotesLen    = 500
)

// 类别常量
const (
	CategoryOther      = "other"
	CategorySettlement = "settlement"
)

// IsSettlement 结算条目：类别为 settlement 且只有一个份额
func (e *Expense) IsSettlement() bool {
	return e.Category == CategorySettlement && len(e.Shares) == 1
}

// ShareSum 份额之和
func (e *Expense) ShareSum() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range e.Shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// Clone 深拷贝（复制 Shares）
func (e Expense) Clone() Expense {
	shares := make([]MemberShare, len(e.Shares))
	copy(shares, e.Shares)
	e.Shares = shares
	return e
}

// MemberShare 成员在一笔支出中的份额
type MemberShare struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	ExpenseID string          `json:"-" gorm:"size:36;not null;index"`
	Position  int             `json:"-" gorm:"not null"`
	MemberID  uint            `json:"member_id" gorm:"not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Settled   bool            `json:"settled" gorm:"not null;default:false"`
}

// TableName 设置表名
func (MemberShare) TableName() string {
	return "ledger_member_shares"
}
