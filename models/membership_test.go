package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMembership_DropsDuplicatesAndOwner(t *testing.T) {
	m := NewMembership(7, 1, []Collaborator{
		{MemberID: 2, Role: RoleEditor},
		{MemberID: 1, Role: RoleViewer}, // 所有者不能同时是协作者
		{MemberID: 3, Role: RoleViewer},
		{MemberID: 2, Role: RoleViewer}, // 重复
	})

	assert.Equal(t, []uint{1, 2, 3}, m.MemberIDs())
	assert.Equal(t, 3, m.Count())
	assert.Equal(t, "owner", m.RoleOf(1))
	assert.Equal(t, RoleEditor, m.RoleOf(2))
	assert.Equal(t, RoleViewer, m.RoleOf(3))
	assert.Equal(t, "", m.RoleOf(4))
	assert.True(t, m.IsMember(3))
	assert.False(t, m.IsMember(4))
}

func TestProfile_DisplayName(t *testing.T) {
	assert.Equal(t, "Alice", Profile{Name: "Alice", Email: "a@x.com"}.DisplayName())
	assert.Equal(t, "a@x.com", Profile{Email: "a@x.com"}.DisplayName())
}

func TestBudget_CloneIsIndependent(t *testing.T) {
	b := NewBudget(1)
	b.Categories["food"] = decimal.NewFromInt(10)

	c := b.Clone()
	c.Categories["food"] = decimal.NewFromInt(99)
	c.Categories["taxi"] = decimal.NewFromInt(1)

	require.Len(t, b.Categories, 1)
	assert.True(t, b.Categories["food"].Equal(decimal.NewFromInt(10)))
	assert.Equal(t, []string{"food", "taxi"}, c.CategoryNames())
}

func TestBudget_Remaining(t *testing.T) {
	b := Budget{Total: decimal.RequireFromString("500"), Spent: decimal.RequireFromString("120.50")}
	assert.Equal(t, "379.5", b.Remaining().String())
}

func TestExpense_IsSettlement(t *testing.T) {
	e := Expense{Category: CategorySettlement, Shares: []MemberShare{{MemberID: 2}}}
	assert.True(t, e.IsSettlement())

	e.Shares = append(e.Shares, MemberShare{MemberID: 3})
	assert.False(t, e.IsSettlement())

	normal := Expense{Category: CategoryOther, Shares: []MemberShare{{MemberID: 2}}}
	assert.False(t, normal.IsSettlement())
}

func TestExpense_CloneAndShareSum(t *testing.T) {
	e := Expense{Shares: []MemberShare{
		{MemberID: 1, Amount: decimal.RequireFromString("33.34")},
		{MemberID: 2, Amount: decimal.RequireFromString("33.33")},
		{MemberID: 3, Amount: decimal.RequireFromString("33.33")},
	}}
	assert.True(t, e.ShareSum().Equal(decimal.NewFromInt(100)))

	c := e.Clone()
	c.Shares[0].Settled = true
	assert.False(t, e.Shares[0].Settled)
}
