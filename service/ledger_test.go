package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripbudget/models"
)

func TestRecordExpense_DinnerSplitBetweenOwnerAndEditor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{Title: "Dinner", Amount: dec("100")})
	require.NoError(t, err)

	require.Len(t, e.Shares, 2)
	assert.Equal(t, ownerID, e.Shares[0].MemberID)
	assertDecimal(t, "50", e.Shares[0].Amount)
	assert.True(t, e.Shares[0].Settled)
	assert.Equal(t, editorID, e.Shares[1].MemberID)
	assertDecimal(t, "50", e.Shares[1].Amount)
	assert.False(t, e.Shares[1].Settled)
	assert.Equal(t, ownerID, e.PaidBy)
	assert.Equal(t, models.CategoryOther, e.Category)
	assert.Equal(t, uint64(1), e.Seq)

	b := f.budget(t)
	assertDecimal(t, "100", b.Spent)
	assertDecimal(t, "100", b.Categories["other"])

	bd, err := f.balances.Compute(ctx, tripID, ownerID)
	require.NoError(t, err)

	o := balanceOf(t, bd, ownerID)
	assertDecimal(t, "100", o.Paid)
	assertDecimal(t, "50", o.Owed)
	assertDecimal(t, "0", o.Owes)
	assertDecimal(t, "50", o.Net)

	c := balanceOf(t, bd, editorID)
	assertDecimal(t, "0", c.Paid)
	assertDecimal(t, "0", c.Owed)
	assertDecimal(t, "50", c.Owes)
	assertDecimal(t, "-50", c.Net)

	require.Len(t, o.Details, 1)
	assert.Equal(t, editorID, o.Details[0].ID)
	assertDecimal(t, "50", o.Details[0].Amount)
	require.Len(t, c.Details, 1)
	assertDecimal(t, "-50", c.Details[0].Amount)
	assert.Equal(t, "Olivia", c.Details[0].Name)
}

func TestRecordSettlement_LeavesBalancesUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{Title: "Dinner", Amount: dec("100")})
	require.NoError(t, err)

	s, err := f.settle.Record(ctx, tripID, ownerID, RecordSettlementInput{PayeeID: editorID, Amount: dec("50")})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySettlement, s.Category)
	assert.Equal(t, "Settlement", s.Title)
	assert.Equal(t, "Settlement between users", s.Notes)
	assert.True(t, s.IsSettlement())
	require.Len(t, s.Shares, 1)
	assert.Equal(t, editorID, s.Shares[0].MemberID)
	assertDecimal(t, "50", s.Shares[0].Amount)
	assert.True(t, s.Shares[0].Settled)

	b := f.budget(t)
	assertDecimal(t, "100", b.Spent)
	assertDecimal(t, "100", b.Categories["other"])
	_, hasSettlement := b.Categories[models.CategorySettlement]
	assert.False(t, hasSettlement)

	entries := f.log(t)
	require.Len(t, entries, 2)
	assert.Equal(t, s.ID, entries[1].ID)
	assert.Equal(t, uint64(2), entries[1].Seq)

	bd, err := f.balances.Compute(ctx, tripID, editorID)
	require.NoError(t, err)
	assertDecimal(t, "50", balanceOf(t, bd, ownerID).Net)
	assertDecimal(t, "-50", balanceOf(t, bd, editorID).Net)
	assertDecimal(t, "50", balanceOf(t, bd, editorID).Owes)
}

func TestViewerCannotMutateButCanRead(t *testing.T) {
	f := newFixture(t)
	f.addViewer()
	ctx := context.Background()

	_, err := f.expenses.Record(ctx, tripID, viewerID, RecordExpenseInput{Title: "Taxi", Amount: dec("12")})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.settle.Record(ctx, tripID, viewerID, RecordSettlementInput{PayeeID: ownerID, Amount: dec("5")})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.budgets.UpdateTotals(ctx, tripID, viewerID, UpdateBudgetInput{Total: dec("10")})
	assert.ErrorIs(t, err, models.ErrForbidden)

	bd, err := f.balances.Compute(ctx, tripID, viewerID)
	require.NoError(t, err)
	assert.Len(t, bd.Members, 3)
	assert.Empty(t, f.log(t))
}

func TestRecordExpense_UnknownParticipantHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{
		Title:     "Museum",
		Amount:    dec("30"),
		MemberIDs: []uint{ownerID, otherID},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "member_ids", verr.Errors[0].Field)

	b := f.budget(t)
	assert.True(t, b.Spent.IsZero())
	assert.Empty(t, b.Categories)
	assert.Zero(t, b.ExpenseCount)
	assert.Empty(t, f.log(t))
	assert.Empty(t, f.notifier.Events())
}

func TestRecordExpense_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    RecordExpenseInput
		field string
	}{
		{"空标题", RecordExpenseInput{Title: "  ", Amount: dec("10")}, "title"},
		{"零金额", RecordExpenseInput{Title: "x", Amount: dec("0")}, "amount"},
		{"负金额", RecordExpenseInput{Title: "x", Amount: dec("-1")}, "amount"},
		{"三位小数", RecordExpenseInput{Title: "x", Amount: dec("1.005")}, "amount"},
		{"保留类别", RecordExpenseInput{Title: "x", Amount: dec("1"), Category: "settlement"}, "category"},
		{"超出上限一分", RecordExpenseInput{Title: "x", Amount: dec("10000000000.00")}, "amount"},
		{"超出 int64 分", RecordExpenseInput{Title: "x", Amount: dec("100000000000000000")}, "amount"},
		{"标题过长", RecordExpenseInput{Title: strings.Repeat("晚", models.MaxTitleLen+1), Amount: dec("1")}, "title"},
		{"类别过长", RecordExpenseInput{Title: "x", Amount: dec("1"), Category: strings.Repeat("c", models.MaxCategoryLen+1)}, "category"},
		{"备注过长", RecordExpenseInput{Title: "x", Amount: dec("1"), Notes: strings.Repeat("n", models.MaxNotesLen+1)}, "notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.expenses.Record(ctx, tripID, ownerID, tt.in)
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Errors[0].Field)
		})
	}
	assert.Empty(t, f.log(t))
}

func TestRecordExpense_AmountAtUpperBound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{
		Title:    strings.Repeat("晚", models.MaxTitleLen),
		Amount:   dec("9999999999.99"),
		Category: strings.Repeat("c", models.MaxCategoryLen),
	})
	require.NoError(t, err)
	require.Len(t, e.Shares, 2)
	assertDecimal(t, "5000000000.00", e.Shares[0].Amount)
	assertDecimal(t, "4999999999.99", e.Shares[1].Amount)
	assertDecimal(t, "9999999999.99", e.ShareSum())

	// 累计支出同样受列宽限制，失败时不留下条目
	_, err = f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{Title: "y", Amount: dec("0.01")})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "amount", verr.Errors[0].Field)
	assert.Len(t, f.log(t), 1)

	b, err := f.store.GetBudget(ctx, tripID)
	require.NoError(t, err)
	assertDecimal(t, "9999999999.99", b.Spent)
}

func TestRecordExpense_MissingItinerary(t *testing.T) {
	f := newFixture(t)
	_, err := f.expenses.Record(context.Background(), 404, ownerID, RecordExpenseInput{Title: "x", Amount: dec("1")})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.balances.Compute(context.Background(), 404, ownerID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordExpense_NonMemberForbidden(t *testing.T) {
	f := newFixture(t)
	_, err := f.expenses.Record(context.Background(), tripID, otherID, RecordExpenseInput{Title: "x", Amount: dec("1")})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.balances.Compute(context.Background(), tripID, otherID)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestRecordExpense_ExplicitParticipantsDeduplicated(t *testing.T) {
	f := newFixture(t)
	f.addViewer()

	e, err := f.expenses.Record(context.Background(), tripID, editorID, RecordExpenseInput{
		Title:     "Tickets",
		Amount:    dec("10"),
		Category:  "activities",
		MemberIDs: []uint{viewerID, editorID, viewerID},
	})
	require.NoError(t, err)
	require.Len(t, e.Shares, 2)
	assert.Equal(t, viewerID, e.Shares[0].MemberID)
	assert.Equal(t, editorID, e.Shares[1].MemberID)
	assert.True(t, e.ShareSum().Equal(e.Amount))
	assert.True(t, e.Shares[1].Settled)
	assert.False(t, e.Shares[0].Settled)

	assertDecimal(t, "10", f.budget(t).Categories["activities"])
}

func TestRecordExpense_DefaultParticipantsAreAllMembers(t *testing.T) {
	f := newFixture(t)
	f.addViewer()

	e, err := f.expenses.Record(context.Background(), tripID, editorID, RecordExpenseInput{Title: "Hotel", Amount: dec("100")})
	require.NoError(t, err)

	ids := make([]uint, 0, len(e.Shares))
	for _, s := range e.Shares {
		ids = append(ids, s.MemberID)
	}
	assert.Equal(t, []uint{ownerID, editorID, viewerID}, ids)
	// 付款人先拿余数
	assertDecimal(t, "33.33", e.Shares[0].Amount)
	assertDecimal(t, "33.34", e.Shares[1].Amount)
	assertDecimal(t, "33.33", e.Shares[2].Amount)
	assertDecimal(t, "100", e.ShareSum())
}

func TestRecordExpense_PublishesAfterCommit(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("socket closed")

	e, err := f.expenses.Record(context.Background(), tripID, ownerID, RecordExpenseInput{Title: "Lunch", Amount: dec("20")})
	require.NoError(t, err, "publish failures never fail the mutation")

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventNewExpense, events[0].Name)
	assert.Equal(t, tripID, events[0].ItineraryID)

	payload, ok := events[0].Payload.(NewExpenseEvent)
	require.True(t, ok)
	assert.Equal(t, e.ID, payload.Expense.ID)
	assert.Equal(t, "Olivia", payload.Expense.PaidByUser.Name)
	require.Len(t, payload.Expense.Shares, 2)
	assert.Equal(t, "carl@example.com", payload.Expense.Shares[1].Member.Email)
}

func TestRecordSettlement_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.settle.Record(ctx, tripID, ownerID, RecordSettlementInput{PayeeID: ownerID, Amount: dec("5")})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.settle.Record(ctx, tripID, ownerID, RecordSettlementInput{PayeeID: otherID, Amount: dec("5")})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.settle.Record(ctx, tripID, ownerID, RecordSettlementInput{PayeeID: editorID, Amount: dec("0")})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.settle.Record(ctx, tripID, ownerID, RecordSettlementInput{Amount: dec("5")})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.settle.Record(ctx, tripID, ownerID, RecordSettlementInput{PayeeID: editorID, Amount: dec("10000000000.00")})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.settle.Record(ctx, tripID, ownerID, RecordSettlementInput{PayeeID: editorID, Amount: dec("5"), Notes: strings.Repeat("n", models.MaxNotesLen+1)})
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.Empty(t, f.log(t))

	_, err = f.settle.Record(ctx, tripID, ownerID, RecordSettlementInput{PayeeID: editorID, Amount: dec("9999999999.99")})
	require.NoError(t, err)
}

func TestRecordSettlement_PublishesTransfer(t *testing.T) {
	f := newFixture(t)
	s, err := f.settle.Record(context.Background(), tripID, editorID, RecordSettlementInput{
		PayeeID: ownerID,
		Amount:  dec("12.50"),
		Notes:   "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "cash", s.Notes)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventSettlement, events[0].Name)
	ev := events[0].Payload.(SettlementEvent)
	assert.Equal(t, editorID, ev.From)
	assert.Equal(t, ownerID, ev.To)
	assertDecimal(t, "12.5", ev.Amount)
	assert.Equal(t, s.ID, ev.ExpenseID)
}

func TestSettlementPolicyByName(t *testing.T) {
	p, err := SettlementPolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAuditOnly, p.Name())

	p, err = SettlementPolicyByName("audit-only")
	require.NoError(t, err)
	assert.True(t, p.SettlementShare(2, dec("1")).Settled)

	_, err = SettlementPolicyByName("net-against-debts")
	assert.Error(t, err)
}

func TestBreakdown_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addViewer()

	_, err := f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{Title: "Fuel", Amount: dec("61.10"), Category: "transport"})
	require.NoError(t, err)
	_, err = f.expenses.Record(ctx, tripID, editorID, RecordExpenseInput{Title: "Snacks", Amount: dec("9.99"), MemberIDs: []uint{viewerID}})
	require.NoError(t, err)

	first, err := f.balances.Compute(ctx, tripID, viewerID)
	require.NoError(t, err)
	second, err := f.balances.Compute(ctx, tripID, viewerID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBreakdown_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.budgets.UpdateTotals(ctx, tripID, ownerID, UpdateBudgetInput{Total: dec("500"), Currency: "eur"})
	require.NoError(t, err)
	_, err = f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{Title: "Dinner", Amount: dec("120.40"), Category: "food"})
	require.NoError(t, err)

	bd, err := f.balances.Compute(ctx, tripID, editorID)
	require.NoError(t, err)
	assertDecimal(t, "500", bd.Budget.Total)
	assertDecimal(t, "120.40", bd.Budget.Spent)
	assertDecimal(t, "379.60", bd.Budget.Remaining)
	assert.Equal(t, "EUR", bd.Budget.Currency)
	assertDecimal(t, "120.40", bd.CategoryBreakdown["food"])

	require.Len(t, bd.Members, 2)
	assert.Equal(t, MemberView{ID: ownerID, Name: "Olivia", Email: "olivia@example.com", Role: "owner"}, bd.Members[0])
	// 没有名称时显示邮箱
	assert.Equal(t, "carl@example.com", bd.Members[1].Name)
	assert.Equal(t, models.RoleEditor, bd.Members[1].Role)
}

func TestBreakdown_FormerMemberStillAccounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.expenses.Record(ctx, tripID, editorID, RecordExpenseInput{Title: "Boat", Amount: dec("80")})
	require.NoError(t, err)
	f.dir.RemoveCollaborator(tripID, editorID)

	bd, err := f.balances.Compute(ctx, tripID, ownerID)
	require.NoError(t, err)
	require.Len(t, bd.Members, 1)
	require.Len(t, bd.Balances, 2)

	former := balanceOf(t, bd, editorID)
	assert.True(t, former.Former)
	assertDecimal(t, "40", former.Net)
	assertDecimal(t, "-40", balanceOf(t, bd, ownerID).Net)
}

func TestConcurrentExpensesKeepTotalsConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const writers = 40
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := ownerID
			if i%2 == 1 {
				actor = editorID
			}
			_, err := f.expenses.Record(ctx, tripID, actor, RecordExpenseInput{
				Title:    fmt.Sprintf("item-%d", i),
				Amount:   dec("10.01"),
				Category: []string{"food", "transport", ""}[i%3],
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	b := f.budget(t)
	assertDecimal(t, "400.40", b.Spent)
	assert.Equal(t, uint64(writers), b.ExpenseCount)

	sum := dec("0")
	for _, v := range b.Categories {
		sum = sum.Add(v)
	}
	assert.True(t, sum.Equal(b.Spent))

	entries := f.log(t)
	require.Len(t, entries, writers)
	for i, e := range entries {
		assert.Equal(t, uint64(i+1), e.Seq)
	}

	bd, err := f.balances.Compute(ctx, tripID, ownerID)
	require.NoError(t, err)
	net := dec("0")
	for _, mb := range bd.Balances {
		net = net.Add(mb.Net)
	}
	assert.True(t, net.IsZero(), "net sum %s", net)
}

func TestExpenseLog_Page(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_, err := f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{Title: fmt.Sprintf("e%d", i), Amount: dec("1")})
		require.NoError(t, err)
	}

	page, err := f.expenseLog.Page(ctx, tripID, editorID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "e5", page.Items[0].Title)
	assert.Equal(t, "e4", page.Items[1].Title)

	page, err = f.expenseLog.Page(ctx, tripID, editorID, 3, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "e1", page.Items[0].Title)

	page, err = f.expenseLog.Page(ctx, tripID, editorID, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageSize, page.PageSize)

	_, err = f.expenseLog.Page(ctx, tripID, otherID, 1, 10)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestExpenseLog_Snapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{Title: "Dinner", Amount: dec("30")})
	require.NoError(t, err)

	snap, err := f.expenseLog.Snapshot(ctx, tripID, editorID)
	require.NoError(t, err)
	require.Len(t, snap.Expenses, 1)
	assert.Equal(t, "Olivia", snap.Profiles[ownerID].Name)
	assert.Contains(t, snap.Profiles, editorID)
	assertDecimal(t, "30", snap.Budget.Spent)
}

func TestExpenseLog_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2024, 7, d, 12, 0, 0, 0, time.UTC) }
	record := func(d int, title, amount, category string) {
		f.expenses.now = func() time.Time { return day(d) }
		_, err := f.expenses.Record(ctx, tripID, ownerID, RecordExpenseInput{Title: title, Amount: dec(amount), Category: category})
		require.NoError(t, err)
	}
	record(1, "Flight", "400", "transport")
	record(2, "Hotel", "200", "lodging")
	record(3, "Dinner", "60", "food")
	f.settle.now = func() time.Time { return day(2) }
	_, err := f.settle.Record(ctx, tripID, editorID, RecordSettlementInput{PayeeID: ownerID, Amount: dec("100")})
	require.NoError(t, err)

	all, err := f.expenseLog.Summary(ctx, tripID, editorID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assertDecimal(t, "660", all.Spent)
	assertDecimal(t, "100", all.Settled)
	assert.Equal(t, 3, all.ExpenseCount)
	require.Len(t, all.Categories, 3)
	assert.Equal(t, "transport", all.Categories[0].Category)

	window, err := f.expenseLog.Summary(ctx, tripID, editorID, day(2).Truncate(24*time.Hour), day(3).Truncate(24*time.Hour))
	require.NoError(t, err)
	assertDecimal(t, "200", window.Spent)
	assertDecimal(t, "100", window.Settled)
	assert.Equal(t, 1, window.ExpenseCount)
	require.Len(t, window.Categories, 1)
	assertDecimal(t, "100", window.Categories[0].Percentage)

	_, err = f.expenseLog.Summary(ctx, tripID, otherID, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, models.ErrForbidden)
}
