package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tripbudget/database"
	"tripbudget/models"
)

const (
	tripID   uint = 7
	ownerID  uint = 1
	editorID uint = 2
	viewerID uint = 3
	otherID  uint = 99
)

type publishedEvent struct {
	ItineraryID uint
	Name        string
	Payload     any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (n *recordingNotifier) Publish(_ context.Context, itineraryID uint, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{ItineraryID: itineraryID, Name: event, Payload: payload})
	return n.err
}

func (n *recordingNotifier) Events() []publishedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]publishedEvent(nil), n.events...)
}

type fixture struct {
	dir        *database.MemoryDirectory
	store      *database.MemoryLedgerStore
	notifier   *recordingNotifier
	access     *AccessResolver
	expenses   *ExpenseRecorder
	settle     *SettlementProcessor
	balances   *BalanceCalculator
	budgets    *BudgetEditor
	expenseLog *ExpenseLog
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture 所有者 O(1)，编辑者 C(2)，查看者 V(3)
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := database.NewMemoryDirectory()
	dir.AddUser(models.Profile{ID: ownerID, Name: "Olivia", Email: "olivia@example.com"})
	dir.AddUser(models.Profile{ID: editorID, Email: "carl@example.com"})
	dir.AddUser(models.Profile{ID: viewerID, Name: "Vera", Email: "vera@example.com"})
	dir.AddItinerary(tripID, ownerID)
	dir.AddCollaborator(tripID, editorID, models.RoleEditor)

	store := database.NewMemoryLedgerStore()
	notifier := &recordingNotifier{}
	log := discardLogger()
	access := NewAccessResolver(dir)

	return &fixture{
		dir:        dir,
		store:      store,
		notifier:   notifier,
		access:     access,
		expenses:   NewExpenseRecorder(log, access, store, dir, notifier),
		settle:     NewSettlementProcessor(log, access, store, notifier, nil),
		balances:   NewBalanceCalculator(log, access, store, dir),
		budgets:    NewBudgetEditor(log, access, store, notifier),
		expenseLog: NewExpenseLog(access, store, dir),
	}
}

func (f *fixture) addViewer() {
	f.dir.AddCollaborator(tripID, viewerID, models.RoleViewer)
}

func (f *fixture) budget(t *testing.T) *models.Budget {
	t.Helper()
	b, err := f.store.GetBudget(context.Background(), tripID)
	require.NoError(t, err)
	return b
}

func (f *fixture) log(t *testing.T) []models.Expense {
	t.Helper()
	list, err := f.store.ListExpenses(context.Background(), tripID)
	require.NoError(t, err)
	return list
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balanceOf(t *testing.T, b *Breakdown, id uint) MemberBalance {
	t.Helper()
	for _, mb := range b.Balances {
		if mb.ID == id {
			return mb
		}
	}
	t.Fatalf("no balance for member %d", id)
	return MemberBalance{}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}
