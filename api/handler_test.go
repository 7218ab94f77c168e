package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tripbudget/database"
	"tripbudget/models"
	"tripbudget/service"
)

const (
	tripID   uint = 7
	ownerID  uint = 1
	editorID uint = 2
	viewerID uint = 3
	otherID  uint = 99
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// testServer 内存存储上的完整处理器集合
type testServer struct {
	dir      *database.MemoryDirectory
	store    *database.MemoryLedgerStore
	budgets  *BudgetHandler
	ledger   *LedgerHandler
	exports  *ExportHandler
	recorder *service.ExpenseRecorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := database.NewMemoryDirectory()
	dir.AddUser(models.Profile{ID: ownerID, Name: "Olivia", Email: "olivia@example.com"})
	dir.AddUser(models.Profile{ID: editorID, Name: "Carl", Email: "carl@example.com"})
	dir.AddUser(models.Profile{ID: viewerID, Name: "Vera", Email: "vera@example.com"})
	dir.AddItinerary(tripID, ownerID)
	dir.AddCollaborator(tripID, editorID, models.RoleEditor)
	dir.AddCollaborator(tripID, viewerID, models.RoleViewer)

	store := database.NewMemoryLedgerStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	access := service.NewAccessResolver(dir)
	notifier := service.NopNotifier{}

	recorder := service.NewExpenseRecorder(log, access, store, dir, notifier)
	expenseLog := service.NewExpenseLog(access, store, dir)

	return &testServer{
		dir:   dir,
		store: store,
		budgets: NewBudgetHandler(
			service.NewBudgetEditor(log, access, store, notifier),
			service.NewBalanceCalculator(log, access, store, dir),
		),
		ledger: NewLedgerHandler(
			recorder,
			service.NewSettlementProcessor(log, access, store, notifier, nil),
			expenseLog,
		),
		exports:  NewExportHandler(expenseLog),
		recorder: recorder,
	}
}

// router 以 userID 身份挂载全部账本路由
func (s *testServer) router(userID uint) *gin.Engine {
	r := gin.New()
	r.Use(setUserIDMiddleware(userID))
	g := r.Group("/itineraries/:id")
	g.PUT("/budget", s.budgets.UpdateBudget)
	g.PUT("/budget/splitwise", s.budgets.ToggleSplitwise)
	g.GET("/breakdown", s.budgets.Breakdown)
	g.POST("/expenses", s.ledger.CreateExpense)
	g.GET("/expenses", s.ledger.ListExpenses)
	g.POST("/settle", s.ledger.Settle)
	g.GET("/summary", s.ledger.Summary)
	g.GET("/export/csv", s.exports.ExportCSV)
	g.GET("/export/excel", s.exports.ExportExcel)
	return r
}

func (s *testServer) do(t *testing.T, userID uint, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router(userID).ServeHTTP(w, req)
	return w
}

// testResponse 与 Response 相同，Data 延迟解析
type testResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data any) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data), string(resp.Data))
	}
	return resp
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func requireStatus(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equalf(t, want, w.Code, "body: %s", w.Body.String())
}

func mustBudget(t *testing.T, s *testServer) *models.Budget {
	t.Helper()
	b, err := s.store.GetBudget(context.Background(), tripID)
	require.NoError(t, err)
	return b
}
