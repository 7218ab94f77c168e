package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripbudget/service"
)

func TestLedgerHandler_Summary(t *testing.T) {
	s := newTestServer(t)
	seedLedger(t, s)

	w := s.do(t, viewerID, "GET", "/itineraries/7/summary", "")
	requireStatus(t, http.StatusOK, w)

	var summary service.LedgerSummary
	decodeResponse(t, w, &summary)
	assert.Equal(t, "EUR", summary.Currency)
	requireDecimal(t, "130", summary.Spent)
	requireDecimal(t, "20", summary.Settled)
	assert.Equal(t, 2, summary.ExpenseCount)
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "food", summary.Categories[0].Category)

	today := time.Now().UTC().Format(dateLayout)
	w = s.do(t, viewerID, "GET", "/itineraries/7/summary?start_time="+today+"&end_time="+today, "")
	requireStatus(t, http.StatusOK, w)
	decodeResponse(t, w, &summary)
	requireDecimal(t, "130", summary.Spent)

	w = s.do(t, viewerID, "GET", "/itineraries/7/summary?end_time=2000-01-01", "")
	requireStatus(t, http.StatusOK, w)
	decodeResponse(t, w, &summary)
	requireDecimal(t, "0", summary.Spent)
	assert.Zero(t, summary.ExpenseCount)
	assert.Empty(t, summary.Categories)
}

func TestLedgerHandler_Summary_Errors(t *testing.T) {
	s := newTestServer(t)

	requireStatus(t, http.StatusBadRequest, s.do(t, ownerID, "GET", "/itineraries/7/summary?start_time=01/02/2024", ""))
	requireStatus(t, http.StatusBadRequest, s.do(t, ownerID, "GET", "/itineraries/7/summary?start_time=2024-02-01&end_time=2024-01-01", ""))
	requireStatus(t, http.StatusForbidden, s.do(t, otherID, "GET", "/itineraries/7/summary", ""))
}
