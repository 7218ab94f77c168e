package api

import (
	"strconv"

	"tripbudget/middleware"
	"tripbudget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerHandler 支出与结算处理器
type LedgerHandler struct {
	expenses    *service.ExpenseRecorder
	settlements *service.SettlementProcessor
	log         *service.ExpenseLog
}

// NewLedgerHandler 创建账本处理器
func NewLedgerHandler(expenses *service.ExpenseRecorder, settlements *service.SettlementProcessor, log *service.ExpenseLog) *LedgerHandler {
	return &LedgerHandler{expenses: expenses, settlements: settlements, log: log}
}

// CreateExpenseRequest 记录支出请求
type CreateExpenseRequest struct {
	Title     string           `json:"title" binding:"required,max=200" example:"晚餐"`
	Amount    *decimal.Decimal `json:"amount" binding:"required" swaggertype:"number" example:"100.00"`
	Category  string           `json:"category" binding:"max=50" example:"food"`
	Notes     string           `json:"notes" binding:"max=500" example:"海鲜餐厅"`
	MemberIDs []uint           `json:"member_ids"`
}

// SettleRequest 结算请求
type SettleRequest struct {
	MemberID uint             `json:"member_id" binding:"required" example:"2"`
	Amount   *decimal.Decimal `json:"amount" binding:"required" swaggertype:"number" example:"50.00"`
	Notes    string           `json:"notes" binding:"max=500"`
}

// CreateExpense 记录支出
// @Summary 记录支出
// @Description 当前用户作为付款人记录一笔支出，未指定 member_ids 时由全体成员平均分摊
// @Tags 账本
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Param request body CreateExpenseRequest true "支出信息"
// @Success 201 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/expenses [post]
func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return
	}
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	expense, err := h.expenses.Record(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c), service.RecordExpenseInput{
		Title:     req.Title,
		Amount:    *req.Amount,
		Category:  req.Category,
		Notes:     req.Notes,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, "创建成功", expense)
}

// Settle 记录结算
// @Summary 记录结算
// @Description 当前用户向另一成员转账，只作为记录追加到账本，不计入花费
// @Tags 账本
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Param request body SettleRequest true "结算信息"
// @Success 200 {object} Response{data=models.Expense} "结算成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/settle [post]
func (h *LedgerHandler) Settle(c *gin.Context) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return
	}
	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	settlement, err := h.settlements.Record(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c), service.RecordSettlementInput{
		PayeeID: req.MemberID,
		Amount:  *req.Amount,
		Notes:   req.Notes,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessWithMessage(c, "结算成功", settlement)
}

// ListExpenses 分页查询账本
// @Summary 查询账本
// @Description 按记录顺序倒序分页，任意成员可查看
// @Tags 账本
// @Produce json
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} Response{data=PageResponse} "获取成功"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/expenses [get]
func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(service.DefaultPageSize)))

	result, err := h.log.Page(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, PageResponse{
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		List:     result.Items,
	})
}
