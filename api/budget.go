package api

import (
	"tripbudget/middleware"
	"tripbudget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BudgetHandler 预算与账本视图处理器
type BudgetHandler struct {
	editor   *service.BudgetEditor
	balances *service.BalanceCalculator
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(editor *service.BudgetEditor, balances *service.BalanceCalculator) *BudgetHandler {
	return &BudgetHandler{editor: editor, balances: balances}
}

// UpdateBudgetRequest 更新预算请求
type UpdateBudgetRequest struct {
	Total    *decimal.Decimal `json:"total" binding:"required" swaggertype:"number" example:"1500.00"`
	Currency string           `json:"currency" example:"EUR"`
}

// ToggleSplitwiseRequest 开关分摊模式请求
type ToggleSplitwiseRequest struct {
	IsEnabled *bool `json:"is_enabled" binding:"required" example:"true"`
}

// UpdateBudget 更新预算总额与币种
// @Summary 更新预算
// @Description 设置行程预算总额与币种，仅所有者与编辑者可操作
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Param request body UpdateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/budget [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return
	}
	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	budget, err := h.editor.UpdateTotals(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c), service.UpdateBudgetInput{
		Total:    *req.Total,
		Currency: req.Currency,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessWithMessage(c, "预算已更新", budget)
}

// ToggleSplitwise 开关分摊模式
// @Summary 开关分摊模式
// @Description 开启后按成员人数计算人均预算，关闭时人均预算为 0
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Param request body ToggleSplitwiseRequest true "开关"
// @Success 200 {object} Response{data=models.Budget} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/budget/splitwise [put]
func (h *BudgetHandler) ToggleSplitwise(c *gin.Context) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return
	}
	var req ToggleSplitwiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	budget, err := h.editor.SetSplitwise(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c), *req.IsEnabled)
	if err != nil {
		RespondError(c, err)
		return
	}
	message := "分摊模式已关闭"
	if budget.IsSplitwiseEnabled {
		message = "分摊模式已开启"
	}
	SuccessWithMessage(c, message, budget)
}

// Breakdown 账本视图
// @Summary 获取账本视图
// @Description 预算概览、成员、每个成员的余额明细与类别汇总，任意成员可查看
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Success 200 {object} Response{data=service.Breakdown} "获取成功"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/breakdown [get]
func (h *BudgetHandler) Breakdown(c *gin.Context) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return
	}
	breakdown, err := h.balances.Compute(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, breakdown)
}
