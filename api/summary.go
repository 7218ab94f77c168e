package api

import (
	"time"

	"tripbudget/middleware"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Summary 获取行程花费汇总
// @Summary 获取花费汇总
// @Description 按时间范围统计支出总额、结算总额与类别占比。不传 start_time/end_time 则统计全部时间。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Param start_time query string false "开始日期 (YYYY-MM-DD, UTC)，例如 2024-01-01"
// @Param end_time query string false "结束日期 (YYYY-MM-DD, UTC)，包含当天"
// @Success 200 {object} Response{data=service.LedgerSummary} "获取成功"
// @Failure 400 {object} Response "日期格式错误"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/summary [get]
func (h *LedgerHandler) Summary(c *gin.Context) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return
	}

	var from, to time.Time
	if s := c.Query("start_time"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			BadRequest(c, "start_time 格式错误，应为 YYYY-MM-DD")
			return
		}
		from = t
	}
	if s := c.Query("end_time"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			BadRequest(c, "end_time 格式错误，应为 YYYY-MM-DD")
			return
		}
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		BadRequest(c, "结束日期不能早于开始日期")
		return
	}

	summary, err := h.log.Summary(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c), from, to)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, summary)
}
