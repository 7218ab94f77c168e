package api

import (
	"log/slog"

	"tripbudget/middleware"
	"tripbudget/realtime"
	"tripbudget/service"

	"github.com/gin-gonic/gin"
)

// RealtimeHandler 行程频道订阅
type RealtimeHandler struct {
	access *service.AccessResolver
	hub    *realtime.Hub
}

// NewRealtimeHandler 创建订阅处理器
func NewRealtimeHandler(access *service.AccessResolver, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{access: access, hub: hub}
}

// Subscribe 订阅行程事件
// @Summary 订阅行程事件
// @Description 升级为 websocket，接收 new-expense、budget-update、settlement 事件，任意成员可订阅
// @Tags 实时
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Param access_token query string false "浏览器无法设置请求头时使用"
// @Success 101 "切换协议"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/ws [get]
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return
	}
	if _, err := h.access.RequireMember(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	if err := h.hub.Subscribe(c.Writer, c.Request, itineraryID); err != nil {
		// Upgrade 失败时已写入响应
		slog.Warn("websocket subscribe failed", "room", realtime.RoomName(itineraryID), "error", err)
	}
}
