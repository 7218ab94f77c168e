package router

import (
	"context"
	"net/http"

	"tripbudget/api"
	"tripbudget/config"
	_ "tripbudget/docs"
	"tripbudget/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Budget   *api.BudgetHandler
	Ledger   *api.LedgerHandler
	Export   *api.ExportHandler
	Realtime *api.RealtimeHandler
}

// SetupRouter 设置路由，ctx 结束时停止中间件的后台清理
func SetupRouter(ctx context.Context, cfg *config.Config, h Handlers) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// CORS 中间件
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth())
	v1.Use(middleware.MutationRateLimit(ctx, cfg.RateLimit.MaxMutations, cfg.RateLimit.Window))
	{
		trip := v1.Group("/itineraries/:id")

		// 预算
		trip.PUT("/budget", h.Budget.UpdateBudget)
		trip.PUT("/budget/splitwise", h.Budget.ToggleSplitwise)
		trip.GET("/breakdown", h.Budget.Breakdown)

		// 账本
		trip.POST("/expenses", h.Ledger.CreateExpense)
		trip.GET("/expenses", h.Ledger.ListExpenses)
		trip.POST("/settle", h.Ledger.Settle)
		trip.GET("/summary", h.Ledger.Summary)

		// 导出
		trip.GET("/export/csv", h.Export.ExportCSV)
		trip.GET("/export/excel", h.Export.ExportExcel)

		// 实时事件
		trip.GET("/ws", h.Realtime.Subscribe)
	}

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
