package router

import (
	"net/http"

	"finance-tracker/internal/config"
	"finance-tracker/internal/handler"
	"finance-tracker/internal/log"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter builds the gin engine with every API route.
func SetupRouter(cfg *config.Config, db *gorm.DB, svc *service.Services, logger *log.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), middleware.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ====== API ======
	api := r.Group("/api")

	tokens := util.NewTokens(cfg.JWT)
	authHandler := handler.NewAuthHandler(db, cfg, tokens, logger)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	catalogHandler := handler.NewCatalogHandler(svc.Catalog)
	api.GET("/currencies", catalogHandler.Currencies)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens, db))

	protected.GET("/me", handler.GetMe)
	protected.PUT("/me", handler.UpdateProfile(db))
	protected.POST("/me/password", handler.ChangePassword(db, authHandler.BcryptCost))

	summaryHandler := handler.NewSummaryHandler(svc.Summary)
	protected.GET("/me/summary", summaryHandler.Summary)
	protected.GET("/me/expense-summary", summaryHandler.ExpenseSummary)

	protected.POST("/currencies", catalogHandler.CreateCurrency)
	protected.GET("/categories", catalogHandler.Categories)
	protected.POST("/categories", catalogHandler.CreateCategory)
	protected.PUT("/categories/:id", catalogHandler.UpdateCategory)
	protected.DELETE("/categories/:id", catalogHandler.DeleteCategory)
	protected.GET("/payment-methods", catalogHandler.PaymentMethods)
	protected.POST("/payment-methods", catalogHandler.CreatePaymentMethod)
	protected.DELETE("/payment-methods/:id", catalogHandler.DeletePaymentMethod)

	accountHandler := handler.NewAccountHandler(svc.Accounts)
	protected.GET("/accounts", accountHandler.List)
	protected.GET("/accounts/types", accountHandler.Types)
	protected.POST("/accounts", accountHandler.Create)
	protected.GET("/accounts/:id", accountHandler.Get)
	protected.PUT("/accounts/:id", accountHandler.Update)
	protected.DELETE("/accounts/:id", accountHandler.Delete)
	protected.POST("/accounts/:id/recompute", accountHandler.Recompute)
	protected.GET("/accounts/:id/verify", accountHandler.Verify)

	txHandler := handler.NewTransactionHandler(svc.Transactions, cfg.App.PageSize, cfg.App.MaxPageSize)
	protected.GET("/transactions", txHandler.List)
	protected.POST("/transactions", txHandler.Create)
	protected.GET("/transactions/:id", txHandler.Get)
	protected.PUT("/transactions/:id", txHandler.Update)
	protected.DELETE("/transactions/:id", txHandler.Delete)

	debtHandler := handler.NewDebtHandler(svc.Debts)
	protected.GET("/debts", debtHandler.List)
	protected.POST("/debts", debtHandler.Create)
	protected.GET("/debts/:id", debtHandler.Get)
	protected.PUT("/debts/:id", debtHandler.Update)
	protected.DELETE("/debts/:id", debtHandler.Delete)
	protected.POST("/debts/:id/payments", debtHandler.AddPayment)

	budgetHandler := handler.NewBudgetHandler(svc.Budgets)
	protected.GET("/budgets", budgetHandler.List)
	protected.POST("/budgets", budgetHandler.Create)
	protected.GET("/budgets/progress", budgetHandler.AllProgress)
	protected.GET("/budgets/summary", budgetHandler.Summary)
	protected.GET("/budgets/:id", budgetHandler.Get)
	protected.PUT("/budgets/:id", budgetHandler.Update)
	protected.DELETE("/budgets/:id", budgetHandler.Delete)
	protected.GET("/budgets/:id/progress", budgetHandler.Progress)

	goalHandler := handler.NewGoalHandler(svc.Goals)
	protected.GET("/goals", goalHandler.List)
	protected.POST("/goals", goalHandler.Create)
	protected.GET("/goals/:id", goalHandler.Get)
	protected.PUT("/goals/:id", goalHandler.Update)
	protected.DELETE("/goals/:id", goalHandler.Delete)
	protected.POST("/goals/:id/add-saving", goalHandler.AddSaving)

	subHandler := handler.NewSubscriptionHandler(svc.Subscriptions)
	protected.GET("/subscriptions", subHandler.List)
	protected.POST("/subscriptions", subHandler.Create)
	protected.GET("/subscriptions/:id", subHandler.Get)
	protected.PUT("/subscriptions/:id", subHandler.Update)
	protected.DELETE("/subscriptions/:id", subHandler.Delete)
	protected.POST("/subscriptions/:id/renew", subHandler.Renew)
	protected.POST("/subscriptions/:id/cancel", subHandler.Cancel)

	exportHandler := handler.NewExportHandler(svc.Export, svc.Budgets)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
