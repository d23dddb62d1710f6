package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/server/handlers"
	"github.com/RandySimanca/avicola/internal/service/auth"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Registry *handlers.RegistryHandler
	Ledger   *handlers.LedgerHandler
	Report   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authSvc *auth.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)

	api := r.Group("/api", authMiddleware(authSvc))
	{
		api.GET("/batches", h.Registry.ListBatches)
		api.POST("/batches", h.Registry.CreateBatch)
		api.GET("/batches/:id", h.Registry.GetBatch)
		api.PUT("/batches/:id", h.Registry.UpdateBatch)
		api.POST("/batches/:id/finalize", h.Registry.FinalizeBatch)

		api.GET("/items", h.Registry.ListItems)
		api.POST("/items", h.Registry.CreateItem)
		api.GET("/items/:id", h.Registry.GetItem)
		api.PUT("/items/:id", h.Registry.UpdateItem)

		api.GET("/farms", h.Registry.ListFarms)
		api.POST("/farms", h.Registry.CreateFarm)
		api.GET("/sheds", h.Registry.ListSheds)
		api.POST("/sheds", h.Registry.CreateShed)

		api.GET("/daily-logs", h.Registry.ListDailyLogs)
		api.POST("/daily-logs", h.Ledger.RecordDailyLog)
		api.PUT("/daily-logs/:id", h.Ledger.UpdateDailyLog)
		api.DELETE("/daily-logs/:id", h.Ledger.DeleteDailyLog)

		api.GET("/sales", h.Registry.ListSales)
		api.POST("/sales", h.Ledger.RecordSale)
		api.PUT("/sales/:id", h.Ledger.UpdateSale)
		api.DELETE("/sales/:id", h.Ledger.DeleteSale)

		api.GET("/consumptions", h.Registry.ListConsumptions)
		api.POST("/consumptions", h.Ledger.RecordConsumption)

		api.GET("/expenses", h.Registry.ListExpenses)
		api.POST("/expenses", h.Ledger.RecordExpense)

		api.GET("/reports/summary", h.Report.GlobalSummary)
		api.GET("/reports/kpis", h.Report.GlobalKPIs)
		api.GET("/sync/status", h.Report.SyncStatus)
		api.POST("/sync/replay", h.Report.ForceSync)
	}

	admin := api.Group("", adminOnly())
	{
		admin.DELETE("/batches/:id", h.Registry.DeleteBatch)
		admin.DELETE("/items/:id", h.Registry.DeleteItem)
		admin.DELETE("/farms/:id", h.Registry.DeleteFarm)
		admin.DELETE("/sheds/:id", h.Registry.DeleteShed)
		admin.DELETE("/expenses/:id", h.Ledger.DeleteExpense)

		admin.GET("/users", h.Auth.ListUsers)
		admin.POST("/users/:id/approve", h.Auth.ApproveUser)
		admin.POST("/users/:id/reject", h.Auth.RejectUser)
		admin.POST("/users/:id/toggle", h.Auth.ToggleUserStatus)
		admin.PUT("/users/:id/role", h.Auth.UpdateUserRole)
		admin.DELETE("/users/:id", h.Auth.DeleteUser)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func authMiddleware(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		session, err := authSvc.SessionFromToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(handlers.SessionKey, session)
		c.Next()
	}
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, _ := c.Get(handlers.SessionKey)
		session, _ := value.(models.Session)
		if session.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
