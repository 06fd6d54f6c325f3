// Package server wires the HTTP surface: routing, auth, request plumbing
// and the JSON envelope.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/audit"
	auditdomain "github.com/casaantigua/anticuario/internal/audit/domain"
	"github.com/casaantigua/anticuario/internal/auth"
	authdomain "github.com/casaantigua/anticuario/internal/auth/domain"
	"github.com/casaantigua/anticuario/internal/cache"
	"github.com/casaantigua/anticuario/internal/client"
	clientdomain "github.com/casaantigua/anticuario/internal/client/domain"
	"github.com/casaantigua/anticuario/internal/config"
	"github.com/casaantigua/anticuario/internal/export"
	"github.com/casaantigua/anticuario/internal/installment"
	installmentdomain "github.com/casaantigua/anticuario/internal/installment/domain"
	"github.com/casaantigua/anticuario/internal/inventory"
	inventorydomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/internal/landing"
	landingdomain "github.com/casaantigua/anticuario/internal/landing/domain"
	"github.com/casaantigua/anticuario/internal/observability"
	obsmiddleware "github.com/casaantigua/anticuario/internal/observability/logger"
	obsmetrics "github.com/casaantigua/anticuario/internal/observability/metrics"
	obstracing "github.com/casaantigua/anticuario/internal/observability/tracing"
	"github.com/casaantigua/anticuario/internal/qr"
	qrdomain "github.com/casaantigua/anticuario/internal/qr/domain"
	"github.com/casaantigua/anticuario/internal/sale"
	saledomain "github.com/casaantigua/anticuario/internal/sale/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	auth.Module,
	cache.Module,
	client.Module,
	export.Module,
	installment.Module,
	inventory.Module,
	landing.Module,
	qr.Module,
	sale.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	authSvc        authdomain.Service
	auditSvc       auditdomain.Service
	clientSvc      clientdomain.Service
	inventorySvc   inventorydomain.Service
	installmentSvc installmentdomain.Service
	landingSvc     landingdomain.Service
	qrSvc          qrdomain.Service
	saleSvc        saledomain.Service
	exportSvc      *export.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	AuthSvc        authdomain.Service
	AuditSvc       auditdomain.Service
	ClientSvc      clientdomain.Service
	InventorySvc   inventorydomain.Service
	InstallmentSvc installmentdomain.Service
	LandingSvc     landingdomain.Service
	QRSvc          qrdomain.Service
	SaleSvc        saledomain.Service
	ExportSvc      *export.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		authSvc:        p.AuthSvc,
		auditSvc:       p.AuditSvc,
		clientSvc:      p.ClientSvc,
		inventorySvc:   p.InventorySvc,
		installmentSvc: p.InstallmentSvc,
		landingSvc:     p.LandingSvc,
		qrSvc:          p.QRSvc,
		saleSvc:        p.SaleSvc,
		exportSvc:      p.ExportSvc,
	}

	svc.registerPublicRoutes()
	svc.registerStaffRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerPublicRoutes wires everything reachable without a token: the
// storefront reads and the label scan target.
func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.POST("/auth/login", s.Login)
	api.GET("/categories", s.ListCategories)
	api.GET("/landing/featured-items", s.GetFeaturedItems)

	labels := api.Group("/qr")
	{
		labels.GET("/:itemId", s.RenderQR)
		labels.GET("/:itemId/view", s.PublicItemView)
	}
}

// registerStaffRoutes wires the authenticated surface. Reads are open to
// every role; writes require clerk or admin.
func (s *Server) registerStaffRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.GET("/auth/me", s.Me)

	inv := api.Group("/inventory")
	{
		inv.GET("", s.ListItems)
		inv.GET("/stats", s.InventoryStats)
		inv.GET("/export", s.ExportInventory)
		inv.GET("/friendly/:friendlyId", s.GetItemByFriendlyID)
		inv.GET("/:id", s.GetItem)
		inv.POST("", s.RequireWrite(), s.CreateItem)
		inv.PUT("/:id", s.RequireWrite(), s.UpdateItem)
		inv.DELETE("/:id", s.RequireAdmin(), s.DeleteItem)
	}

	clients := api.Group("/clients")
	{
		clients.GET("", s.ListClients)
		clients.GET("/:id", s.GetClient)
		clients.GET("/:id/stats", s.ClientStats)
		clients.GET("/:id/sales", s.ClientSales)
		clients.GET("/:id/installment-plans", s.ClientPlans)
		clients.POST("", s.RequireWrite(), s.CreateClient)
		clients.PUT("/:id", s.RequireWrite(), s.UpdateClient)
		clients.DELETE("/:id", s.RequireAdmin(), s.DeleteClient)
	}

	sales := api.Group("/sales")
	{
		sales.GET("", s.ListSales)
		sales.GET("/stats", s.SaleStats)
		sales.GET("/export", s.ExportSales)
		sales.GET("/:id", s.GetSale)
		sales.GET("/:id/installment-plans", s.SalePlans)
		sales.POST("", s.RequireWrite(), s.CreateSale)
		sales.PUT("/:id", s.RequireWrite(), s.UpdateSale)
		sales.PUT("/:id/status", s.RequireWrite(), s.UpdateSaleStatus)
	}

	plans := api.Group("/installment-plans")
	{
		plans.GET("", s.ListPlans)
		plans.GET("/overdue", s.OverduePlans)
		plans.GET("/:id", s.GetPlan)
		plans.GET("/:id/summary", s.PlanSummary)
		plans.GET("/:id/payments", s.ListPlanPayments)
		plans.POST("", s.RequireWrite(), s.CreatePlan)
		plans.PUT("/:id", s.RequireWrite(), s.UpdatePlan)
		plans.DELETE("/:id", s.RequireAdmin(), s.DeletePlan)
		plans.POST("/:id/payments", s.RequireWrite(), s.RecordPlanPayment)
		plans.PUT("/:id/payments/:paymentId", s.RequireWrite(), s.UpdatePlanPayment)
		plans.DELETE("/:id/payments/:paymentId", s.RequireAdmin(), s.DeletePlanPayment)
	}

	api.PUT("/landing/featured-items", s.RequireWrite(), s.UpdateFeaturedItems)
}

// registerAdminRoutes wires user management and the audit trail.
func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AuthRequired(), s.RequireAdmin())

	admin.POST("/users", s.CreateUser)
	admin.GET("/audit-logs", s.ListAuditLogs)
}
