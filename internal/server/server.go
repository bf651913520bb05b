package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riparohq/riparo/internal/assignment"
	assignmentdomain "github.com/riparohq/riparo/internal/assignment/domain"
	"github.com/riparohq/riparo/internal/audit"
	auditdomain "github.com/riparohq/riparo/internal/audit/domain"
	"github.com/riparohq/riparo/internal/authorization"
	"github.com/riparohq/riparo/internal/category"
	"github.com/riparohq/riparo/internal/config"
	"github.com/riparohq/riparo/internal/malfunction"
	malfunctiondomain "github.com/riparohq/riparo/internal/malfunction/domain"
	"github.com/riparohq/riparo/internal/product"
	productdomain "github.com/riparohq/riparo/internal/product/domain"
	"github.com/riparohq/riparo/internal/report"
	reportdomain "github.com/riparohq/riparo/internal/report/domain"
	"github.com/riparohq/riparo/internal/servicecenter"
	centerdomain "github.com/riparohq/riparo/internal/servicecenter/domain"
	"github.com/riparohq/riparo/internal/user"
	userdomain "github.com/riparohq/riparo/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	category.Module,
	user.Module,
	product.Module,
	malfunction.Module,
	servicecenter.Module,
	assignment.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger) *gin.Engine {
	return NewEngine(cfg, log)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	log            *zap.Logger
	db             *gorm.DB
	genID          *snowflake.Node
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	categorySvc    *category.Service
	userRepo       userdomain.Repository
	productSvc     productdomain.Service
	malfunctionSvc malfunctiondomain.Service
	centerSvc      centerdomain.Service
	assignmentSvc  assignmentdomain.Service
	reportSvc      reportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	DB             *gorm.DB
	GenID          *snowflake.Node
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	CategorySvc    *category.Service
	UserRepo       userdomain.Repository
	ProductSvc     productdomain.Service
	MalfunctionSvc malfunctiondomain.Service
	CenterSvc      centerdomain.Service
	AssignmentSvc  assignmentdomain.Service
	ReportSvc      reportdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http"),
		db:             p.DB,
		genID:          p.GenID,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		categorySvc:    p.CategorySvc,
		userRepo:       p.UserRepo,
		productSvc:     p.ProductSvc,
		malfunctionSvc: p.MalfunctionSvc,
		centerSvc:      p.CenterSvc,
		assignmentSvc:  p.AssignmentSvc,
		reportSvc:      p.ReportSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(s.Identity())

	api.GET("/categories", s.ListCategories)
	api.GET("/categories/in-use", s.ListCategoriesInUse)

	api.GET("/products", s.authorize(authorization.ObjectProduct, authorization.ActionProductView), s.ListProducts)
	api.GET("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionProductView), s.GetProduct)
	api.POST("/products", s.authorize(authorization.ObjectProduct, authorization.ActionProductCreate), s.CreateProduct)
	api.PUT("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionProductUpdate), s.UpdateProduct)
	api.PATCH("/products/:id/status", s.authorize(authorization.ObjectProduct, authorization.ActionProductUpdate), s.SetProductStatus)
	api.DELETE("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionProductDelete), s.DeleteProduct)

	api.GET("/products/:id/malfunctions", s.authorize(authorization.ObjectMalfunction, authorization.ActionMalfunctionView), s.ListProductMalfunctions)
	api.POST("/products/:id/malfunctions", s.authorize(authorization.ObjectMalfunction, authorization.ActionMalfunctionCreate), s.CreateMalfunction)
	api.PUT("/malfunctions/:id", s.authorize(authorization.ObjectMalfunction, authorization.ActionMalfunctionUpdate), s.UpdateMalfunction)
	api.DELETE("/malfunctions/:id", s.authorize(authorization.ObjectMalfunction, authorization.ActionMalfunctionDelete), s.DeleteMalfunction)
	api.POST("/malfunctions/:id/confirm", s.authorize(authorization.ObjectMalfunction, authorization.ActionMalfunctionConfirm), s.ConfirmMalfunction)
	api.GET("/malfunctions/search", s.authorize(authorization.ObjectMalfunction, authorization.ActionMalfunctionSearch), s.SearchMalfunctions)

	api.GET("/centers", s.authorize(authorization.ObjectServiceCenter, authorization.ActionServiceCenterView), s.ListCenters)
	api.GET("/centers/:id", s.authorize(authorization.ObjectServiceCenter, authorization.ActionServiceCenterView), s.GetCenter)
	api.POST("/centers", s.authorize(authorization.ObjectServiceCenter, authorization.ActionServiceCenterCreate), s.CreateCenter)
	api.PUT("/centers/:id", s.authorize(authorization.ObjectServiceCenter, authorization.ActionServiceCenterUpdate), s.UpdateCenter)
	api.DELETE("/centers/:id", s.authorize(authorization.ObjectServiceCenter, authorization.ActionServiceCenterDelete), s.DeleteCenter)

	api.PUT("/products/:id/assignee", s.authorize(authorization.ObjectAssignment, authorization.ActionAssignmentAssign), s.AssignProduct)
	api.DELETE("/products/:id/assignee", s.authorize(authorization.ObjectAssignment, authorization.ActionAssignmentAssign), s.UnassignProduct)
	api.PUT("/centers/:id/technicians/:userID", s.authorize(authorization.ObjectAssignment, authorization.ActionAssignmentAssign), s.AssignTechnician)
	api.DELETE("/centers/:id/technicians/:userID", s.authorize(authorization.ObjectAssignment, authorization.ActionAssignmentAssign), s.RemoveTechnician)
	api.GET("/assignments/unassigned", s.authorize(authorization.ObjectAssignment, authorization.ActionAssignmentView), s.ListUnassigned)
	api.GET("/centers/:id/available-technicians", s.authorize(authorization.ObjectAssignment, authorization.ActionAssignmentView), s.ListAvailableTechnicians)

	api.GET("/reports/summary", s.authorize(authorization.ObjectReport, authorization.ActionReportView), s.GetReportSummary)
	api.GET("/reports/top", s.authorize(authorization.ObjectReport, authorization.ActionReportTop), s.GetTopReported)

	api.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
