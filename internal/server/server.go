package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/portpak/portpak/internal/company"
	companydomain "github.com/portpak/portpak/internal/company/domain"
	"github.com/portpak/portpak/internal/config"
	"github.com/portpak/portpak/internal/customer"
	customerdomain "github.com/portpak/portpak/internal/customer/domain"
	"github.com/portpak/portpak/internal/dutyfee"
	dutydomain "github.com/portpak/portpak/internal/dutyfee/domain"
	"github.com/portpak/portpak/internal/fee"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	"github.com/portpak/portpak/internal/invoice"
	invoicedomain "github.com/portpak/portpak/internal/invoice/domain"
	"github.com/portpak/portpak/internal/invoice/render"
	"github.com/portpak/portpak/internal/parcel"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	"github.com/portpak/portpak/internal/payment"
	paymentdomain "github.com/portpak/portpak/internal/payment/domain"
	"github.com/portpak/portpak/internal/prealert"
	prealertdomain "github.com/portpak/portpak/internal/prealert/domain"
	"github.com/portpak/portpak/internal/settings"
	settingsdomain "github.com/portpak/portpak/internal/settings/domain"
	"github.com/portpak/portpak/internal/statistics"
	statsdomain "github.com/portpak/portpak/internal/statistics/domain"
	"github.com/portpak/portpak/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	telemetry.Module,
	fx.Provide(registerGin),
	company.Module,
	customer.Module,
	prealert.Module,
	parcel.Module,
	fee.Module,
	dutyfee.Module,
	settings.Module,
	invoice.Module,
	payment.Module,
	statistics.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, metrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log, metrics))
	r.Use(ErrorHandlingMiddleware())
	r.Use(CompanyContextMiddleware(cfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, metrics *telemetry.Metrics) *gin.Engine {
	return NewEngine(cfg, log, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	companySvc  companydomain.Service
	customerSvc customerdomain.Service
	parcelSvc   parceldomain.Service
	preAlertSvc prealertdomain.Service
	feeSvc      feedomain.Service
	dutyFeeSvc  dutydomain.Service
	invoiceSvc  invoicedomain.Service
	paymentSvc  paymentdomain.Service
	settingsSvc settingsdomain.Service
	statsSvc    statsdomain.Service
	renderer    *render.Renderer
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	CompanySvc  companydomain.Service
	CustomerSvc customerdomain.Service
	ParcelSvc   parceldomain.Service
	PreAlertSvc prealertdomain.Service
	FeeSvc      feedomain.Service
	DutyFeeSvc  dutydomain.Service
	InvoiceSvc  invoicedomain.Service
	PaymentSvc  paymentdomain.Service
	SettingsSvc settingsdomain.Service
	StatsSvc    statsdomain.Service
	Renderer    *render.Renderer
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		companySvc:  p.CompanySvc,
		customerSvc: p.CustomerSvc,
		parcelSvc:   p.ParcelSvc,
		preAlertSvc: p.PreAlertSvc,
		feeSvc:      p.FeeSvc,
		dutyFeeSvc:  p.DutyFeeSvc,
		invoiceSvc:  p.InvoiceSvc,
		paymentSvc:  p.PaymentSvc,
		settingsSvc: p.SettingsSvc,
		statsSvc:    p.StatsSvc,
		renderer:    p.Renderer,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	companies := v1.Group("/companies")
	companies.POST("", s.CreateCompany)
	companies.GET("/:id", s.GetCompanyByID)

	customers := v1.Group("/customers")
	customers.POST("", s.CreateCustomer)
	customers.GET("", s.ListCustomers)
	customers.GET("/:id", s.GetCustomerByID)
	customers.GET("/:id/statistics", s.GetCustomerStatistics)

	parcels := v1.Group("/parcels")
	parcels.POST("", s.CreateParcel)
	parcels.GET("", s.ListParcels)
	parcels.GET("/:id", s.GetParcelByID)
	parcels.PATCH("/:id/status", s.UpdateParcelStatus)
	parcels.GET("/:id/duty-fees", s.ListDutyFeesByParcel)
	parcels.GET("/:id/duty-fees/totals", s.GetDutyFeeTotals)

	preAlerts := v1.Group("/pre-alerts")
	preAlerts.POST("", s.CreatePreAlert)
	preAlerts.GET("", s.ListPreAlerts)
	preAlerts.GET("/:id", s.GetPreAlertByID)
	preAlerts.PATCH("/:id", s.UpdatePreAlert)
	preAlerts.POST("/:id/cancel", s.CancelPreAlert)
	preAlerts.DELETE("/:id", s.DeletePreAlert)

	fees := v1.Group("/fees")
	fees.POST("", s.CreateFee)
	fees.GET("", s.ListFees)
	fees.GET("/:id", s.GetFeeByID)
	fees.PATCH("/:id", s.UpdateFee)
	fees.POST("/:id/activate", s.ActivateFee)
	fees.POST("/:id/deactivate", s.DeactivateFee)
	fees.DELETE("/:id", s.DeleteFee)

	dutyFees := v1.Group("/duty-fees")
	dutyFees.POST("", s.CreateDutyFee)
	dutyFees.PATCH("/:id", s.UpdateDutyFee)
	dutyFees.DELETE("/:id", s.DeleteDutyFee)

	invoices := v1.Group("/invoices")
	invoices.POST("/generate", s.GenerateInvoice)
	invoices.POST("/preview", s.PreviewInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoiceByID)
	invoices.GET("/:id/pdf", s.GetInvoicePDF)
	invoices.POST("/:id/items", s.AddInvoiceItem)
	invoices.PATCH("/:id/items/:itemID", s.UpdateInvoiceItem)
	invoices.DELETE("/:id/items/:itemID", s.RemoveInvoiceItem)
	invoices.POST("/:id/finalize", s.FinalizeInvoice)
	invoices.POST("/:id/cancel", s.CancelInvoice)
	invoices.DELETE("/:id", s.DeleteDraftInvoice)
	invoices.GET("/:id/payments", s.ListPaymentsByInvoice)
	invoices.POST("/:id/payments", s.RecordPayment)

	stats := v1.Group("/statistics")
	stats.GET("/admin", s.GetAdminStatistics)

	companySettings := v1.Group("/settings")
	companySettings.GET("/exchange-rate", s.GetExchangeRate)
	companySettings.PUT("/exchange-rate", s.UpdateExchangeRate)
}
