//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-brokeradmin/internal/metrics"
	"github.com/pgEdge/pgedge-brokeradmin/internal/service"
)

// RouterConfig holds what the router needs.
type RouterConfig struct {
	Service    *service.Service
	Authorizer service.Authorizer

	// Metrics is optional. When set, requests are counted and /metrics
	// is served.
	Metrics *metrics.Collector

	// TrustHeaders accepts identity headers from an upstream proxy.
	TrustHeaders bool
}

// SetupRouter builds the gin engine.
func SetupRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	h := NewHandler(cfg.Service)
	auth := AuthMiddleware(cfg.Service, cfg.TrustHeaders)

	v1 := r.Group("/api/v1")

	me := v1.Group("/me", auth)
	{
		me.GET("/dashboard", h.Dashboard)
		me.GET("/profile", h.MyProfile)
		me.PUT("/profile", h.SaveMyProfile)
	}

	admin := v1.Group("", auth, AdminMiddleware(cfg.Authorizer))
	{
		cds := admin.Group("/cds")
		{
			cds.GET("", h.ListCDS)
			cds.POST("", h.CreateCDS)
			cds.GET("/:id", h.GetCDS)
			cds.PATCH("/:id", h.UpdateCDS)
			cds.DELETE("/:id", h.DeleteCDS)
		}

		accounts := admin.Group("/accounts")
		{
			accounts.GET("", h.ListAccounts)
			accounts.POST("", h.CreateAccount)
			accounts.GET("/:id", h.GetAccount)
			accounts.PATCH("/:id", h.UpdateAccount)
			accounts.PUT("/:id/status", h.UpdateAccountStatus)
			accounts.DELETE("/:id", h.DeleteAccount)
		}

		transactions := admin.Group("/transactions")
		{
			transactions.GET("", h.ListTransactions)
			transactions.POST("", h.CreateTransaction)
			transactions.GET("/:id", h.GetTransaction)
			transactions.PATCH("/:id", h.UpdateTransaction)
			transactions.DELETE("/:id", h.DeleteTransaction)
		}

		profiles := admin.Group("/profiles")
		{
			profiles.GET("", h.ListProfiles)
			profiles.POST("", h.CreateProfile)
			profiles.PUT("", h.SaveProfile)
			profiles.GET("/:id", h.GetProfile)
			profiles.PATCH("/:id", h.UpdateProfile)
			profiles.DELETE("/:id", h.DeleteProfile)
		}

		users := admin.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.GET("/:id", h.GetUser)
			users.PATCH("/:id", h.UpdateUser)
			users.DELETE("/:id", h.DeleteUser)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
