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
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/internal/metrics"
	"github.com/pgEdge/pgedge-brokeradmin/internal/service"
)

// Headers set by a trusted authenticating proxy.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
)

const principalKey = "principal"

// LoggerMiddleware logs every request.
func LoggerMiddleware() gin.HandlerFunc {
	log := logging.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request")
	}
}

// RecoveryMiddleware turns a panic into a 500 reply in the response
// envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.Error().
			Str("panic", fmt.Sprint(recovered)).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "internal server error",
			Code:    string(apperrors.KindInternal),
		})
	})
}

// MetricsMiddleware records request counts and latency by route.
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// AuthMiddleware identifies the caller. With trustHeaders set, the
// X-User-ID and X-User-Email headers of an upstream proxy are accepted;
// otherwise, or when they are absent, HTTP Basic credentials are checked
// against the directory.
func AuthMiddleware(svc *service.Service, trustHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if trustHeaders {
			if id := c.GetHeader(HeaderUserID); id != "" {
				c.Set(principalKey, service.Principal{UserID: id, Email: c.GetHeader(HeaderUserEmail)})
				c.Next()
				return
			}
		}

		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="brokeradmin"`)
			Fail(c, apperrors.ErrUnauthorized)
			return
		}
		u, err := svc.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			Fail(c, err)
			return
		}
		c.Set(principalKey, service.Principal{UserID: u.ID, Email: u.Email})
		c.Next()
	}
}

// AdminMiddleware rejects callers the authorizer does not recognise as
// admin.
func AdminMiddleware(authz service.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := authz.IsAdmin(c.Request.Context(), principal(c))
		if err != nil {
			Fail(c, err)
			return
		}
		if !ok {
			Fail(c, apperrors.ErrForbidden.WithMessage("admin access required"))
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) service.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(service.Principal); ok {
			return p
		}
	}
	return service.Principal{}
}
