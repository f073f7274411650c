//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package api exposes the admin and account-owner operations over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Success writes data with status 200.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created writes data with status 201.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Fail writes err with the status implied by its kind. The message is
// passed through unchanged.
func Fail(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   err.Error(),
		Code:    string(appErr.Kind),
	})
}

// FailList writes a list failure: an empty list alongside the error, so
// clients can render a no-data state.
func FailList(c *gin.Context, empty any, err error) {
	appErr := apperrors.From(err)
	logging.Warn().Err(err).Str("path", c.FullPath()).Msg("List request failed")
	c.AbortWithStatusJSON(appErr.StatusCode(), Response{
		Success: false,
		Data:    empty,
		Error:   err.Error(),
		Code:    string(appErr.Kind),
	})
}

// BadRequest writes a validation failure with message.
func BadRequest(c *gin.Context, message string) {
	Fail(c, apperrors.Validation(message))
}
