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
	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-brokeradmin/internal/directory"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/resolver"
	"github.com/pgEdge/pgedge-brokeradmin/internal/service"
)

// ResolveScanLimit bounds the CDS records and users loaded to resolve
// list rows.
const ResolveScanLimit = 1000

// Handler holds the request handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a Handler for svc.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// ============================================================
// CDS
// ============================================================

// ListCDS handles GET /api/v1/cds.
func (h *Handler) ListCDS(c *gin.Context) {
	ctx := c.Request.Context()
	f, filtered := cdsFilter(c)

	var (
		out []domain.CDS
		err error
	)
	if filtered {
		out, err = h.svc.FilterCDS(ctx, f)
	} else {
		out, err = h.svc.ListCDS(ctx, f.Limit)
	}
	if err != nil {
		FailList(c, out, err)
		return
	}
	Success(c, out)
}

// GetCDS handles GET /api/v1/cds/:id.
func (h *Handler) GetCDS(c *gin.Context) {
	cds, err := h.svc.GetCDS(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, cds)
}

// CreateCDS handles POST /api/v1/cds.
func (h *Handler) CreateCDS(c *gin.Context) {
	var req domain.CDS
	if !bind(c, &req) {
		return
	}
	id, err := h.svc.CreateCDS(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, gin.H{"id": id})
}

// UpdateCDS handles PATCH /api/v1/cds/:id.
func (h *Handler) UpdateCDS(c *gin.Context) {
	var req domain.CDSPatch
	if !bind(c, &req) {
		return
	}
	if err := h.svc.UpdateCDS(c.Request.Context(), c.Param("id"), req); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// DeleteCDS handles DELETE /api/v1/cds/:id.
func (h *Handler) DeleteCDS(c *gin.Context) {
	if err := h.svc.DeleteCDS(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// ============================================================
// Stock accounts
// ============================================================

// ListAccounts handles GET /api/v1/accounts. With resolve=true every row
// carries its CDS name and owner email.
func (h *Handler) ListAccounts(c *gin.Context) {
	ctx := c.Request.Context()
	f, filtered, err := accountFilter(c)
	if err != nil {
		FailList(c, []domain.StockAccount{}, err)
		return
	}

	var out []domain.StockAccount
	if filtered {
		out, err = h.svc.FilterAccounts(ctx, f)
	} else {
		out, err = h.svc.ListAccounts(ctx, f.Limit)
	}
	if err != nil {
		FailList(c, out, err)
		return
	}

	if c.Query("resolve") != "true" {
		Success(c, out)
		return
	}
	Success(c, resolver.Accounts(out, h.loadCDS(c), h.loadUsers(c)))
}

// GetAccount handles GET /api/v1/accounts/:id.
func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.svc.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, account)
}

// CreateAccount handles POST /api/v1/accounts.
func (h *Handler) CreateAccount(c *gin.Context) {
	var req domain.StockAccount
	if !bind(c, &req) {
		return
	}
	account, err := h.svc.CreateAccount(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, account)
}

// UpdateAccount handles PATCH /api/v1/accounts/:id.
func (h *Handler) UpdateAccount(c *gin.Context) {
	var req domain.AccountPatch
	if !bind(c, &req) {
		return
	}
	if err := h.svc.UpdateAccount(c.Request.Context(), c.Param("id"), req); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// UpdateAccountStatusRequest is the body of PUT /api/v1/accounts/:id/status.
type UpdateAccountStatusRequest struct {
	Status domain.AccountStatus `json:"status"`
}

// UpdateAccountStatus handles PUT /api/v1/accounts/:id/status.
func (h *Handler) UpdateAccountStatus(c *gin.Context) {
	var req UpdateAccountStatusRequest
	if !bind(c, &req) {
		return
	}
	if err := h.svc.UpdateAccountStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id"), "status": req.Status})
}

// DeleteAccount handles DELETE /api/v1/accounts/:id.
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.svc.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// ============================================================
// Stock transactions
// ============================================================

// ListTransactions handles GET /api/v1/transactions. With resolve=true
// every row carries its account's client code and owner email.
func (h *Handler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	f, filtered, err := transactionFilter(c)
	if err != nil {
		FailList(c, []domain.StockTransaction{}, err)
		return
	}

	var out []domain.StockTransaction
	if filtered {
		out, err = h.svc.FilterTransactions(ctx, f)
	} else {
		out, err = h.svc.ListTransactions(ctx, f.Limit)
	}
	if err != nil {
		FailList(c, out, err)
		return
	}

	if c.Query("resolve") != "true" {
		Success(c, out)
		return
	}
	accounts, err := h.svc.ListAccounts(ctx, ResolveScanLimit)
	if err != nil {
		accounts = nil
	}
	Success(c, resolver.Transactions(out, accounts, h.loadUsers(c)))
}

// GetTransaction handles GET /api/v1/transactions/:id.
func (h *Handler) GetTransaction(c *gin.Context) {
	tx, err := h.svc.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, tx)
}

// CreateTransaction handles POST /api/v1/transactions.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req domain.StockTransaction
	if !bind(c, &req) {
		return
	}
	tx, err := h.svc.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, tx)
}

// UpdateTransaction handles PATCH /api/v1/transactions/:id.
func (h *Handler) UpdateTransaction(c *gin.Context) {
	var req domain.TransactionPatch
	if !bind(c, &req) {
		return
	}
	if err := h.svc.UpdateTransaction(c.Request.Context(), c.Param("id"), req); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id.
func (h *Handler) DeleteTransaction(c *gin.Context) {
	if err := h.svc.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// ============================================================
// User profiles
// ============================================================

// ListProfiles handles GET /api/v1/profiles. user_id selects the single
// profile of a directory user.
func (h *Handler) ListProfiles(c *gin.Context) {
	ctx := c.Request.Context()
	if userID, ok := c.GetQuery("user_id"); ok {
		p, err := h.svc.GetProfileByUserID(ctx, userID)
		if err != nil {
			Fail(c, err)
			return
		}
		Success(c, p)
		return
	}

	f, filtered := profileFilter(c)
	var (
		out []domain.UserProfile
		err error
	)
	if filtered {
		out, err = h.svc.FilterProfiles(ctx, f)
	} else {
		out, err = h.svc.ListProfiles(ctx, f.Limit)
	}
	if err != nil {
		FailList(c, out, err)
		return
	}
	Success(c, out)
}

// GetProfile handles GET /api/v1/profiles/:id.
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, p)
}

// CreateProfile handles POST /api/v1/profiles.
func (h *Handler) CreateProfile(c *gin.Context) {
	var req domain.UserProfile
	if !bind(c, &req) {
		return
	}
	id, err := h.svc.CreateProfile(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, gin.H{"id": id})
}

// SaveProfile handles PUT /api/v1/profiles, creating or updating the
// profile of the body's user_id.
func (h *Handler) SaveProfile(c *gin.Context) {
	var req domain.UserProfile
	if !bind(c, &req) {
		return
	}
	id, err := h.svc.SaveProfile(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id})
}

// UpdateProfile handles PATCH /api/v1/profiles/:id.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req domain.ProfilePatch
	if !bind(c, &req) {
		return
	}
	if err := h.svc.UpdateProfile(c.Request.Context(), c.Param("id"), req); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// DeleteProfile handles DELETE /api/v1/profiles/:id.
func (h *Handler) DeleteProfile(c *gin.Context) {
	if err := h.svc.DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// ============================================================
// Directory users
// ============================================================

// ListUsers handles GET /api/v1/users. q searches emails; selectable=true
// keeps only users that can own an account.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		out []directory.User
		err error
	)
	switch {
	case c.Query("q") != "":
		out, err = h.svc.SearchUsers(ctx, c.Query("q"))
	case c.Query("selectable") == "true":
		out, err = h.svc.SelectableUsers(ctx, limit(c))
	default:
		out, err = h.svc.ListUsers(ctx, limit(c))
	}
	if err != nil {
		FailList(c, []directory.User{}, err)
		return
	}
	Success(c, out)
}

// GetUser handles GET /api/v1/users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, u)
}

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUser handles POST /api/v1/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, u)
}

// UpdateUser handles PATCH /api/v1/users/:id.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req directory.UserUpdate
	if !bind(c, &req) {
		return
	}
	u, err := h.svc.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, u)
}

// DeleteUser handles DELETE /api/v1/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id")})
}

// ============================================================
// Account owner
// ============================================================

// Dashboard handles GET /api/v1/me/dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), principal(c).UserID, limit(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, d)
}

// MyProfile handles GET /api/v1/me/profile.
func (h *Handler) MyProfile(c *gin.Context) {
	p, err := h.svc.GetProfileByUserID(c.Request.Context(), principal(c).UserID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, p)
}

// SaveMyProfile handles PUT /api/v1/me/profile. The profile is always
// saved for the caller, whatever user_id the body names.
func (h *Handler) SaveMyProfile(c *gin.Context) {
	var req domain.UserProfile
	if !bind(c, &req) {
		return
	}
	req.UserID = principal(c).UserID
	id, err := h.svc.SaveProfile(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id})
}

// loadCDS returns the CDS records used to resolve rows, or nil when they
// could not be loaded.
func (h *Handler) loadCDS(c *gin.Context) []domain.CDS {
	cds, err := h.svc.ListCDS(c.Request.Context(), ResolveScanLimit)
	if err != nil {
		return nil
	}
	return cds
}

// loadUsers returns the users used to resolve rows, or nil when they
// could not be loaded.
func (h *Handler) loadUsers(c *gin.Context) []directory.User {
	users, err := h.svc.ListUsers(c.Request.Context(), ResolveScanLimit)
	if err != nil {
		return nil
	}
	return users
}
