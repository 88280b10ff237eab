// Auth HTTP handlers.
//
//   - POST /auth/register
//   - POST /auth/login
//   - GET  /auth/user      (Bearer)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/http/middleware"
	"github.com/tbourn/go-lead-backend/internal/services"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"Asha Rao"`
	Email    string `json:"email" binding:"required" example:"asha@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret!"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"asha@example.com"`
	Password string `json:"password" example:"s3cret!"`
}

// UserView is the public part of a user.
type UserView struct {
	ID    string `json:"id" example:"2b1c6f4e-8d7a-4c1e-9f3a-0a1b2c3d4e5f"`
	Name  string `json:"name" example:"Asha Rao"`
	Email string `json:"email" example:"asha@example.com"`
	Role  string `json:"role,omitempty" example:"agent"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool     `json:"success" example:"true"`
	User    UserView `json:"user"`
	Token   string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// UserResponse is returned by GET /auth/user.
type UserResponse struct {
	Success bool     `json:"success" example:"true"`
	User    UserView `json:"user"`
}

func viewOf(u *domain.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Register godoc
// @ID          register
// @Summary     Register a dashboard user
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Account"
//
// @Success     201  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     503  {object}  handlers.ErrorResponse  "Auth not configured"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Please provide name, email and password")
		return
	}

	u, tok, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Please provide name, email and password")
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeEmailTaken, "User already exists")
	case errors.Is(err, services.ErrAuthDisabled):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Error registering user: "+err.Error())
	default:
		ok(c, http.StatusCreated, AuthResponse{Success: true, User: viewOf(u), Token: tok})
	}
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Exchanges email and password for a bearer token. When an allowlist is configured only listed emails may log in.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     403  {object}  handlers.ErrorResponse  "Email not allowed"
// @Failure     503  {object}  handlers.ErrorResponse  "Auth not configured"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, tok, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, services.ErrEmailNotAllowed):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "This email is not allowed to log in")
	case errors.Is(err, services.ErrAuthDisabled):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Error logging in: "+err.Error())
	default:
		ok(c, http.StatusOK, AuthResponse{Success: true, User: viewOf(u), Token: tok})
	}
}

// CurrentUser godoc
// @ID          currentUser
// @Summary     Current user
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.UserResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/user [get]
func (h *Handlers) CurrentUser(c *gin.Context) {
	uid := middleware.UserID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "No token, authorization denied")
		return
	}
	u, err := h.auth.Me(c.Request.Context(), uid)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "User not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, UserResponse{Success: true, User: viewOf(u)})
	}
}
