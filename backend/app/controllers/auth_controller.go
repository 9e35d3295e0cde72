package controllers

import (
	"net/http"

	"bookshelf/backend/app/apperr"
	"bookshelf/backend/app/dto"
	"bookshelf/backend/app/middleware"
	"bookshelf/backend/app/response"
	"bookshelf/backend/app/services"
	"bookshelf/backend/app/validation"

	"github.com/rs/zerolog"
)

type AuthController struct {
	Users    *services.UserService
	Validate *validation.Validator
	Log      zerolog.Logger
}

func NewAuthController(users *services.UserService, v *validation.Validator, log zerolog.Logger) *AuthController {
	return &AuthController{Users: users, Validate: v, Log: log}
}

func tokenResponse(s *services.Session) dto.TokenResponse {
	return dto.TokenResponse{Token: s.Token, ExpiresAt: s.ExpiresAt.Unix(), User: s.User}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if err := c.Validate.Validate(req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	u, err := c.Users.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	sess, err := c.Users.NewSession(u)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.Created(w, tokenResponse(sess), "User registered successfully")
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if err := c.Validate.Validate(req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	sess, err := c.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.OKMessage(w, tokenResponse(sess), "Login successful")
}

// Logout exists for client symmetry; tokens are stateless.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Envelope{Success: true, Message: "Logged out successfully"})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Error(w, c.Log, apperr.Unauthorized("Access token required"))
		return
	}
	u, err := c.Users.Me(r.Context(), claims.UserID)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.OK(w, u)
}

func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Error(w, c.Log, apperr.Unauthorized("Access token required"))
		return
	}
	var req dto.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if err := c.Validate.Validate(req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if err := c.Users.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{Success: true, Message: "Password updated successfully"})
}
