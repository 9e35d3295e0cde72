package controllers

import (
	"net/http"

	"bookshelf/backend/app/dto"
	"bookshelf/backend/app/middleware"
	"bookshelf/backend/app/models"
	"bookshelf/backend/app/response"
	"bookshelf/backend/app/services"
	"bookshelf/backend/app/validation"

	"github.com/rs/zerolog"
)

// AdminController manages user accounts. Every route sits behind RequireAdmin.
type AdminController struct {
	Users    *services.UserService
	Validate *validation.Validator
	Log      zerolog.Logger
}

func NewAdminController(users *services.UserService, v *validation.Validator, log zerolog.Logger) *AdminController {
	return &AdminController{Users: users, Validate: v, Log: log}
}

func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Users.ListUsers(r.Context())
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.OK(w, users)
}

func (c *AdminController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if err := c.Validate.Validate(req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	u, err := c.Users.CreateUser(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.Created(w, u, "User created successfully")
}

func (c *AdminController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	u, err := c.Users.GetUser(r.Context(), id)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.OK(w, u)
}

func (c *AdminController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	var req dto.UpdateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if err := c.Validate.Validate(req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	actor := middleware.GetClaims(r.Context())
	u, err := c.Users.UpdateRole(r.Context(), actor.UserID, id, req.Role)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.OKMessage(w, u, "User role updated successfully")
}

func (c *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	actor := middleware.GetClaims(r.Context())
	if err := c.Users.DeleteUser(r.Context(), actor.UserID, id); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{Success: true, Message: "User deleted successfully"})
}
