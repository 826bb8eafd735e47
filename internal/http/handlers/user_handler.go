// User HTTP handlers:
//   - POST /api/users (alias /api/users/register)
//   - GET  /api/users/{id}
//   - GET  /api/users/{id}/stats
//   - PUT  /api/users/{id}/plan
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userNotFound = "User not found"

// RegisterUserRequest is the JSON payload for registration.
type RegisterUserRequest struct {
	Email string `json:"email" example:"ana@example.com"`
	Name  string `json:"name" example:"Ana"`
	// Plan is free, pro or enterprise. Unknown values become free.
	Plan string `json:"plan,omitempty" example:"pro"`
}

// ChangePlanRequest is the JSON payload for a plan switch.
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required" example:"enterprise"`
}

// RegisterUser godoc
// @ID          registerUser
// @Summary     Register a user
// @Description Creates a user. The returned user_id is what clients send as X-User-ID.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RegisterUserRequest  true  "Registration"
// @Success     201  {object}  services.Profile
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed JSON"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     422  {object}  handlers.ErrorResponse  "Validation error"
// @Router      /api/users [post]
// @Router      /api/users/register [post]
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()
	u, err := h.users.Register(ctx, req.Email, req.Name, req.Plan)
	if err != nil {
		failErr(c, err, userNotFound)
		return
	}
	p, err := h.users.Profile(ctx, u.ID)
	if err != nil {
		failErr(c, err, userNotFound)
		return
	}
	ok(c, http.StatusCreated, p)
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user profile
// @Tags        Users
// @Produce     json
// @Param       id   path  string  true  "User ID"
// @Success     200  {object}  services.Profile
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /api/users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	p, err := h.users.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err, userNotFound)
		return
	}
	ok(c, http.StatusOK, p)
}

// GetUserStats godoc
// @ID          getUserStats
// @Summary     Usage against plan limits
// @Tags        Users
// @Produce     json
// @Param       id   path  string  true  "User ID"
// @Success     200  {object}  services.UserStats
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /api/users/{id}/stats [get]
func (h *Handlers) GetUserStats(c *gin.Context) {
	st, err := h.users.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err, userNotFound)
		return
	}
	ok(c, http.StatusOK, st)
}

// ChangePlan godoc
// @ID          changePlan
// @Summary     Change a user's plan
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       id    path  string  true  "User ID"
// @Param       body  body  handlers.ChangePlanRequest  true  "New plan"
// @Success     200  {object}  services.PlanChange
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed JSON"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Unknown plan"
// @Router      /api/users/{id}/plan [put]
func (h *Handlers) ChangePlan(c *gin.Context) {
	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "plan required")
		return
	}
	ch, err := h.users.ChangePlan(c.Request.Context(), c.Param("id"), req.Plan)
	if err != nil {
		failErr(c, err, userNotFound)
		return
	}
	ok(c, http.StatusOK, ch)
}
