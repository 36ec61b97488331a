package handlers

import (
	"net/http"

	"rideshare/internal/http/middleware"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

// userRequest is shared by register, create and update; pointers mark optional fields.
type userRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	PhoneNumber  *string `json:"phone_number"`
	Dob          *string `json:"dob"`
	Status       *int    `json:"status"`
	VerifyStatus *int    `json:"verify_status"`
	ReferrerCode *string `json:"referrer_code"`
	Type         *int    `json:"type"`
	CreatedBy    *int64  `json:"created_by"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r userRequest) createInput() services.CreateUserInput {
	return services.CreateUserInput{
		Name:         deref(r.Name),
		Email:        deref(r.Email),
		Password:     deref(r.Password),
		PhoneNumber:  r.PhoneNumber,
		Dob:          r.Dob,
		Status:       r.Status,
		VerifyStatus: r.VerifyStatus,
		ReferrerCode: r.ReferrerCode,
		Type:         r.Type,
		CreatedBy:    r.CreatedBy,
	}
}

func (r userRequest) updateInput() services.UpdateUserInput {
	return services.UpdateUserInput{
		Name:         r.Name,
		Email:        r.Email,
		PhoneNumber:  r.PhoneNumber,
		Dob:          r.Dob,
		Status:       r.Status,
		VerifyStatus: r.VerifyStatus,
		ReferrerCode: r.ReferrerCode,
		Type:         r.Type,
	}
}

func userService(c *gin.Context) services.UserService {
	return services.UserService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/users
func GetUsers(c *gin.Context) {
	out, err := userService(c).ListUsers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/users/:id
func GetUserByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := userService(c).GetUser(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/users
func CreateUser(c *gin.Context) {
	var req userRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	out, err := userService(c).CreateUser(c.Request.Context(), req.createInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// PUT /api/users/:id (self only)
func UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req userRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Password != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "password: use the reset flow to change it", nil)
		return
	}
	actor, _ := middleware.CurrentUserID(c)
	out, err := userService(c).UpdateUser(c.Request.Context(), id, actor, req.updateInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /api/users/:id (self only)
func DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := userService(c).DeleteUser(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
