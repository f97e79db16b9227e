package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bergenbysykkel/fleet-backend/internal/middleware"
	"github.com/bergenbysykkel/fleet-backend/internal/validate"
)

type registerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (a *API) registerHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Every field reports its own verdict, valid or not, before the
	// aggregate result.
	result := validate.User(req.Name, req.Phone, req.Email)
	if !result.OK() {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "VALIDATION_FAILED",
			"message": "user not registered due to invalid input",
			"fields":  result.Fields,
		})
		return
	}

	id, err := a.ur.Register(c, req.Name, req.Phone, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "fields": result.Fields})
}

type userResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email,omitempty"`
}

func (a *API) usersHandler(c *gin.Context) {
	users, err := a.ur.GetUsers(c, c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		ur := userResponse{ID: u.ID, Name: u.Name, PhoneNumber: u.PhoneNumber}
		if u.Email.Valid {
			ur.Email = u.Email.String
		}
		resp = append(resp, ur)
	}
	c.JSON(http.StatusOK, resp)
}
