package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/middleware"
	"taskmanager/internal/models"
	"taskmanager/internal/validation"
)

// ValidationResponse is the 400 payload.
type ValidationResponse struct {
	Errors validation.Errors `json:"errors"`
}

// MessageResponse is used for 401/404/500 and confirmations.
type MessageResponse struct {
	Message string `json:"message"`
}

// currentUser reads the id set by the auth middleware. Routes using it are
// always behind that middleware, so a miss is a wiring error.
func currentUser(c *gin.Context) (string, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, MessageResponse{Message: "No token, authorization denied"})
	}
	return id, ok
}

// bindErrors turns a JSON decoding failure into field errors.
func bindErrors(err error) validation.Errors {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return validation.Errors{{Field: typeErr.Field, Message: "Invalid value type"}}
	}
	return validation.Errors{{Field: "body", Message: "Invalid JSON body"}}
}

// respondError maps the three error kinds to a response. action names the
// operation in the generic 500 message ("fetching tasks").
func respondError(c *gin.Context, tag, action string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		log.Printf("%s[invalid] %v", tag, verrs)
		c.JSON(http.StatusBadRequest, ValidationResponse{Errors: verrs})
	case errors.Is(err, models.ErrTaskNotFound):
		log.Printf("%s[404]", tag)
		c.JSON(http.StatusNotFound, MessageResponse{Message: "Task not found"})
	default:
		log.Printf("%s[err] %v", tag, err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Server error while " + action})
	}
}
