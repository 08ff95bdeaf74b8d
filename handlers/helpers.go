package handlers

import (
	"errors"
	"log"
	"net/http"

	"pingly-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
)

// respondError maps service sentinels to HTTP statuses; anything unmapped is
// a 500 with the detail kept out of the response body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidOTP),
		errors.Is(err, services.ErrRegistrationExpired),
		errors.Is(err, services.ErrNoResetRequest),
		errors.Is(err, services.ErrNoFields),
		errors.Is(err, services.ErrDirectParticipants),
		errors.Is(err, services.ErrGroupNameRequired),
		errors.Is(err, services.ErrParticipantsRequired),
		errors.Is(err, services.ErrInvalidParticipant),
		errors.Is(err, services.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

// bindingError turns validator output into a response body: the first
// human-readable message, plus an errors array when several fields failed.
func bindingError(err error) gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return gin.H{"message": "invalid request body"}
	}

	messages := make([]string, 0, len(verrs))
	for _, field := range verrs {
		messages = append(messages, fieldErrorMessage(field))
	}
	body := gin.H{"message": messages[0]}
	if len(messages) > 1 {
		body["errors"] = messages
	}
	return body
}

func fieldErrorMessage(field validator.FieldError) string {
	switch field.Tag() {
	case "required":
		return field.Field() + " is required"
	case "email":
		return field.Field() + " must be a valid email address"
	case "min":
		return field.Field() + " must be at least " + field.Param() + " characters"
	case "max":
		return field.Field() + " must be at most " + field.Param() + " characters"
	case "len":
		return field.Field() + " must be exactly " + field.Param() + " characters"
	case "oneof":
		return field.Field() + " must be one of: " + field.Param()
	default:
		return field.Field() + " is invalid"
	}
}

func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet("userID").(uuid.UUID)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
