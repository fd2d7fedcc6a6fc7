package handler

import (
	"strconv"

	"basapp/internal/models"
	"basapp/pkg/errors"
	"basapp/pkg/response"

	"github.com/gin-gonic/gin"
)

const currentUserField = "current_user"

// AuthRequired re-derives the acting user from the identity the
// gateway's policy layer injected. Authentication itself is an
// external collaborator; only the user lookup happens here.
func (h *Handlers) AuthRequired(c *gin.Context) {
	raw := c.GetHeader("X-User-ID")
	id, err := strconv.ParseUint(raw, 10, 32)
	if raw == "" || err != nil {
		response.Fail(c, errors.WithCode(errors.CodeAuthorizationRequired, "authorization required"))
		c.Abort()
		return
	}
	user, err := models.GetUser(h.db, uint(id))
	if err != nil || !user.Active {
		response.Fail(c, errors.WithCode(errors.CodeAuthorizationRequired, "authorization required"))
		c.Abort()
		return
	}
	c.Set(currentUserField, user)
	c.Set("user_id", user.ID)
	c.Next()
}

// CurrentUser returns the acting user set by AuthRequired.
func CurrentUser(c *gin.Context) *models.User {
	user, _ := c.MustGet(currentUserField).(*models.User)
	return user
}
