package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/models"
	"github.com/smartcampus/portal/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Guards are the route middlewares handlers attach to protected endpoints.
type Guards struct {
	Session gin.HandlerFunc // any signed-in user
	Admin   gin.HandlerFunc // resolved role must be admin
	Role    gin.HandlerFunc // resolves the acting role without restricting
}

// writeError answers with {error} and the status matching err.
func writeError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperrors.Message(err)})
}

func badRequest(c *gin.Context, msg string) {
	writeError(c, apperrors.New(apperrors.ErrValidation, msg))
}

// pathID parses the :id parameter, answering 404 when it is malformed.
func pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}
