package handler

import (
	"net/http"

	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// contextUUID reads a middleware-set identity key and parses it as a UUID.
// Aborts with 401 when the key is missing or malformed, which means the
// middleware did not run or the token is broken.
func contextUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	raw, exists := c.Get(key)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, key+" not found in context"))
		return uuid.Nil, false
	}

	str, ok := raw.(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid "+key+" format"))
		return uuid.Nil, false
	}

	id, err := uuid.Parse(str)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid "+key+" format"))
		return uuid.Nil, false
	}

	return id, true
}

// identity returns the authenticated user's company and user IDs.
func identity(c *gin.Context) (companyID, userID uuid.UUID, ok bool) {
	companyID, ok = contextUUID(c, "companyID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	userID, ok = contextUUID(c, "userID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, userID, true
}

// pathUUID parses a :param path segment as a UUID, answering 400 on failure.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+param+" in path"))
		return uuid.Nil, false
	}
	return id, true
}
