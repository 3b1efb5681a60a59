package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the authenticated user's ID in the
// request context.
const userIDKey = contextKey("userID")

// companyIDKey is the key used to store the authenticated user's company ID.
const companyIDKey = contextKey("companyID")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal := c.Request.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}

// GetCompanyIDFromContext retrieves the authenticated user's company ID from
// the Gin context.
func GetCompanyIDFromContext(c *gin.Context) (string, bool) {
	companyIDVal := c.Request.Context().Value(companyIDKey)
	if companyIDVal == nil {
		return "", false
	}
	companyID, ok := companyIDVal.(string)
	if !ok {
		return "", false
	}
	return companyID, true
}
