package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/accubooks/backoffice/internal/utils"
)

// untrackedPaths are never reported to analytics.
var untrackedPaths = map[string]bool{
	"/health": true,
}

// TrackingMiddleware creates a Gin middleware handler that reports successful
// API calls to the analytics backend. Failed requests and requests without an
// authenticated user are skipped.
func TrackingMiddleware(analytics *utils.AnalyticsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if analytics == nil || !analytics.IsInitialized() || untrackedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/accounts/:account_id" becomes "api_v1_accounts_:account_id".
		eventName := strings.TrimPrefix(c.FullPath(), "/")
		eventName = strings.ReplaceAll(eventName, "/", "_")
		if eventName == "" {
			// Unmatched route, nothing meaningful to report.
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if companyID, ok := GetCompanyIDFromContext(c); ok {
			props["company_id"] = companyID
		}
		if len(c.Params) > 0 {
			params := make(map[string]string)
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		analytics.Enqueue(userID, eventName, props)
	}
}
