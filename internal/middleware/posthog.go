package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1/"

// PosthogMiddleware records one analytics event per successful authenticated API call.
// The event is keyed by the caller's external id so it lines up with the identity provider.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		identity, ok := GetIdentityFromContext(c)
		if !ok {
			return
		}
		event := EventName(c.Request.Method, c.FullPath())
		if event == "" {
			return
		}

		props := map[string]any{
			"status_code": c.Writer.Status(),
		}
		if accountID, ok := GetUserIDFromContext(c); ok {
			props["account_id"] = accountID
		}
		for _, param := range c.Params {
			props[param.Key] = param.Value
		}
		posthogClient.Enqueue(identity.ExternalID, event, props)
	}
}

// EventName derives an analytics event from a route, dropping the API prefix and path
// parameters: ("POST", "/api/v1/items/:id/buy") becomes "post_items_buy".
func EventName(method, fullPath string) string {
	if !strings.HasPrefix(fullPath, apiPrefix) {
		return ""
	}
	parts := []string{strings.ToLower(method)}
	for _, segment := range strings.Split(strings.TrimPrefix(fullPath, apiPrefix), "/") {
		if segment == "" || strings.HasPrefix(segment, ":") {
			continue
		}
		parts = append(parts, segment)
	}
	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, "_")
}
