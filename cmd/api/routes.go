package main

import (
	"github.com/gin-gonic/gin"

	"github.com/victorhinojosa/voice-ivr-payment/internal/httpapi"
	"github.com/victorhinojosa/voice-ivr-payment/internal/telephony"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, webhooks *telephony.Handlers, api httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: These endpoints should be protected by Twilio signature validation in production.
	r.POST("/webhooks/twilio/voice", webhooks.HandleVoice)
	r.POST("/webhooks/twilio/respond", webhooks.HandleSpeech)

	// Token issuance (public; gated by the dashboard API key).
	v1 := r.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", api.Login)
			authGroup.POST("/refresh", api.Refresh)
		}
	}

	// protected API group
	protected := v1.Group("")
	protected.Use(authMW)
	{
		calls := protected.Group("/calls")
		{
			calls.GET("", api.ListCalls)
			calls.GET("/:call_id", api.GetCall)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/summary", api.OutcomeSummary)
		}
	}
}
