package http

import (
	"github.com/gin-gonic/gin"

	"github.com/idemlab/aegis/credential"
	"github.com/idemlab/aegis/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService, issuerService *service.IssuerService, verifier *credential.Verifier) *gin.Engine {
	router := gin.Default()

	handlers := NewHandlers(authService, issuerService, verifier)

	auth := router.Group("/auth")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/login", handlers.Login)
	}

	// Issuance requires a live session; verification and revocation do not.
	router.POST("/credentials", SessionMiddleware(authService), handlers.IssueCredential)

	router.POST("/presentations/verify", handlers.VerifyPresentation)

	revocations := router.Group("/revocations")
	{
		revocations.POST("", handlers.Revoke)
		revocations.GET("/:id", handlers.RevocationStatus)
	}

	return router
}
