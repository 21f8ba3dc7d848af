package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/credential"
	"github.com/idemlab/aegis/service"
)

// Handlers contains the HTTP handlers for the credential service.
type Handlers struct {
	authService   *service.AuthService
	issuerService *service.IssuerService
	verifier      *credential.Verifier
}

// NewHandlers creates the handler set.
func NewHandlers(authService *service.AuthService, issuerService *service.IssuerService, verifier *credential.Verifier) *Handlers {
	return &Handlers{
		authService:   authService,
		issuerService: issuerService,
		verifier:      verifier,
	}
}

// Challenge handles the challenge request.
func (h *Handlers) Challenge(c *gin.Context) {
	var req struct {
		Identity string `json:"identity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challenge, err := h.authService.CreateChallenge(c.Request.Context(), req.Identity)
	if err != nil {
		if errors.Is(err, core.ErrMalformedIdentity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed identity"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge":  challenge.Nonce,
		"expires_in": int(h.authService.ChallengeTTL().Seconds()),
	})
}

// Login handles challenge verification and session token issuance.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Identity  string `json:"identity" binding:"required"`
		Challenge string `json:"challenge" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Identity, req.Challenge, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrMalformedIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed identity"})
		case core.IsAuthenticationFailure(err):
			// One generic body for every authentication failure: which
			// check failed is exactly what an attacker wants to know.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_token": token,
		"token_type":    "Bearer",
		"expires_in":    int(h.authService.SessionTTL().Seconds()),
	})
}

// IssueCredential handles bearer-authenticated credential issuance.
func (h *Handlers) IssueCredential(c *gin.Context) {
	var req struct {
		SubjectID         string      `json:"subject_id" binding:"required"`
		CredentialSubject core.Claims `json:"credential_subject" binding:"required"`
		ValidityDays      int         `json:"validity_days"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token := c.GetString(ContextSessionToken)

	vc, err := h.issuerService.Issue(c.Request.Context(), token, req.SubjectID, req.CredentialSubject, req.ValidityDays)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSubjectMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "Session does not authorize this subject"})
		case errors.Is(err, core.ErrMalformedIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed identity"})
		case errors.Is(err, core.ErrTokenExpired), errors.Is(err, core.ErrInvalidToken), errors.Is(err, core.ErrWrongTokenType):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue credential"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"credential": vc,
		"id":         vc.ID,
		"expires_at": vc.ExpirationDate,
	})
}

// VerifyPresentation handles presentation verification. A failed
// verification is a normal outcome and still answers 200.
func (h *Handlers) VerifyPresentation(c *gin.Context) {
	var req struct {
		Presentation *core.VerifiablePresentation `json:"presentation" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), req.Presentation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification unavailable"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Revoke handles credential revocation.
func (h *Handlers) Revoke(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.issuerService.Revoke(c.Request.Context(), req.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke credential"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RevocationStatus reports whether a credential id has been revoked.
func (h *Handlers) RevocationStatus(c *gin.Context) {
	id := c.Param("id")

	revoked, err := h.issuerService.IsRevoked(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check revocation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "revoked": revoked})
}
