package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/dimitrije/fleetdesk/internal/services"
	"github.com/dimitrije/fleetdesk/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-playground/validator.v9"
)

// AuthHandler serves the login, email verification and password reset
// forms of the dashboard.
type AuthHandler struct {
	teamService  TeamServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
	emailService EmailServiceInterface
	validate     *validator.Validate
	baseURL      string
	resetExpiry  time.Duration
	log          *logrus.Entry
}

func NewAuthHandler(
	teamService TeamServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
	emailService EmailServiceInterface,
	baseURL string,
	resetExpiry time.Duration,
) *AuthHandler {
	return &AuthHandler{
		teamService:  teamService,
		tokenService: tokenService,
		jwtService:   jwtService,
		emailService: emailService,
		validate:     newValidator(),
		baseURL:      strings.TrimRight(baseURL, "/"),
		resetExpiry:  resetExpiry,
		log:          logrus.WithField("component", "auth_handler"),
	}
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, validationDetail(err))
		return
	}

	member, err := h.teamService.Authenticate(context.Background(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, services.ErrNotVerified):
			respondError(c, http.StatusForbidden, "Please verify your email before logging in")
		default:
			respondError(c, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	token, err := h.jwtService.GenerateAccessToken(member.ID, member.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresIn:   token.ExpiresIn,
	})
}

func (h *AuthHandler) VerifyEmail(c *drift.Context) {
	var req dto.VerifyEmailRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, "token is required")
		return
	}

	ctx := context.Background()
	memberID, err := h.tokenService.Consume(ctx, models.TokenPurposeVerify, req.Token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			respondError(c, http.StatusBadRequest, "Verification link is invalid or has expired")
			return
		}
		respondError(c, http.StatusInternalServerError, "Verification failed")
		return
	}

	if err := h.teamService.MarkVerified(ctx, memberID); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			respondError(c, http.StatusNotFound, "Team member not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Verification failed")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email verified successfully"})
}

// ForgotPassword answers the same way whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *drift.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, validationDetail(err))
		return
	}

	response := dto.MessageResponse{Message: "If the email is registered, a reset link has been sent."}

	ctx := context.Background()
	member, err := h.teamService.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, services.ErrMemberNotFound) {
			h.log.WithError(err).Error("failed to look up member for password reset")
		}
		_ = c.JSON(http.StatusOK, response)
		return
	}

	token, err := h.tokenService.Issue(ctx, member.ID, models.TokenPurposeReset, h.resetExpiry)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to start password reset")
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", h.baseURL, url.QueryEscape(token))
	if err := h.emailService.SendPasswordReset(member.Email, member.FullName, resetURL); err != nil {
		h.log.WithError(err).WithField("email", member.Email).Warn("failed to send password reset email")
	}

	_ = c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) ResetPassword(c *drift.Context) {
	var req dto.ResetPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, validationDetail(err))
		return
	}

	ctx := context.Background()
	memberID, err := h.tokenService.Consume(ctx, models.TokenPurposeReset, req.Token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			respondError(c, http.StatusBadRequest, "Reset link is invalid or has expired")
			return
		}
		respondError(c, http.StatusInternalServerError, "Password reset failed")
		return
	}

	if err := h.teamService.SetPassword(ctx, memberID, req.Password); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			respondError(c, http.StatusNotFound, "Team member not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Password reset failed")
		return
	}

	// Other outstanding reset links die with this one.
	if err := h.tokenService.RevokeAll(ctx, memberID, models.TokenPurposeReset); err != nil {
		h.log.WithError(err).WithField("member_id", memberID).Warn("failed to revoke outstanding reset tokens")
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset"})
}
