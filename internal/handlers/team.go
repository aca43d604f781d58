package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/fleetdesk/internal/middleware"
	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/dimitrije/fleetdesk/internal/services"
	"github.com/dimitrije/fleetdesk/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-playground/validator.v9"
)

type TeamHandler struct {
	teamService        TeamServiceInterface
	tokenService       TokenServiceInterface
	emailService       EmailServiceInterface
	validate           *validator.Validate
	baseURL            string
	verificationExpiry time.Duration
	log                *logrus.Entry
}

func NewTeamHandler(
	teamService TeamServiceInterface,
	tokenService TokenServiceInterface,
	emailService EmailServiceInterface,
	baseURL string,
	verificationExpiry time.Duration,
) *TeamHandler {
	return &TeamHandler{
		teamService:        teamService,
		tokenService:       tokenService,
		emailService:       emailService,
		validate:           newValidator(),
		baseURL:            strings.TrimRight(baseURL, "/"),
		verificationExpiry: verificationExpiry,
		log:                logrus.WithField("component", "team_handler"),
	}
}

// caller loads the authenticated member. It answers the request itself and
// returns nil when the caller cannot be resolved.
func (h *TeamHandler) caller(c *drift.Context) *models.TeamMember {
	memberID := middleware.GetMemberID(c)
	if memberID == uuid.Nil {
		respondError(c, http.StatusUnauthorized, "not authenticated")
		return nil
	}

	member, err := h.teamService.GetByID(context.Background(), memberID)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			respondError(c, http.StatusUnauthorized, "account no longer exists")
			return nil
		}
		respondError(c, http.StatusInternalServerError, "failed to load account")
		return nil
	}
	return member
}

// authorize reports whether m is the owner or holds any of the privileges.
func authorize(m *models.TeamMember, privileges ...models.Privilege) bool {
	if m.IsOwner {
		return true
	}
	return m.ToMember().Privileges.HasAny(privileges...)
}

func (h *TeamHandler) ListMembers(c *drift.Context) {
	if h.caller(c) == nil {
		return
	}

	rows, err := h.teamService.ListMembers(context.Background())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch team members")
		return
	}

	members := make([]models.Member, len(rows))
	for i := range rows {
		members[i] = rows[i].ToMember()
	}

	_ = c.JSON(http.StatusOK, dto.MembersResponse{Members: members})
}

func (h *TeamHandler) Register(c *drift.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}

	if !authorize(caller, models.PrivilegeAdmin, models.PrivilegeAdd) {
		respondError(c, http.StatusForbidden, "You do not have permission to add team members")
		return
	}

	var req dto.RegisterMemberRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if err := h.validate.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, validationDetail(err))
		return
	}
	// Emails address members in the URL path, so a slash could never be routed back.
	if strings.Contains(req.Email, "/") {
		respondError(c, http.StatusBadRequest, "Invalid email address")
		return
	}

	ctx := context.Background()
	member, err := h.teamService.Register(ctx, req.Email, req.FullName, req.Password, caller.Email)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "Email already registered")
			return
		}
		respondError(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.sendVerification(ctx, member)

	_ = c.JSON(http.StatusCreated, dto.MessageResponse{
		Message: "Team member registered successfully! Verification email sent.",
	})
}

// sendVerification is best effort; the owner can re-register a member whose
// mail never arrived.
func (h *TeamHandler) sendVerification(ctx context.Context, member *models.TeamMember) {
	token, err := h.tokenService.Issue(ctx, member.ID, models.TokenPurposeVerify, h.verificationExpiry)
	if err != nil {
		h.log.WithError(err).WithField("email", member.Email).Warn("failed to issue verification token")
		return
	}

	verifyURL := fmt.Sprintf("%s/verify?token=%s", h.baseURL, url.QueryEscape(token))
	if err := h.emailService.SendVerification(member.Email, member.FullName, verifyURL); err != nil {
		h.log.WithError(err).WithField("email", member.Email).Warn("failed to send verification email")
	}
}

func (h *TeamHandler) RemoveMember(c *drift.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}

	if !authorize(caller, models.PrivilegeAdmin, models.PrivilegeRemove) {
		respondError(c, http.StatusForbidden, "You do not have permission to remove team members")
		return
	}

	email, ok := emailParam(c)
	if !ok {
		return
	}

	if strings.EqualFold(email, caller.Email) {
		respondError(c, http.StatusBadRequest, "You cannot remove yourself")
		return
	}

	if err := h.teamService.RemoveMember(context.Background(), email); err != nil {
		if errors.Is(err, services.ErrCannotModifyOwner) {
			respondError(c, http.StatusBadRequest, "The team owner cannot be removed")
			return
		}
		if errors.Is(err, services.ErrMemberNotFound) {
			respondError(c, http.StatusNotFound, "Team member not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to remove team member")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Team member removed successfully"})
}

func (h *TeamHandler) UpdatePrivileges(c *drift.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}

	if !authorize(caller, models.PrivilegeAdmin) {
		respondError(c, http.StatusForbidden, "You do not have permission to change privileges")
		return
	}

	email, ok := emailParam(c)
	if !ok {
		return
	}

	var req dto.UpdatePrivilegesRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, "privileges is required")
		return
	}

	privileges, err := models.ParsePrivilegeSet(req.Privileges)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.teamService.UpdatePrivileges(context.Background(), email, privileges); err != nil {
		if errors.Is(err, services.ErrCannotModifyOwner) {
			respondError(c, http.StatusBadRequest, "The team owner's privileges cannot be changed")
			return
		}
		if errors.Is(err, services.ErrMemberNotFound) {
			respondError(c, http.StatusNotFound, "Team member not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update privileges")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Privileges updated successfully"})
}

// emailParam reads the :email segment. The router matches on the decoded
// request path, so the value is used as-is.
func emailParam(c *drift.Context) (string, bool) {
	email := strings.TrimSpace(c.Param("email"))
	if email == "" {
		respondError(c, http.StatusBadRequest, "invalid member email")
		return "", false
	}
	return email, true
}
