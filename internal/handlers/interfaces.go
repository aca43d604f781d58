package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/dimitrije/fleetdesk/internal/services"
	"github.com/google/uuid"
)

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	ListMembers(ctx context.Context) ([]models.TeamMember, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.TeamMember, error)
	GetByEmail(ctx context.Context, email string) (*models.TeamMember, error)
	Register(ctx context.Context, email, fullName, password, addedBy string) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, email string) error
	UpdatePrivileges(ctx context.Context, email string, privileges models.PrivilegeSet) error
	Authenticate(ctx context.Context, email, password string) (*models.TeamMember, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetPassword(ctx context.Context, id uuid.UUID, password string) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	Issue(ctx context.Context, memberID uuid.UUID, purpose string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, purpose, token string) (uuid.UUID, error)
	RevokeAll(ctx context.Context, memberID uuid.UUID, purpose string) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateAccessToken(memberID uuid.UUID, email string) (*services.AccessToken, error)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendVerification(to, fullName, verifyURL string) error
	SendPasswordReset(to, fullName, resetURL string) error
}
