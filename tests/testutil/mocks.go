package testutil

import (
	"context"
	"time"

	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) ListMembers(ctx context.Context) ([]models.TeamMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *MockTeamService) GetByID(ctx context.Context, id uuid.UUID) (*models.TeamMember, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamMember), args.Error(1)
}

func (m *MockTeamService) GetByEmail(ctx context.Context, email string) (*models.TeamMember, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamMember), args.Error(1)
}

func (m *MockTeamService) Register(ctx context.Context, email, fullName, password, addedBy string) (*models.TeamMember, error) {
	args := m.Called(ctx, email, fullName, password, addedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamMember), args.Error(1)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockTeamService) UpdatePrivileges(ctx context.Context, email string, privileges models.PrivilegeSet) error {
	args := m.Called(ctx, email, privileges)
	return args.Error(0)
}

func (m *MockTeamService) Authenticate(ctx context.Context, email, password string) (*models.TeamMember, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamMember), args.Error(1)
}

func (m *MockTeamService) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTeamService) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	args := m.Called(ctx, id, password)
	return args.Error(0)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(ctx context.Context, memberID uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, memberID, purpose, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Consume(ctx context.Context, purpose, token string) (uuid.UUID, error) {
	args := m.Called(ctx, purpose, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeAll(ctx context.Context, memberID uuid.UUID, purpose string) error {
	args := m.Called(ctx, memberID, purpose)
	return args.Error(0)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerification(to, fullName, verifyURL string) error {
	args := m.Called(to, fullName, verifyURL)
	return args.Error(0)
}

func (m *MockEmailService) SendPasswordReset(to, fullName, resetURL string) error {
	args := m.Called(to, fullName, resetURL)
	return args.Error(0)
}

// MockTeamAPI mocks the remote team API as seen by the access store
type MockTeamAPI struct {
	mock.Mock
}

func (m *MockTeamAPI) ListMembers(ctx context.Context, token string) ([]models.Member, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Member), args.Error(1)
}

func (m *MockTeamAPI) RegisterMember(ctx context.Context, token, email, fullName, password string) error {
	args := m.Called(ctx, token, email, fullName, password)
	return args.Error(0)
}

func (m *MockTeamAPI) RemoveMember(ctx context.Context, token, email string) error {
	args := m.Called(ctx, token, email)
	return args.Error(0)
}

func (m *MockTeamAPI) UpdatePrivileges(ctx context.Context, token, email string, privileges models.PrivilegeSet) error {
	args := m.Called(ctx, token, email, privileges)
	return args.Error(0)
}
