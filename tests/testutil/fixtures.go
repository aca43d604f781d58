package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/fleetdesk/internal/database"
	"github.com/dimitrije/fleetdesk/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateMember inserts a verified member with default values. The stored
// password hash is not a valid bcrypt hash; use TeamService.Register when a
// test needs to log in.
func (f *Fixtures) CreateMember(t *testing.T, opts ...MemberOption) *models.TeamMember {
	t.Helper()
	f.counter++

	member := &models.TeamMember{
		Email:      fmt.Sprintf("member%d@fleet.test", f.counter),
		FullName:   fmt.Sprintf("Test Member %d", f.counter),
		Privileges: []string{string(models.PrivilegeMember)},
		Verified:   true,
	}

	for _, opt := range opts {
		opt(member)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO team_members (email, full_name, password_hash, privileges, verified, added_by, is_owner)
		VALUES ($1, $2, 'fixture', $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, member.Email, member.FullName, member.Privileges, member.Verified, member.AddedBy, member.IsOwner).Scan(
		&member.ID, &member.CreatedAt, &member.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create member: %v", err)
	}

	return member
}

// MemberOption configures a test member
type MemberOption func(*models.TeamMember)

// WithEmail sets the member's email
func WithEmail(email string) MemberOption {
	return func(m *models.TeamMember) {
		m.Email = email
	}
}

// WithPrivileges sets the member's privileges
func WithPrivileges(privileges ...models.Privilege) MemberOption {
	return func(m *models.TeamMember) {
		m.Privileges = models.NewPrivilegeSet(privileges...).Strings()
	}
}

// AsOwner marks the member as the team owner
func AsOwner() MemberOption {
	return func(m *models.TeamMember) {
		m.IsOwner = true
		m.Privileges = []string{}
	}
}

// Unverified leaves the member's email unverified
func Unverified() MemberOption {
	return func(m *models.TeamMember) {
		m.Verified = false
	}
}
