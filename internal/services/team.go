package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/fleetdesk/internal/database"
	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrCannotModifyOwner  = errors.New("cannot modify team owner")
	ErrEmailTaken         = errors.New("email already registered")
	ErrOwnerExists        = errors.New("team already has an owner")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email not verified")
)

const uniqueViolation = "23505"

const singleOwnerIndex = "idx_team_members_single_owner"

const memberColumns = `id, email, full_name, password_hash, privileges, dashboard_role, verified, added_by, is_owner, created_at, updated_at`

type TeamService struct {
	db         *database.DB
	bcryptCost int
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db, bcryptCost: bcrypt.DefaultCost}
}

func scanMember(row pgx.Row) (*models.TeamMember, error) {
	var m models.TeamMember
	err := row.Scan(
		&m.ID, &m.Email, &m.FullName, &m.PasswordHash, &m.Privileges, &m.DashboardRole,
		&m.Verified, &m.AddedBy, &m.IsOwner, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *TeamService) ListMembers(ctx context.Context) ([]models.TeamMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+memberColumns+`
		FROM team_members
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.TeamMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *TeamService) GetByEmail(ctx context.Context, email string) (*models.TeamMember, error) {
	m, err := scanMember(s.db.Pool.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM team_members WHERE email = $1
	`, normalizeEmail(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	return m, err
}

func (s *TeamService) GetByID(ctx context.Context, id uuid.UUID) (*models.TeamMember, error) {
	m, err := scanMember(s.db.Pool.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM team_members WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	return m, err
}

// Register creates an unverified member holding the default member privilege.
func (s *TeamService) Register(ctx context.Context, email, fullName, password, addedBy string) (*models.TeamMember, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	m, err := scanMember(s.db.Pool.QueryRow(ctx, `
		INSERT INTO team_members (email, full_name, password_hash, privileges, added_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+memberColumns,
		normalizeEmail(email), fullName, string(hash), []string{string(models.PrivilegeMember)}, addedBy))
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register member: %w", err)
	}
	return m, nil
}

// CreateOwner bootstraps the single verified owner of the team.
func (s *TeamService) CreateOwner(ctx context.Context, email, fullName, password string) (*models.TeamMember, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := "owner"
	m, err := scanMember(s.db.Pool.QueryRow(ctx, `
		INSERT INTO team_members (email, full_name, password_hash, dashboard_role, verified, is_owner)
		VALUES ($1, $2, $3, $4, TRUE, TRUE)
		RETURNING `+memberColumns,
		normalizeEmail(email), fullName, string(hash), &role))
	if err != nil {
		if isUniqueViolation(err, singleOwnerIndex) {
			return nil, ErrOwnerExists
		}
		if isUniqueViolation(err, "") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}
	return m, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM team_members WHERE email = $1 AND NOT is_owner
	`, email)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return s.explainNoRows(ctx, email)
	}
	return nil
}

// UpdatePrivileges replaces the member's privilege set. Concurrent edits
// resolve as last write wins.
func (s *TeamService) UpdatePrivileges(ctx context.Context, email string, privileges models.PrivilegeSet) error {
	email = normalizeEmail(email)
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE team_members SET privileges = $1, updated_at = NOW()
		WHERE email = $2 AND NOT is_owner
	`, privileges.Strings(), email)
	if err != nil {
		return fmt.Errorf("failed to update privileges: %w", err)
	}
	if result.RowsAffected() == 0 {
		return s.explainNoRows(ctx, email)
	}
	return nil
}

func (s *TeamService) Authenticate(ctx context.Context, email, password string) (*models.TeamMember, error) {
	m, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !m.Verified {
		return nil, ErrNotVerified
	}
	return m, nil
}

func (s *TeamService) MarkVerified(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE team_members SET verified = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to verify member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *TeamService) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE team_members SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), id)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *TeamService) explainNoRows(ctx context.Context, email string) error {
	var isOwner bool
	err := s.db.Pool.QueryRow(ctx, `SELECT is_owner FROM team_members WHERE email = $1`, email).Scan(&isOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMemberNotFound
	}
	if err != nil {
		return err
	}
	if isOwner {
		return ErrCannotModifyOwner
	}
	return ErrMemberNotFound
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
