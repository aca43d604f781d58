package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/fleetdesk/internal/database"
	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var memberColumnNames = []string{
	"id", "email", "full_name", "password_hash", "privileges", "dashboard_role",
	"verified", "added_by", "is_owner", "created_at", "updated_at",
}

func setupTeamService(t *testing.T) (*TeamService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	svc := NewTeamService(db)
	svc.bcryptCost = bcrypt.MinCost
	return svc, mock
}

func addMemberRow(rows *pgxmock.Rows, m models.TeamMember) *pgxmock.Rows {
	return rows.AddRow(
		m.ID, m.Email, m.FullName, m.PasswordHash, m.Privileges, m.DashboardRole,
		m.Verified, m.AddedBy, m.IsOwner, m.CreatedAt, m.UpdatedAt,
	)
}

func TestTeamService_ListMembers(t *testing.T) {
	svc, mock := setupTeamService(t)
	now := time.Now()
	role := "owner"

	rows := pgxmock.NewRows(memberColumnNames)
	addMemberRow(rows, models.TeamMember{
		ID: uuid.New(), Email: "boss@fleet.io", FullName: "Boss", Privileges: []string{},
		DashboardRole: &role, Verified: true, IsOwner: true, CreatedAt: now, UpdatedAt: now,
	})
	addMemberRow(rows, models.TeamMember{
		ID: uuid.New(), Email: "disp@fleet.io", FullName: "Dispatcher", Privileges: []string{"dispatcher", "viewer"},
		AddedBy: "boss@fleet.io", CreatedAt: now, UpdatedAt: now,
	})

	mock.ExpectQuery(`SELECT .+ FROM team_members ORDER BY created_at`).
		WillReturnRows(rows)

	members, err := svc.ListMembers(context.Background())

	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.True(t, members[0].IsOwner)
	assert.Equal(t, []string{"dispatcher", "viewer"}, members[1].Privileges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_ListMembers_Empty(t *testing.T) {
	svc, mock := setupTeamService(t)

	mock.ExpectQuery(`SELECT .+ FROM team_members`).
		WillReturnRows(pgxmock.NewRows(memberColumnNames))

	members, err := svc.ListMembers(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_GetByEmail_NotFound(t *testing.T) {
	svc, mock := setupTeamService(t)

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE email`).
		WithArgs("ghost@fleet.io").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByEmail(context.Background(), " Ghost@Fleet.io ")

	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Register(t *testing.T) {
	svc, mock := setupTeamService(t)
	now := time.Now()
	id := uuid.New()

	rows := pgxmock.NewRows(memberColumnNames)
	addMemberRow(rows, models.TeamMember{
		ID: id, Email: "a@x.com", FullName: "A X", PasswordHash: "hash", Privileges: []string{"member"},
		AddedBy: "boss@fleet.io", CreatedAt: now, UpdatedAt: now,
	})

	mock.ExpectQuery(`INSERT INTO team_members`).
		WithArgs("a@x.com", "A X", pgxmock.AnyArg(), []string{"member"}, "boss@fleet.io").
		WillReturnRows(rows)

	m, err := svc.Register(context.Background(), "A@x.com", "A X", "pw123456", "boss@fleet.io")

	require.NoError(t, err)
	assert.Equal(t, id, m.ID)
	assert.False(t, m.Verified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Register_Duplicate(t *testing.T) {
	svc, mock := setupTeamService(t)

	mock.ExpectQuery(`INSERT INTO team_members`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "team_members_email_key"})

	_, err := svc.Register(context.Background(), "a@x.com", "A X", "pw123456", "boss@fleet.io")

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_CreateOwner_SecondOwner(t *testing.T) {
	svc, mock := setupTeamService(t)

	mock.ExpectQuery(`INSERT INTO team_members .+ TRUE, TRUE`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_team_members_single_owner"})

	_, err := svc.CreateOwner(context.Background(), "new@fleet.io", "New Boss", "pw123456")

	assert.ErrorIs(t, err, ErrOwnerExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_RemoveMember(t *testing.T) {
	svc, mock := setupTeamService(t)

	mock.ExpectExec(`DELETE FROM team_members WHERE email = .+ AND NOT is_owner`).
		WithArgs("a@x.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.RemoveMember(context.Background(), "a@x.com")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_RemoveMember_Owner(t *testing.T) {
	svc, mock := setupTeamService(t)

	mock.ExpectExec(`DELETE FROM team_members`).
		WithArgs("boss@fleet.io").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery(`SELECT is_owner FROM team_members WHERE email`).
		WithArgs("boss@fleet.io").
		WillReturnRows(pgxmock.NewRows([]string{"is_owner"}).AddRow(true))

	err := svc.RemoveMember(context.Background(), "boss@fleet.io")

	assert.ErrorIs(t, err, ErrCannotModifyOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_RemoveMember_NotFound(t *testing.T) {
	svc, mock := setupTeamService(t)

	mock.ExpectExec(`DELETE FROM team_members`).
		WithArgs("ghost@fleet.io").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery(`SELECT is_owner FROM team_members`).
		WithArgs("ghost@fleet.io").
		WillReturnError(pgx.ErrNoRows)

	err := svc.RemoveMember(context.Background(), "ghost@fleet.io")

	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_UpdatePrivileges(t *testing.T) {
	svc, mock := setupTeamService(t)
	privileges := models.NewPrivilegeSet(models.PrivilegeViewer, models.PrivilegeAdmin)

	mock.ExpectExec(`UPDATE team_members SET privileges`).
		WithArgs([]string{"admin", "viewer"}, "a@x.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.UpdatePrivileges(context.Background(), "a@x.com", privileges)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_UpdatePrivileges_Owner(t *testing.T) {
	svc, mock := setupTeamService(t)

	mock.ExpectExec(`UPDATE team_members SET privileges`).
		WithArgs([]string{"viewer"}, "boss@fleet.io").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT is_owner FROM team_members`).
		WithArgs("boss@fleet.io").
		WillReturnRows(pgxmock.NewRows([]string{"is_owner"}).AddRow(true))

	err := svc.UpdatePrivileges(context.Background(), "boss@fleet.io", models.NewPrivilegeSet(models.PrivilegeViewer))

	assert.ErrorIs(t, err, ErrCannotModifyOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Authenticate(t *testing.T) {
	svc, mock := setupTeamService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()

	newRows := func(verified bool) *pgxmock.Rows {
		rows := pgxmock.NewRows(memberColumnNames)
		return addMemberRow(rows, models.TeamMember{
			ID: uuid.New(), Email: "a@x.com", FullName: "A X", PasswordHash: string(hash),
			Privileges: []string{"member"}, Verified: verified, CreatedAt: now, UpdatedAt: now,
		})
	}

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE email`).WithArgs("a@x.com").WillReturnRows(newRows(true))
	m, err := svc.Authenticate(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", m.Email)

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE email`).WithArgs("a@x.com").WillReturnRows(newRows(true))
	_, err = svc.Authenticate(context.Background(), "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE email`).WithArgs("a@x.com").WillReturnRows(newRows(false))
	_, err = svc.Authenticate(context.Background(), "a@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrNotVerified)

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE email`).WithArgs("b@x.com").WillReturnError(pgx.ErrNoRows)
	_, err = svc.Authenticate(context.Background(), "b@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_MarkVerified(t *testing.T) {
	svc, mock := setupTeamService(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE team_members SET verified = TRUE`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, svc.MarkVerified(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_SetPassword_NotFound(t *testing.T) {
	svc, mock := setupTeamService(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE team_members SET password_hash`).
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.SetPassword(context.Background(), id, "new-password")

	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
