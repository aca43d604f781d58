package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a team member as seen by API clients. Email is the join key for
// every update and removal.
type Member struct {
	Email         string       `json:"email"`
	FullName      string       `json:"full_name"`
	Privileges    PrivilegeSet `json:"privileges"`
	DashboardRole *string      `json:"dashboard_role"`
	Verified      bool         `json:"verified"`
	AddedBy       string       `json:"added_by"`
	AddedAt       int64        `json:"added_at"`
	IsOwner       bool         `json:"is_owner"`
}

// Clone returns a deep copy so callers may not alias the privilege set.
func (m Member) Clone() Member {
	out := m
	out.Privileges = m.Privileges.Clone()
	if m.DashboardRole != nil {
		role := *m.DashboardRole
		out.DashboardRole = &role
	}
	return out
}

// TeamMember is the stored row behind a Member.
type TeamMember struct {
	ID            uuid.UUID
	Email         string
	FullName      string
	PasswordHash  string
	Privileges    []string
	DashboardRole *string
	Verified      bool
	AddedBy       string
	IsOwner       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (tm *TeamMember) ToMember() Member {
	privileges := make(PrivilegeSet, len(tm.Privileges))
	for _, p := range tm.Privileges {
		if priv := Privilege(p); priv.Valid() {
			privileges[priv] = struct{}{}
		}
	}
	return Member{
		Email:         tm.Email,
		FullName:      tm.FullName,
		Privileges:    privileges,
		DashboardRole: tm.DashboardRole,
		Verified:      tm.Verified,
		AddedBy:       tm.AddedBy,
		AddedAt:       tm.CreatedAt.Unix(),
		IsOwner:       tm.IsOwner,
	}
}

// Member token purposes.
const (
	TokenPurposeVerify = "verify"
	TokenPurposeReset  = "reset"
)
