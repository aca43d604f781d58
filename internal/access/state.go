package access

import "github.com/dimitrije/fleetdesk/internal/models"

type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the single live notification. Each operation outcome replaces it.
type Status struct {
	Kind StatusKind
	Text string
}

// Session is the privilege-editing session: either Closed or Editing.
type Session interface {
	session()
}

type Closed struct{}

// Editing holds the member being edited and the uncommitted working copy of
// its privileges.
type Editing struct {
	Member     models.Member
	Privileges models.PrivilegeSet
}

func (Closed) session()  {}
func (Editing) session() {}

func (e Editing) clone() Editing {
	return Editing{Member: e.Member.Clone(), Privileges: e.Privileges.Clone()}
}

// Snapshot is a copy of the store state. Consumers may keep and mutate it
// freely.
type Snapshot struct {
	Members []models.Member
	Loading bool
	Error   string
	Session Session
	Status  *Status
}

// Editing returns the open session, if any.
func (s Snapshot) Editing() (Editing, bool) {
	e, ok := s.Session.(Editing)
	return e, ok
}

// Owner returns the team owner from the member list.
func (s Snapshot) Owner() (models.Member, bool) {
	for _, m := range s.Members {
		if m.IsOwner {
			return m, true
		}
	}
	return models.Member{}, false
}
