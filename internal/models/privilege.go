package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownPrivilege = errors.New("unknown privilege")

// Privilege is a grantable team permission. Ownership is not a privilege;
// it is carried by Member.IsOwner only.
type Privilege string

const (
	PrivilegeAdmin      Privilege = "admin"
	PrivilegeAdd        Privilege = "add"
	PrivilegeRemove     Privilege = "remove"
	PrivilegeMember     Privilege = "member"
	PrivilegeManager    Privilege = "manager"
	PrivilegeDispatcher Privilege = "dispatcher"
	PrivilegeViewer     Privilege = "viewer"
)

// AllPrivileges lists the vocabulary in display order.
var AllPrivileges = []Privilege{
	PrivilegeAdmin,
	PrivilegeAdd,
	PrivilegeRemove,
	PrivilegeMember,
	PrivilegeManager,
	PrivilegeDispatcher,
	PrivilegeViewer,
}

func (p Privilege) Valid() bool {
	for _, known := range AllPrivileges {
		if p == known {
			return true
		}
	}
	return false
}

func ParsePrivilege(s string) (Privilege, error) {
	p := Privilege(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPrivilege, s)
	}
	return p, nil
}

// PrivilegeSet holds distinct privileges. The zero value is an empty set
// ready to use for reads; use NewPrivilegeSet before adding.
type PrivilegeSet map[Privilege]struct{}

func NewPrivilegeSet(privileges ...Privilege) PrivilegeSet {
	set := make(PrivilegeSet, len(privileges))
	for _, p := range privileges {
		set[p] = struct{}{}
	}
	return set
}

// ParsePrivilegeSet validates every entry and drops duplicates.
func ParsePrivilegeSet(values []string) (PrivilegeSet, error) {
	set := make(PrivilegeSet, len(values))
	for _, v := range values {
		p, err := ParsePrivilege(v)
		if err != nil {
			return nil, err
		}
		set[p] = struct{}{}
	}
	return set, nil
}

func (s PrivilegeSet) Has(p Privilege) bool {
	_, ok := s[p]
	return ok
}

func (s PrivilegeSet) HasAny(privileges ...Privilege) bool {
	for _, p := range privileges {
		if s.Has(p) {
			return true
		}
	}
	return false
}

func (s PrivilegeSet) Add(p Privilege) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPrivilege, string(p))
	}
	s[p] = struct{}{}
	return nil
}

func (s PrivilegeSet) Remove(p Privilege) {
	delete(s, p)
}

func (s PrivilegeSet) Clone() PrivilegeSet {
	out := make(PrivilegeSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

func (s PrivilegeSet) Equal(other PrivilegeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for p := range s {
		if !other.Has(p) {
			return false
		}
	}
	return true
}

// Sorted returns the privileges in vocabulary order.
func (s PrivilegeSet) Sorted() []Privilege {
	out := make([]Privilege, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return privilegeRank(out[i]) < privilegeRank(out[j])
	})
	return out
}

func (s PrivilegeSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = string(p)
	}
	return out
}

func (s PrivilegeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *PrivilegeSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	set, err := ParsePrivilegeSet(values)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

func privilegeRank(p Privilege) int {
	for i, known := range AllPrivileges {
		if p == known {
			return i
		}
	}
	return len(AllPrivileges)
}
