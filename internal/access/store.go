package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dimitrije/fleetdesk/internal/accessclient"
	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// API is the remote team API the store mediates. accessclient.HTTPClient
// implements it.
type API interface {
	ListMembers(ctx context.Context, token string) ([]models.Member, error)
	RegisterMember(ctx context.Context, token, email, fullName, password string) error
	RemoveMember(ctx context.Context, token, email string) error
	UpdatePrivileges(ctx context.Context, token, email string, privileges models.PrivilegeSet) error
}

var _ API = (*accessclient.HTTPClient)(nil)

// Store is the single source of truth for team membership within one
// session. Network calls run without holding the lock; only the most
// recently started fetch may write the member list.
type Store struct {
	api    API
	tokens oauth2.TokenSource
	log    *logrus.Entry

	life   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	members  []models.Member
	inflight int
	fetchErr string
	fetchSeq uint64
	session  Session
	status   *Status
}

func New(api API, tokens oauth2.TokenSource) *Store {
	life, cancel := context.WithCancel(context.Background())
	return &Store{
		api:     api,
		tokens:  tokens,
		log:     logrus.WithField("component", "access_store"),
		life:    life,
		cancel:  cancel,
		members: []models.Member{},
		session: Closed{},
	}
}

// Open creates a store and performs the initial fetch. The store is returned
// even when that fetch fails; the failure is also recorded in its state.
func Open(ctx context.Context, api API, tokens oauth2.TokenSource) (*Store, error) {
	s := New(api, tokens)
	return s, s.FetchMembers(ctx)
}

// Close tears the store down. Calls still in flight are cancelled and their
// results are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	members := make([]models.Member, len(s.members))
	for i := range s.members {
		members[i] = s.members[i].Clone()
	}

	snap := Snapshot{
		Members: members,
		Loading: s.inflight > 0,
		Error:   s.fetchErr,
		Session: Closed{},
	}
	if e, ok := s.session.(Editing); ok {
		snap.Session = e.clone()
	}
	if s.status != nil {
		status := *s.status
		snap.Status = &status
	}
	return snap
}

// bind ties ctx to the store lifetime.
func (s *Store) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Store) token(op string) (string, *Error) {
	tok, err := s.tokens.Token()
	if err != nil || tok == nil || tok.AccessToken == "" {
		if err != nil && !errors.Is(err, accessclient.ErrNoToken) {
			s.log.WithError(err).WithField("op", op).Warn("token source failed")
		}
		return "", &Error{Kind: KindAuthTokenMissing, Op: op, Message: msgAuthMissing, Err: err}
	}
	return tok.AccessToken, nil
}

// setStatus replaces the status slot unless the store is closed.
func (s *Store) setStatus(kind StatusKind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.status = &Status{Kind: kind, Text: text}
}

func (s *Store) fail(e *Error) error {
	s.setStatus(StatusError, e.Message)
	return e
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) isOwnerLocked(email string) bool {
	for _, m := range s.members {
		if m.IsOwner && strings.EqualFold(m.Email, email) {
			return true
		}
	}
	return false
}

// FetchMembers replaces the member list with the server's. On failure the
// last good list is kept and Error carries the failure text. A fetch that
// completes after a newer one has started changes nothing.
func (s *Store) FetchMembers(ctx context.Context) error {
	const op = "fetch members"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	token, terr := s.token(op)
	if terr != nil {
		s.mu.Lock()
		if !s.closed && seq == s.fetchSeq {
			s.fetchErr = terr.Message
		}
		s.mu.Unlock()
		return terr
	}

	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	ctx, done := s.bind(ctx)
	members, err := s.api.ListMembers(ctx, token)
	done()

	s.mu.Lock()
	s.inflight--
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	var result error
	switch {
	case seq != s.fetchSeq:
		s.log.WithField("seq", seq).Debug("discarding stale member list")
		if err != nil {
			result = classify(op, err, msgFetchFailed)
		}
	case err != nil:
		e := classify(op, err, msgFetchFailed)
		s.fetchErr = e.Message
		result = e
	default:
		s.members = make([]models.Member, len(members))
		for i := range members {
			s.members[i] = members[i].Clone()
		}
		s.fetchErr = ""
	}
	s.mu.Unlock()

	if result != nil {
		s.log.WithError(result).Warn("failed to fetch team members")
	}
	return result
}

// refresh is the refetch that ends every successful mutation.
func (s *Store) refresh(ctx context.Context, op string) {
	if err := s.FetchMembers(ctx); err != nil && !errors.Is(err, ErrClosed) {
		s.log.WithError(err).WithField("op", op).Debug("refresh after mutation failed")
	}
}

func (s *Store) RegisterMember(ctx context.Context, email, fullName, password string) error {
	const op = "register member"

	if s.isClosed() {
		return ErrClosed
	}

	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" || password == "" {
		return s.fail(invalidOperation(op, msgFieldsRequired))
	}

	token, terr := s.token(op)
	if terr != nil {
		return s.fail(terr)
	}

	callCtx, done := s.bind(ctx)
	err := s.api.RegisterMember(callCtx, token, email, fullName, password)
	done()
	if s.isClosed() {
		return ErrClosed
	}
	if err != nil {
		return s.fail(classify(op, err, msgRegisterFailed))
	}

	s.log.WithField("email", email).Info("team member registered")
	s.setStatus(StatusSuccess, msgRegistered)
	s.refresh(ctx, op)
	return nil
}

// RemoveMember deletes the member unconditionally. Asking the user for
// confirmation is the caller's job.
func (s *Store) RemoveMember(ctx context.Context, email string) error {
	const op = "remove member"

	email = strings.TrimSpace(email)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	owner := s.isOwnerLocked(email)
	s.mu.Unlock()

	if email == "" {
		return s.fail(invalidOperation(op, msgNoSelection))
	}
	if owner {
		return s.fail(invalidOperation(op, msgOwnerRemove))
	}

	token, terr := s.token(op)
	if terr != nil {
		return s.fail(terr)
	}

	callCtx, done := s.bind(ctx)
	err := s.api.RemoveMember(callCtx, token, email)
	done()
	if s.isClosed() {
		return ErrClosed
	}
	if err != nil {
		return s.fail(classify(op, err, msgRemoveFailed))
	}

	s.log.WithField("email", email).Info("team member removed")
	s.setStatus(StatusSuccess, msgRemoved)
	s.refresh(ctx, op)
	return nil
}

// OpenPrivilegesForm starts editing member, replacing any open session. The
// working set is a copy; the member list is untouched until an update
// succeeds.
func (s *Store) OpenPrivilegesForm(member models.Member) error {
	const op = "open privileges form"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if member.IsOwner || s.isOwnerLocked(member.Email) {
		s.mu.Unlock()
		return s.fail(invalidOperation(op, msgOwnerEdit))
	}
	s.session = Editing{Member: member.Clone(), Privileges: member.Privileges.Clone()}
	s.mu.Unlock()
	return nil
}

func (s *Store) ClosePrivilegesForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.session = Closed{}
}

// TogglePrivilege adds or removes p in the working set. It does nothing when
// no session is open and rejects values outside the privilege vocabulary.
func (s *Store) TogglePrivilege(p models.Privilege, included bool) error {
	if !p.Valid() {
		s.log.WithField("privilege", string(p)).Warn("ignoring unknown privilege")
		return fmt.Errorf("%w: %q", models.ErrUnknownPrivilege, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	editing, ok := s.session.(Editing)
	if s.closed || !ok {
		return nil
	}
	if included {
		_ = editing.Privileges.Add(p)
	} else {
		editing.Privileges.Remove(p)
	}
	return nil
}

// UpdateSelectedPrivileges commits the working set of the open session. On
// success the session closes; on failure it stays open for a retry.
func (s *Store) UpdateSelectedPrivileges(ctx context.Context) error {
	const op = "update privileges"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	editing, ok := s.session.(Editing)
	if !ok {
		s.mu.Unlock()
		return s.fail(invalidOperation(op, msgNoSelection))
	}
	email := editing.Member.Email
	owner := editing.Member.IsOwner || s.isOwnerLocked(email)
	privileges := editing.Privileges.Clone()
	s.mu.Unlock()

	if owner {
		return s.fail(invalidOperation(op, msgOwnerEdit))
	}

	token, terr := s.token(op)
	if terr != nil {
		return s.fail(terr)
	}

	callCtx, done := s.bind(ctx)
	err := s.api.UpdatePrivileges(callCtx, token, email, privileges)
	done()
	if s.isClosed() {
		return ErrClosed
	}
	if err != nil {
		return s.fail(classify(op, err, msgUpdateFailed))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	// A form opened for someone else while the call was in flight stays open.
	if current, ok := s.session.(Editing); ok && strings.EqualFold(current.Member.Email, email) {
		s.session = Closed{}
	}
	s.status = &Status{Kind: StatusSuccess, Text: msgUpdated}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"email":      email,
		"privileges": strings.Join(privileges.Strings(), ","),
	}).Info("privileges updated")
	s.refresh(ctx, op)
	return nil
}

func (s *Store) DismissStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.status = nil
}
