package session

import (
	"EstateHub/client"
	"EstateHub/identity"
	"EstateHub/models"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const InactivityLimit = 30 * 24 * time.Hour

// LoginRoute is where an expired session is sent.
const LoginRoute = "/login"

var (
	ErrNotSignedIn = errors.New("not signed in")
	// ErrSessionChanged means a sign-out or another sign-in replaced the
	// session while the call was in flight.
	ErrSessionChanged = errors.New("session changed")
)

type Identity interface {
	SignIn(ctx context.Context, email, password string) (*identity.Account, error)
	SignUp(ctx context.Context, name, email, password string) (*identity.Account, error)
	SignInFederated(ctx context.Context, code string) (*identity.Account, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context, token string) (*identity.Account, error)
	SendPasswordReset(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, token string, update identity.ProfileUpdate) (*identity.Account, error)
}

// RoleStore is the backend of record for roles.
type RoleStore interface {
	FetchRole(ctx context.Context, email string) (string, error)
	UpsertUser(ctx context.Context, token string, req models.UpsertUserRequest) error
}

// APIRoleStore adapts the API client to RoleStore.
type APIRoleStore struct {
	API *client.Client
}

func (s APIRoleStore) FetchRole(ctx context.Context, email string) (string, error) {
	return s.API.FetchRole(ctx, email)
}

func (s APIRoleStore) UpsertUser(ctx context.Context, token string, req models.UpsertUserRequest) error {
	_, err := s.API.WithToken(token).UpsertUser(ctx, req)
	return err
}

type ProfileUpdate struct {
	Name      string `validate:"required"`
	Email     string `validate:"omitempty,email"`
	AvatarURL string `validate:"omitempty,url"`
}

type profile struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

var validate = validator.New()

type Manager struct {
	store    *Store
	identity Identity
	roles    RoleStore
	storage  Storage
	logger   *zap.Logger
	now      func() time.Time

	// mu serializes writes. gen changes whenever a session is established
	// or cleared, so an update computed against an older session is dropped.
	mu         sync.Mutex
	gen        uint64
	unresolved bool
}

func NewManager(store *Store, id Identity, roles RoleStore, storage Storage, logger *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		identity: id,
		roles:    roles,
		storage:  storage,
		logger:   logger.With(zap.String("component", "session")),
		now:      time.Now,
	}
}

func (m *Manager) current() *Session {
	return m.store.State().Session
}

// snapshot returns the current session together with its generation.
func (m *Manager) snapshot() (uint64, *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, m.current()
}

func (m *Manager) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// commit applies fn to the current session and publishes the result, but
// only while gen is still current. fn reports whether anything changed.
func (m *Manager) commit(ctx context.Context, gen uint64, fn func(ctx context.Context, s *Session) bool) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.current()
	if m.gen != gen || s == nil {
		m.logger.Debug("dropping update for a replaced session")
		return nil, false
	}
	if !fn(ctx, s) {
		return s, false
	}
	m.store.publish(State{Session: s, RecentSession: true})
	return s, true
}

// fetchRole asks the backend first. A failed lookup falls back to the
// cached role and then to member. fresh is true when the backend answered.
func (m *Manager) fetchRole(ctx context.Context, email string) (role string, fresh bool) {
	cached, hasCached, err := m.storage.Get(ctx, KeyRole)
	if err != nil {
		m.logger.Warn("reading cached role failed", zap.Error(err))
	}

	role, err = m.roles.FetchRole(ctx, email)
	if err == nil && models.IsValidRole(role) {
		if hasCached && cached != role {
			m.logger.Info("role changed", zap.String("email", email), zap.String("from", cached), zap.String("to", role))
		}
		return role, true
	}
	if err == nil {
		err = errors.New("invalid role " + role)
	}

	if hasCached && models.IsValidRole(cached) {
		m.logger.Warn("role lookup failed, using cached role",
			zap.String("email", email), zap.String("role", cached), zap.Error(err))
		return cached, false
	}
	m.logger.Warn("role lookup failed, defaulting to member", zap.String("email", email), zap.Error(err))
	return models.RoleMember, false
}

func (m *Manager) cacheRole(ctx context.Context, role string) {
	if err := m.storage.Set(ctx, KeyRole, role); err != nil {
		m.logger.Warn("caching role failed", zap.Error(err))
	}
}

func (m *Manager) marker(ctx context.Context) bool {
	_, ok, err := m.storage.Get(ctx, KeyRecentSession)
	if err != nil {
		m.logger.Warn("reading session marker failed", zap.Error(err))
	}
	return ok
}

func (m *Manager) persist(ctx context.Context, s *Session) {
	p, _ := json.Marshal(profile{UID: s.UID, Name: s.Name, Email: s.Email, AvatarURL: s.AvatarURL})
	values := map[string]string{
		KeyToken:         s.Token,
		KeyProfile:       string(p),
		KeyLastActivity:  formatTime(s.LastActivity),
		KeyRecentSession: "1",
	}
	for k, v := range values {
		if err := m.storage.Set(ctx, k, v); err != nil {
			m.logger.Warn("persisting session failed", zap.String("key", k), zap.Error(err))
		}
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (m *Manager) clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	if err := m.storage.Delete(ctx, KeyToken, KeyProfile, KeyLastActivity, KeyRole, KeyRecentSession); err != nil {
		m.logger.Warn("clearing session storage failed", zap.Error(err))
	}
	m.store.publish(State{})
}

func (m *Manager) lastActivity(ctx context.Context) (time.Time, bool) {
	v, ok, err := m.storage.Get(ctx, KeyLastActivity)
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ResolveSession restores the persisted session, if any. It returns nil
// when nobody is signed in.
//
// When the identity provider cannot be reached and no profile was stored,
// the state resolves as signed out so protected routes redirect to the
// login page, and the next navigation tries again.
func (m *Manager) ResolveSession(ctx context.Context) (*Session, error) {
	gen := m.generation()
	token, ok, err := m.storage.Get(ctx, KeyToken)
	if err != nil {
		m.logger.Warn("reading token failed", zap.Error(err))
	}
	if !ok || token == "" {
		m.clear(ctx)
		return nil, nil
	}

	now := m.now()
	if last, ok := m.lastActivity(ctx); ok && now.Sub(last) > InactivityLimit {
		m.logger.Info("stored session expired after inactivity", zap.Time("lastActivity", last))
		m.clear(ctx)
		return nil, nil
	}

	account, err := m.identity.CurrentUser(ctx, token)
	if err != nil {
		if identity.IsUnauthorized(err) {
			m.clear(ctx)
			return nil, nil
		}
		account = m.storedAccount(ctx, token)
		if account == nil {
			m.logger.Warn("identity lookup failed, session left unresolved", zap.Error(err))
			m.mu.Lock()
			if m.gen == gen {
				m.unresolved = true
				m.store.publish(State{})
			}
			m.mu.Unlock()
			return nil, err
		}
		m.logger.Warn("identity lookup failed, using stored profile", zap.Error(err))
	}

	s, err := m.establish(ctx, gen, account)
	if errors.Is(err, ErrSessionChanged) {
		return nil, nil
	}
	return s, err
}

func (m *Manager) storedAccount(ctx context.Context, token string) *identity.Account {
	raw, ok, err := m.storage.Get(ctx, KeyProfile)
	if err != nil || !ok {
		return nil
	}
	var p profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.Email == "" {
		return nil
	}
	return &identity.Account{UID: p.UID, Name: p.Name, Email: p.Email, AvatarURL: p.AvatarURL, Token: token}
}

// establish publishes a new session for account unless the session was
// replaced or cleared since gen was read.
func (m *Manager) establish(ctx context.Context, gen uint64, account *identity.Account) (*Session, error) {
	role, fresh := m.fetchRole(ctx, account.Email)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		m.logger.Info("session changed while signing in, dropping result", zap.String("email", account.Email))
		return nil, ErrSessionChanged
	}
	m.gen++
	m.unresolved = false

	s := &Session{
		UID:          account.UID,
		Token:        account.Token,
		Name:         account.Name,
		Email:        account.Email,
		AvatarURL:    account.AvatarURL,
		Role:         role,
		LastActivity: m.now(),
	}
	if fresh {
		m.cacheRole(ctx, role)
	}
	m.persist(ctx, s)
	m.store.publish(State{Session: s, RecentSession: true})
	cp := *s
	return &cp, nil
}

// signedIn upserts the user into the backend store before resolving the
// role. A failed upsert does not block sign-in.
func (m *Manager) signedIn(ctx context.Context, gen uint64, account *identity.Account) (*Session, error) {
	err := m.roles.UpsertUser(ctx, account.Token, models.UpsertUserRequest{
		Name:   account.Name,
		Email:  account.Email,
		Avatar: account.AvatarURL,
	})
	if err != nil {
		m.logger.Warn("syncing user to backend failed", zap.String("email", account.Email), zap.Error(err))
	}
	return m.establish(ctx, gen, account)
}

// SignIn returns identity errors unchanged so they can be shown as is.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	gen := m.generation()
	account, err := m.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.signedIn(ctx, gen, account)
}

func (m *Manager) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	gen := m.generation()
	account, err := m.identity.SignUp(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return m.signedIn(ctx, gen, account)
}

func (m *Manager) SignInWithFederatedProvider(ctx context.Context, code string) (*Session, error) {
	gen := m.generation()
	account, err := m.identity.SignInFederated(ctx, code)
	if err != nil {
		return nil, err
	}
	return m.signedIn(ctx, gen, account)
}

// RefreshRoleOnNavigation refetches the role and republishes only when it
// differs. It reports whether the published state changed. A session left
// unresolved by ResolveSession is retried here.
func (m *Manager) RefreshRoleOnNavigation(ctx context.Context, route string) bool {
	gen, s := m.snapshot()
	if s == nil {
		m.mu.Lock()
		retry := m.unresolved
		m.mu.Unlock()
		if !retry {
			return false
		}
		restored, _ := m.ResolveSession(ctx)
		return restored != nil
	}
	m.touch(ctx, gen)

	role, fresh := m.fetchRole(ctx, s.Email)
	_, changed := m.commit(ctx, gen, func(ctx context.Context, cur *Session) bool {
		if fresh {
			m.cacheRole(ctx, role)
		}
		if cur.Role == role {
			return false
		}
		m.logger.Info("republishing session with new role",
			zap.String("route", route), zap.String("from", cur.Role), zap.String("to", role))
		cur.Role = role
		return true
	})
	return changed
}

// RoleChanged handles an external signal that permissions were edited.
func (m *Manager) RoleChanged(ctx context.Context) bool {
	return m.RefreshRoleOnNavigation(ctx, "")
}

func (m *Manager) SignOut(ctx context.Context) error {
	err := m.identity.SignOut(ctx)
	if err != nil {
		m.logger.Warn("identity sign-out failed", zap.Error(err))
	}
	m.clear(ctx)
	return err
}

func (m *Manager) RecordActivity(ctx context.Context) {
	m.touch(ctx, m.generation())
}

func (m *Manager) touch(ctx context.Context, gen uint64) {
	m.commit(ctx, gen, func(ctx context.Context, s *Session) bool {
		s.LastActivity = m.now()
		if err := m.storage.Set(ctx, KeyLastActivity, formatTime(s.LastActivity)); err != nil {
			m.logger.Warn("persisting activity failed", zap.Error(err))
		}
		return true
	})
}

// CheckInactivity signs out a session idle for longer than InactivityLimit
// and reports whether it did.
func (m *Manager) CheckInactivity(ctx context.Context) bool {
	s := m.current()
	if s == nil {
		return false
	}
	idle := m.now().Sub(s.LastActivity)
	if idle <= InactivityLimit {
		return false
	}
	m.logger.Info("signing out inactive session", zap.String("email", s.Email), zap.Duration("idle", idle))
	_ = m.SignOut(ctx)
	return true
}

// WatchInactivity checks every interval until ctx is done. onExpire gets
// the route to redirect to.
func (m *Manager) WatchInactivity(ctx context.Context, interval time.Duration, onExpire func(redirect string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.CheckInactivity(ctx) && onExpire != nil {
				onExpire(LoginRoute)
			}
		}
	}
}

func (m *Manager) SendPasswordReset(ctx context.Context, email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return &identity.Error{Code: identity.CodeRejected, Message: "Please enter a valid email address.", Err: err}
	}
	return m.identity.SendPasswordReset(ctx, email)
}

// UpdateProfile rejects missing fields before calling out. Changing the
// email requires the new address to be verified again.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Session, error) {
	if err := validate.Struct(update); err != nil {
		return nil, &identity.Error{Code: identity.CodeRejected, Message: "Name is required and email/photo must be valid.", Err: err}
	}
	gen, s := m.snapshot()
	if s == nil {
		return nil, ErrNotSignedIn
	}

	account, err := m.identity.UpdateProfile(ctx, s.Token, identity.ProfileUpdate{
		Name:      update.Name,
		Email:     update.Email,
		AvatarURL: update.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	updated, _ := m.commit(ctx, gen, func(ctx context.Context, cur *Session) bool {
		cur.Name = account.Name
		cur.AvatarURL = account.AvatarURL
		if account.Email != "" && account.Email != cur.Email {
			m.logger.Info("email changed, verification required", zap.String("email", account.Email))
			cur.Email = account.Email
		}
		m.persist(ctx, cur)
		return true
	})
	if updated == nil {
		return nil, ErrSessionChanged
	}
	cp := *updated
	return &cp, nil
}

// SendEmailVerification re-sends the verification mail for the current
// address.
func (m *Manager) SendEmailVerification(ctx context.Context) error {
	s := m.current()
	if s == nil {
		return ErrNotSignedIn
	}
	return m.identity.SendEmailVerification(ctx, s.Token)
}
