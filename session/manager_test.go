package session

import (
	"EstateHub/identity"
	"EstateHub/models"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIdentity struct {
	account    *identity.Account
	signInErr  error
	currentErr error
	updated    identity.ProfileUpdate
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*identity.Account, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.account, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, name, email, password string) (*identity.Account, error) {
	return f.SignIn(ctx, email, password)
}

func (f *fakeIdentity) SignInFederated(ctx context.Context, code string) (*identity.Account, error) {
	return f.SignIn(ctx, "", "")
}

func (f *fakeIdentity) SignOut(ctx context.Context) error { return nil }

func (f *fakeIdentity) CurrentUser(ctx context.Context, token string) (*identity.Account, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	acc := *f.account
	acc.Token = token
	return &acc, nil
}

func (f *fakeIdentity) SendPasswordReset(ctx context.Context, email string) error { return nil }

func (f *fakeIdentity) SendEmailVerification(ctx context.Context, token string) error { return nil }

func (f *fakeIdentity) UpdateProfile(ctx context.Context, token string, update identity.ProfileUpdate) (*identity.Account, error) {
	f.updated = update
	acc := *f.account
	acc.Name = update.Name
	if update.Email != "" {
		acc.Email = update.Email
	}
	return &acc, nil
}

type fakeRoles struct {
	role     string
	err      error
	upserted []models.UpsertUserRequest
}

func (f *fakeRoles) FetchRole(ctx context.Context, email string) (string, error) {
	return f.role, f.err
}

func (f *fakeRoles) UpsertUser(ctx context.Context, token string, req models.UpsertUserRequest) error {
	f.upserted = append(f.upserted, req)
	return nil
}

func newTestManager(id *fakeIdentity, roles *fakeRoles) (*Manager, *Store, *MemoryStorage) {
	store := NewStore()
	storage := NewMemoryStorage()
	return NewManager(store, id, roles, storage, zap.NewNop()), store, storage
}

func asha() *identity.Account {
	return &identity.Account{UID: "u1", Name: "Asha", Email: "asha@example.com", Token: "tok"}
}

func TestSignInUpsertsAndResolvesRole(t *testing.T) {
	roles := &fakeRoles{role: models.RoleAdmin}
	m, store, storage := newTestManager(&fakeIdentity{account: asha()}, roles)

	s, err := m.SignIn(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, s.Role)
	require.Len(t, roles.upserted, 1)
	assert.Equal(t, "asha@example.com", roles.upserted[0].Email)
	assert.Empty(t, roles.upserted[0].Role)

	st := store.State()
	assert.False(t, st.Pending)
	assert.True(t, st.RecentSession)
	assert.Equal(t, "tok", store.Token())

	token, ok, _ := storage.Get(context.Background(), KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
}

func TestSignInSurfacesIdentityErrors(t *testing.T) {
	idErr := &identity.Error{Code: identity.CodeInvalidCredential, Message: "Invalid email or password"}
	m, store, _ := newTestManager(&fakeIdentity{signInErr: idErr}, &fakeRoles{role: models.RoleMember})

	_, err := m.SignIn(context.Background(), "asha@example.com", "bad")
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Nil(t, store.State().Session)
}

func TestPublishedRoleFollowsBackendThenCache(t *testing.T) {
	ctx := context.Background()
	roles := &fakeRoles{role: models.RoleMember}
	m, store, _ := newTestManager(&fakeIdentity{account: asha()}, roles)

	_, err := m.SignIn(ctx, "asha@example.com", "secret")
	require.NoError(t, err)

	for _, role := range []string{models.RoleAdmin, models.RoleOwner, models.RoleMember, models.RoleAdmin} {
		roles.role = role
		m.RefreshRoleOnNavigation(ctx, "/properties")
		assert.Equal(t, role, store.State().Role())
	}

	roles.err = errors.New("backend down")
	roles.role = ""
	changed := m.RefreshRoleOnNavigation(ctx, "/properties")
	assert.False(t, changed)
	assert.Equal(t, models.RoleAdmin, store.State().Role())
}

func TestRoleFallsBackToMemberWithoutCache(t *testing.T) {
	roles := &fakeRoles{err: errors.New("backend down")}
	m, _, _ := newTestManager(&fakeIdentity{account: asha()}, roles)

	s, err := m.SignIn(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, s.Role)
}

func TestRefreshRepublishesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	roles := &fakeRoles{role: models.RoleMember}
	m, store, _ := newTestManager(&fakeIdentity{account: asha()}, roles)
	_, err := m.SignIn(ctx, "asha@example.com", "secret")
	require.NoError(t, err)

	assert.False(t, m.RefreshRoleOnNavigation(ctx, "/"))
	roles.role = models.RoleOwner
	assert.True(t, m.RoleChanged(ctx))
	assert.Equal(t, models.RoleOwner, store.State().Role())
}

func TestResolveSessionWithoutToken(t *testing.T) {
	m, store, _ := newTestManager(&fakeIdentity{account: asha()}, &fakeRoles{role: models.RoleMember})
	assert.True(t, store.State().Pending)

	s, err := m.ResolveSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	st := store.State()
	assert.False(t, st.Pending)
	assert.False(t, st.Authenticated())
}

func TestResolveSessionRestoresStoredToken(t *testing.T) {
	ctx := context.Background()
	roles := &fakeRoles{role: models.RoleOwner}
	m, _, storage := newTestManager(&fakeIdentity{account: asha()}, roles)
	require.NoError(t, storage.Set(ctx, KeyToken, "stored"))

	s, err := m.ResolveSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "stored", s.Token)
	assert.Equal(t, models.RoleOwner, s.Role)
}

func TestResolveSessionDropsRejectedToken(t *testing.T) {
	ctx := context.Background()
	id := &fakeIdentity{account: asha(), currentErr: &identity.Error{Code: identity.CodeInvalidCredential, Message: "expired"}}
	m, _, storage := newTestManager(id, &fakeRoles{role: models.RoleMember})
	require.NoError(t, storage.Set(ctx, KeyToken, "stale"))

	s, err := m.ResolveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	_, ok, _ := storage.Get(ctx, KeyToken)
	assert.False(t, ok)
}

func TestInactivityExpiry(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(&fakeIdentity{account: asha()}, &fakeRoles{role: models.RoleMember})
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }
	_, err := m.SignIn(ctx, "asha@example.com", "secret")
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(29 * 24 * time.Hour) }
	assert.False(t, m.CheckInactivity(ctx))

	m.now = func() time.Time { return start.Add(31 * 24 * time.Hour) }
	assert.True(t, m.CheckInactivity(ctx))
	assert.False(t, store.State().Authenticated())
}

func TestRecordActivityPostponesExpiry(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(&fakeIdentity{account: asha()}, &fakeRoles{role: models.RoleMember})
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }
	_, err := m.SignIn(ctx, "asha@example.com", "secret")
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(20 * 24 * time.Hour) }
	m.RecordActivity(ctx)
	m.now = func() time.Time { return start.Add(40 * 24 * time.Hour) }
	assert.False(t, m.CheckInactivity(ctx))
}

func TestUpdateProfileValidatesFirst(t *testing.T) {
	ctx := context.Background()
	id := &fakeIdentity{account: asha()}
	m, store, _ := newTestManager(id, &fakeRoles{role: models.RoleMember})
	_, err := m.SignIn(ctx, "asha@example.com", "secret")
	require.NoError(t, err)

	_, err = m.UpdateProfile(ctx, ProfileUpdate{Email: "new@example.com"})
	var idErr *identity.Error
	require.ErrorAs(t, err, &idErr)
	assert.Empty(t, id.updated.Email)

	s, err := m.UpdateProfile(ctx, ProfileUpdate{Name: "Asha R", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", s.Email)
	assert.Equal(t, "Asha R", store.State().Session.Name)
}

func TestSubscribeReceivesLatestState(t *testing.T) {
	m, store, _ := newTestManager(&fakeIdentity{account: asha()}, &fakeRoles{role: models.RoleMember})
	updates, cancel := store.Subscribe()
	defer cancel()

	_, err := m.SignIn(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)

	select {
	case st := <-updates:
		assert.True(t, st.Authenticated())
	case <-time.After(time.Second):
		t.Fatal("no update published")
	}
}

type gatedRoles struct {
	fakeRoles
	mu      sync.Mutex
	gate    chan struct{}
	entered chan struct{}
}

func (g *gatedRoles) FetchRole(ctx context.Context, email string) (string, error) {
	g.mu.Lock()
	gate, entered := g.gate, g.entered
	g.mu.Unlock()
	if gate != nil {
		close(entered)
		<-gate
	}
	return models.RoleAdmin, nil
}

func TestSignOutWinsOverInFlightNavigation(t *testing.T) {
	ctx := context.Background()
	roles := &gatedRoles{}
	store := NewStore()
	storage := NewMemoryStorage()
	m := NewManager(store, &fakeIdentity{account: asha()}, roles, storage, zap.NewNop())
	_, err := m.SignIn(ctx, "asha@example.com", "secret")
	require.NoError(t, err)

	roles.mu.Lock()
	roles.gate = make(chan struct{})
	roles.entered = make(chan struct{})
	gate, entered := roles.gate, roles.entered
	roles.mu.Unlock()

	done := make(chan bool)
	go func() { done <- m.RefreshRoleOnNavigation(ctx, "/admin/properties") }()
	<-entered

	require.NoError(t, m.SignOut(ctx))
	assert.False(t, store.State().Authenticated())
	close(gate)

	assert.False(t, <-done)
	assert.False(t, store.State().Authenticated())
	assert.Empty(t, store.Token())
	for _, key := range []string{KeyToken, KeyLastActivity, KeyRole, KeyRecentSession} {
		_, ok, _ := storage.Get(ctx, key)
		assert.False(t, ok, key)
	}
}

func TestUnreachableIdentityDoesNotBlockNavigation(t *testing.T) {
	ctx := context.Background()
	id := &fakeIdentity{account: asha(), currentErr: &identity.Error{Code: identity.CodeUnavailable, Message: "Something went wrong. Please try again."}}
	m, store, storage := newTestManager(id, &fakeRoles{role: models.RoleMember})
	require.NoError(t, storage.Set(ctx, KeyToken, "tok"))
	require.NoError(t, storage.Set(ctx, KeyRecentSession, "1"))

	s, err := m.ResolveSession(ctx)
	assert.Error(t, err)
	assert.Nil(t, s)
	st := store.State()
	assert.False(t, st.Pending)
	assert.False(t, st.Authenticated())
	assert.False(t, st.RecentSession)

	id.currentErr = nil
	assert.True(t, m.RefreshRoleOnNavigation(ctx, "/wishlist"))
	assert.True(t, store.State().Authenticated())
	assert.Equal(t, "tok", store.Token())

	assert.False(t, m.RefreshRoleOnNavigation(ctx, "/wishlist"))
}

func TestResolveSessionIgnoresStoredProfileOfDeletedAccount(t *testing.T) {
	ctx := context.Background()
	id := &fakeIdentity{account: asha()}
	m, store, storage := newTestManager(id, &fakeRoles{role: models.RoleMember})
	_, err := m.SignIn(ctx, "asha@example.com", "secret")
	require.NoError(t, err)

	id.currentErr = &identity.Error{Code: identity.CodeInvalidCredential, Message: "This account no longer exists."}
	s, err := m.ResolveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.False(t, store.State().Authenticated())
	_, ok, _ := storage.Get(ctx, KeyProfile)
	assert.False(t, ok)
}
