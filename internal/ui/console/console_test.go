package console

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/internal/testutil"
	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, backend *testutil.Backend) *Registry {
	t.Helper()
	return NewRegistry(Config{
		Backend: Backend{BaseURL: backend.URL, Timeout: 2 * time.Second},
		Logger:  testutil.NewTestLogger(t),
	})
}

func login(t *testing.T, c *Console) {
	t.Helper()
	res, err := c.API().Base.Login(context.Background(), core.LoginRequest{
		Username: testutil.AdminUsername,
		Password: testutil.AdminPassword,
	})
	require.NoError(t, err)
	c.Session.Login(res.Token, nil)
}

func TestRegistry_CreateGetRemove(t *testing.T) {
	r := newTestRegistry(t, testutil.NewBackend(t))

	c := r.Create()
	require.NotEmpty(t, c.ID)
	assert.False(t, c.Session.Active())

	got, ok := r.Get(c.ID)
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, r.Len())

	r.Remove(c.ID)
	_, ok = r.Get(c.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Restore(t *testing.T) {
	backend := testutil.NewBackend(t)
	r := newTestRegistry(t, backend)
	token := testutil.IssueToken(1, "admin", time.Now().Add(time.Hour))

	_, ok := r.Restore("", token)
	assert.False(t, ok, "no id")
	_, ok = r.Restore("abc", "")
	assert.False(t, ok, "no token")

	c, ok := r.Restore("abc", token)
	require.True(t, ok)
	assert.Equal(t, "abc", c.ID)
	assert.Equal(t, token, c.Session.Token())

	again, ok := r.Restore("abc", "other")
	require.True(t, ok)
	assert.Same(t, c, again, "existing console wins over the cookie token")
}

func TestConsole_RoutesFromBackend(t *testing.T) {
	backend := testutil.NewBackend(t)
	r := newTestRegistry(t, backend)
	c := r.Create()
	login(t, c)

	routes, err := c.Session.Routes().GenerateRoutes(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "/system", routes[0].Path)

	last := backend.LastCall()
	assert.Equal(t, "/api/menu/access/tree/1", last.Path)
}

func TestConsole_ExpiryPublishesPrompt(t *testing.T) {
	backend := testutil.NewBackend(t)
	r := newTestRegistry(t, backend)
	c := r.Create()
	login(t, c)

	events := r.Notifier().Subscribe(c.ID)
	defer r.Notifier().Unsubscribe(events)

	backend.ExpireTokens()
	_, err := c.API().Users.Info(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrSessionExpired))
	assert.True(t, c.Session.Active(), "stay keeps the session until the browser confirms")

	select {
	case ev := <-events:
		require.NotNil(t, ev.Prompt)
		assert.Equal(t, auth.SessionExpiredPrompt.Title, ev.Prompt.Title)
		assert.Equal(t, auth.NoticeWarning, ev.Notice.Type)
	case <-time.After(time.Second):
		t.Fatal("no prompt published")
	}
}

func TestConsole_ErrorsPublishNotice(t *testing.T) {
	backend := testutil.NewBackend(t)
	r := newTestRegistry(t, backend)
	c := r.Create()

	events := r.Notifier().Subscribe(c.ID)
	defer r.Notifier().Unsubscribe(events)

	_, err := c.API().Base.Login(context.Background(), core.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)

	select {
	case ev := <-events:
		assert.Nil(t, ev.Prompt)
		assert.Equal(t, auth.NoticeError, ev.Notice.Type)
		assert.NotEmpty(t, ev.Notice.Message)
	case <-time.After(time.Second):
		t.Fatal("no notice published")
	}
}

func TestRegistry_SetBackend(t *testing.T) {
	first := testutil.NewBackend(t)
	second := testutil.NewBackend(t)
	r := newTestRegistry(t, first)
	c := r.Create()
	login(t, c)
	_, err := c.Session.Routes().GenerateRoutes(context.Background(), 1)
	require.NoError(t, err)

	r.SetBackend(Backend{BaseURL: second.URL, Timeout: time.Second})

	assert.Equal(t, second.URL, r.Backend().BaseURL)
	assert.Equal(t, second.URL, c.Client().BaseURL())
	assert.False(t, c.Session.Routes().Generated(), "routes from the old backend are dropped")
	assert.True(t, c.Session.Active())

	_, err = c.Session.Routes().GenerateRoutes(context.Background(), 1)
	require.Error(t, err, "token was issued by the first backend")
	assert.NotEmpty(t, second.Calls())
}

func TestContext(t *testing.T) {
	assert.Nil(t, From(context.Background()))

	c := &Console{ID: "x"}
	ctx := WithConsole(context.Background(), c)
	assert.Same(t, c, From(ctx))
}
