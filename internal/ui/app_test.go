package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/keyadmin/internal/api"
	"github.com/gravitrone/keyadmin/internal/keys"
	"github.com/gravitrone/keyadmin/internal/session"
)

type memTokenStore struct {
	saved []string
}

func (s *memTokenStore) SaveToken(token string) error {
	s.saved = append(s.saved, token)
	return nil
}

func newTestApp(t *testing.T, token string, records []keys.Record) (*fakeKeysServer, *memTokenStore, App) {
	fake, client := testKeysClient(t, records)
	client.SetToken(token)
	store := &memTokenStore{}
	sess := session.New(token, store)
	console := keys.NewConsole(context.Background(), api.NewRepository(client), zerolog.Nop())
	t.Cleanup(console.Close)
	return fake, store, NewApp(client, sess, console, zerolog.Nop())
}

func update(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := app.Update(msg)
	next, ok := model.(App)
	require.True(t, ok)
	return next, cmd
}

func TestAppSignedOutShowsLoginHint(t *testing.T) {
	_, _, app := newTestApp(t, "", numberedRecords(3))

	assert.Contains(t, app.View(), "Not signed in")
	assert.Contains(t, app.View(), "keyadmin login")

	// Console keys are not routed without a session.
	app, cmd := update(t, app, runes("n"))
	assert.Nil(t, cmd)
	assert.False(t, app.keys.console.Form().Open())
}

func TestAppStartupCheckReportsStatus(t *testing.T) {
	_, _, app := newTestApp(t, "tok", nil)

	msg := app.runStartupCheckCmd()()
	app, _ = update(t, app, msg)
	assert.Equal(t, "ok", app.apiStatus)
	assert.False(t, app.startupChecking)
	assert.Contains(t, app.View(), "signed in")
}

func TestAppStartupCheckFailureToasts(t *testing.T) {
	fake, _, app := newTestApp(t, "tok", nil)
	fake.setStatus(http.StatusServiceUnavailable)

	msg := app.runStartupCheckCmd()()
	app, cmd := update(t, app, msg)
	assert.Equal(t, "unreachable", app.apiStatus)
	assert.NotNil(t, cmd)
	require.NotNil(t, app.toast)
	assert.Equal(t, "warning", app.toast.level)
}

func TestAppLoadsKeysWhenSignedIn(t *testing.T) {
	_, _, app := newTestApp(t, "tok", numberedRecords(3))

	app, _ = update(t, app, app.keys.Init()())
	assert.Len(t, app.keys.console.Records(), 3)
	assert.Contains(t, app.View(), "Client 03")
}

func TestAppUnauthorizedSearchExpiresSession(t *testing.T) {
	fake, store, app := newTestApp(t, "tok", numberedRecords(3))
	fake.setStatus(http.StatusUnauthorized)

	app, cmd := update(t, app, app.keys.Init()())

	assert.Nil(t, cmd)
	assert.False(t, app.session.Authenticated())
	assert.True(t, app.expired)
	assert.Empty(t, app.client.Token())
	assert.Equal(t, []string{""}, store.saved)
	assert.Contains(t, app.View(), "Session expired")
}

func TestAppUnauthorizedSaveExpiresSession(t *testing.T) {
	fake, _, app := newTestApp(t, "tok", numberedRecords(1))
	app, _ = update(t, app, app.keys.Init()())

	app, _ = update(t, app, runes("n"))
	app, _ = update(t, app, runes("Acme"))
	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	fake.setStatus(http.StatusUnauthorized)
	app, next := update(t, app, cmd())

	assert.Nil(t, next)
	assert.False(t, app.session.Authenticated())
	assert.Contains(t, app.View(), "Session expired")
}

func TestAppSignOutConfirm(t *testing.T) {
	_, store, app := newTestApp(t, "tok", numberedRecords(1))

	app, _ = update(t, app, runes("L"))
	require.True(t, app.signOutConfirm)
	assert.Contains(t, app.View(), "Sign out")

	app, _ = update(t, app, runes("n"))
	assert.False(t, app.signOutConfirm)
	assert.True(t, app.session.Authenticated())

	app, _ = update(t, app, runes("L"))
	app, cmd := update(t, app, runes("y"))
	assert.NotNil(t, cmd)
	assert.False(t, app.session.Authenticated())
	assert.False(t, app.expired)
	assert.Equal(t, []string{""}, store.saved)
	assert.Contains(t, app.View(), "Not signed in")
}

func TestAppQuitKeyTypesIntoSearchBox(t *testing.T) {
	_, _, app := newTestApp(t, "tok", numberedRecords(1))

	app, _ = update(t, app, runes("/"))
	app, cmd := update(t, app, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, "q", app.keys.console.Filter().Query())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	_, cmd = update(t, app, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestAppSignOutDuringSaveCancelsRequest(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, "tok")
	store := &memTokenStore{}
	console := keys.NewConsole(context.Background(), api.NewRepository(client), zerolog.Nop())
	t.Cleanup(console.Close)
	app := NewApp(client, session.New("tok", store), console, zerolog.Nop())

	require.True(t, console.OpenCreate())
	console.Form().SetClientName("Acme")
	req, ok := console.Submit()
	require.True(t, ok)

	done := make(chan tea.Msg, 1)
	go func() { done <- saveCmd(req)() }()
	<-started

	app.signOut()
	msg := <-done

	saved, ok := msg.(keySavedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, saved.res.Err, context.Canceled)
	assert.Empty(t, client.Token())
	assert.False(t, app.session.Authenticated())

	app, _ = update(t, app, msg)
	assert.NoError(t, app.keys.console.LastError())
	assert.Empty(t, app.keys.console.Records())
}
