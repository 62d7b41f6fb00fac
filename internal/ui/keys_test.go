package ui

import (
	"context"
	"encoding/json"
	"fmt"
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
)

// fakeKeysServer serves the search and save endpoints from memory and
// records every request body.
type fakeKeysServer struct {
	mu       sync.Mutex
	records  []keys.Record
	searches []map[string]any
	saves    []keys.Record
	status   int
}

func (f *fakeKeysServer) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":"FAILED","message":"boom"}}`))
		return
	}
	switch r.URL.Path {
	case "/api/apikeys/search":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.searches = append(f.searches, body)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.records})
	case "/api/apikeys/save":
		var rec keys.Record
		_ = json.NewDecoder(r.Body).Decode(&rec)
		f.saves = append(f.saves, rec)
		if !rec.Confirmed() {
			rec.APIKey = keys.StringPtr(fmt.Sprintf("gen-%d", len(f.saves)))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": rec})
	case "/api/health":
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeKeysServer) setStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = code
}

func (f *fakeKeysServer) lastSearch() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.searches) == 0 {
		return nil
	}
	return f.searches[len(f.searches)-1]
}

func (f *fakeKeysServer) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func testKeysClient(t *testing.T, records []keys.Record) (*fakeKeysServer, *api.Client) {
	fake := &fakeKeysServer{records: records}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)
	return fake, api.NewClient(srv.URL, "test-token")
}

func numberedRecords(n int) []keys.Record {
	out := make([]keys.Record, n)
	for i := range out {
		out[i] = keys.Record{
			APIKey:     keys.StringPtr(fmt.Sprintf("key-%02d", i+1)),
			ClientName: fmt.Sprintf("Client %02d", i+1),
			IsActive:   i%2 == 0,
		}
	}
	return out
}

func newLoadedKeysModel(t *testing.T, records []keys.Record) (*fakeKeysServer, KeysModel) {
	fake, client := testKeysClient(t, records)
	console := keys.NewConsole(context.Background(), api.NewRepository(client), zerolog.Nop())
	t.Cleanup(console.Close)

	model := NewKeysModel(console)
	cmd := model.Init()
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	require.True(t, console.Loaded())
	return fake, model
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysInitLoadsFirstPage(t *testing.T) {
	_, model := newLoadedKeysModel(t, numberedRecords(10))

	assert.Len(t, model.console.Visible(), keys.PageSize)
	assert.Equal(t, 2, model.console.TotalPages())
	assert.Contains(t, model.View(), "Client 01")
	assert.NotContains(t, model.View(), "Client 09")
}

func TestKeysPagingKeys(t *testing.T) {
	_, model := newLoadedKeysModel(t, numberedRecords(20))

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, model.console.Page())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 3, model.console.Page())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, model.console.Page())
	assert.Len(t, model.console.Visible(), 4)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 1, model.console.Page())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, model.console.Page())
}

func TestKeysSearchTypingIssuesQuery(t *testing.T) {
	fake, model := newLoadedKeysModel(t, numberedRecords(20))
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 2, model.console.Page())

	model, _ = model.Update(runes("/"))
	assert.True(t, model.capturing())

	model, cmd := model.Update(runes("0"))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, model.console.Page())
	assert.Equal(t, "0", model.console.Filter().Query())

	model, _ = model.Update(cmd())
	body := fake.lastSearch()
	require.NotNil(t, body)
	assert.Equal(t, "0", body["clientName"])
	assert.EqualValues(t, -1, body["isActive"])

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, model.capturing())
}

func TestKeysFilterPanelTogglesAttribute(t *testing.T) {
	fake, model := newLoadedKeysModel(t, numberedRecords(10))

	model, _ = model.Update(runes("f"))
	assert.Contains(t, model.View(), "Filters")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.NotNil(t, cmd)
	assert.True(t, model.console.Filter().Enabled(keys.AttrActive))
	// Projection applies before the response arrives.
	assert.Len(t, model.console.Projected(), 5)

	model, _ = model.Update(cmd())
	assert.EqualValues(t, 1, fake.lastSearch()["isActive"])
	assert.EqualValues(t, -1, fake.lastSearch()["isIpCheck"])

	model, cmd = model.Update(runes("c"))
	require.NotNil(t, cmd)
	assert.Zero(t, model.console.Filter().Active())
}

func TestKeysCreateFlowMergesAndRefetches(t *testing.T) {
	fake, model := newLoadedKeysModel(t, numberedRecords(3))

	model, _ = model.Update(runes("n"))
	require.True(t, model.console.Form().Open())
	assert.Contains(t, model.View(), "New API Key")

	model, _ = model.Update(runes("Acme"))
	assert.Equal(t, "Acme", model.console.Form().Draft().ClientName)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, model.console.Form().Draft().IsActive)

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, keys.ModalSubmitting, model.console.Form().State())

	// Keys are ignored while the save is in flight.
	model, ignored := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, ignored)
	assert.Equal(t, keys.ModalSubmitting, model.console.Form().State())

	model, refetch := model.Update(cmd())
	require.NotNil(t, refetch)
	assert.False(t, model.console.Form().Open())
	assert.Equal(t, 1, fake.saveCount())

	records := model.console.Records()
	require.Len(t, records, 4)
	assert.Equal(t, "Acme", records[3].ClientName)
	assert.True(t, records[3].IsActive)
	require.NotNil(t, records[3].APIKey)
	assert.Equal(t, "gen-1", *records[3].APIKey)
	assert.Contains(t, model.View(), "Saved Acme")
}

func TestKeysSubmitEmptyNameShowsErrorWithoutRequest(t *testing.T) {
	fake, model := newLoadedKeysModel(t, numberedRecords(3))

	model, _ = model.Update(runes("n"))
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, keys.ModalCreate, model.console.Form().State())
	assert.Equal(t, "Client Name is required", model.console.Form().Errors().Get(keys.FieldClientName))
	assert.Contains(t, model.View(), "Client Name is required")
	assert.Zero(t, fake.saveCount())

	model, _ = model.Update(runes("A"))
	assert.Empty(t, model.console.Form().Errors().Get(keys.FieldClientName))
}

func TestKeysEditOpensSelectedRow(t *testing.T) {
	_, model := newLoadedKeysModel(t, numberedRecords(3))

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(runes("e"))

	require.Equal(t, keys.ModalEdit, model.console.Form().State())
	assert.Equal(t, "Client 02", model.console.Form().Draft().ClientName)
	assert.Equal(t, "Client 02", model.name.Value())
	assert.Contains(t, model.View(), "Edit API Key")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, model.console.Form().Open())
	assert.Empty(t, model.name.Value())
}

func TestKeysSaveFailureKeepsModalOpen(t *testing.T) {
	fake, model := newLoadedKeysModel(t, numberedRecords(3))

	model, _ = model.Update(runes("n"))
	model, _ = model.Update(runes("Acme"))
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	fake.setStatus(http.StatusInternalServerError)
	model, next := model.Update(cmd())

	assert.Nil(t, next)
	assert.Equal(t, keys.ModalCreate, model.console.Form().State())
	assert.Equal(t, "Acme", model.name.Value())
	assert.Len(t, model.console.Records(), 3)
	assert.Contains(t, model.View(), "retry")
}

func TestKeysEmptyStates(t *testing.T) {
	_, model := newLoadedKeysModel(t, nil)
	assert.Contains(t, model.View(), "No API keys.")

	_, model = newLoadedKeysModel(t, numberedRecords(2))
	model, _ = model.Update(runes("/"))
	model, _ = model.Update(runes("zzz"))
	assert.Contains(t, model.View(), "No API keys match")
}

func TestKeysPagerHintsFollowBoundaries(t *testing.T) {
	_, model := newLoadedKeysModel(t, numberedRecords(20))

	assert.NotContains(t, model.renderPager(), "‹ h")
	assert.Contains(t, model.renderPager(), "l ›")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Contains(t, model.renderPager(), "‹ h")
	assert.Contains(t, model.renderPager(), "l ›")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Contains(t, model.renderPager(), "‹ h")
	assert.NotContains(t, model.renderPager(), "l ›")
}

func TestKeysEditPendingRowShowsNotice(t *testing.T) {
	records := numberedRecords(2)
	records[0].APIKey = nil
	_, model := newLoadedKeysModel(t, records)

	model, _ = model.Update(runes("e"))
	assert.False(t, model.console.Form().Open())
	assert.Contains(t, model.View(), "still pending")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(runes("e"))
	assert.Equal(t, keys.ModalEdit, model.console.Form().State())
}

func TestKeysCreateAfterFailedSearchHasNoRetryPrompt(t *testing.T) {
	fake, model := newLoadedKeysModel(t, numberedRecords(3))

	fake.setStatus(http.StatusServiceUnavailable)
	model, cmd := model.Update(runes("r"))
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	require.Error(t, model.console.LastError())
	fake.setStatus(0)

	model, _ = model.Update(runes("n"))
	require.True(t, model.console.Form().Open())
	assert.NoError(t, model.console.LastError())
	assert.NotContains(t, model.View(), "retry")
	assert.Contains(t, model.View(), "enter: save")
}
