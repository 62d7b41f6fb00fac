package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormCreateLifecycle(t *testing.T) {
	var f Form
	assert.Equal(t, ModalClosed, f.State())

	require.True(t, f.OpenCreate())
	assert.Equal(t, ModalCreate, f.State())
	assert.False(t, f.Editing())

	f.SetClientName("Acme")
	f.ToggleFlag(AttrActive)
	payload, ok := f.Submit()
	require.True(t, ok)
	assert.Nil(t, payload.APIKey)
	assert.True(t, payload.IsActive)
	assert.Equal(t, ModalSubmitting, f.State())

	assert.False(t, f.Close(), "close is ignored while submitting")
	f.Succeed()
	assert.Equal(t, ModalClosed, f.State())
	assert.Equal(t, Record{}, f.Draft())
}

func TestFormSubmitCoercesBlankIdentifierToNull(t *testing.T) {
	var f Form
	require.True(t, f.OpenEdit(Record{APIKey: StringPtr(""), ClientName: "x"}))
	payload, ok := f.Submit()
	require.True(t, ok)
	assert.Nil(t, payload.APIKey)
}

func TestFormEditCopiesRecord(t *testing.T) {
	rec := Record{APIKey: StringPtr("k1"), ClientName: "Acme", IsIPCheck: true}
	var f Form
	require.True(t, f.OpenEdit(rec))
	assert.Equal(t, ModalEdit, f.State())
	assert.True(t, f.Editing())

	f.SetClientName("Changed")
	assert.Equal(t, "Acme", rec.ClientName)
	assert.Equal(t, "k1", *rec.APIKey)
}

func TestFormValidationFailureStaysOpen(t *testing.T) {
	var f Form
	f.OpenCreate()
	_, ok := f.Submit()
	assert.False(t, ok)
	assert.Equal(t, ModalCreate, f.State())
	assert.Equal(t, "Client Name is required", f.Errors().Get(FieldClientName))

	f.SetClientName("A")
	assert.True(t, f.Errors().Empty())
}

func TestFormFailureReturnsToPriorState(t *testing.T) {
	var f Form
	f.OpenEdit(Record{APIKey: StringPtr("k1"), ClientName: "Acme"})
	f.SetClientName("Acme 2")
	_, ok := f.Submit()
	require.True(t, ok)

	f.Fail()
	assert.Equal(t, ModalEdit, f.State())
	assert.Equal(t, "Acme 2", f.Draft().ClientName)
}

func TestFormCannotOpenTwice(t *testing.T) {
	var f Form
	require.True(t, f.OpenCreate())
	assert.False(t, f.OpenEdit(Record{ClientName: "x"}))
	assert.True(t, f.Close())
	assert.False(t, f.Open())
}
