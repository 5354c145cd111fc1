package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingMetadata struct {
	Who string `json:"who"`
}

func pingEntry(t Type) Entry {
	return Define(t,
		func(m pingMetadata) string { return "Ping" },
		func(m pingMetadata) string { return "from " + m.Who },
		func(m pingMetadata) View { return View{Kind: ViewGeneric} },
	)
}

func TestNewRegistry(t *testing.T) {
	t.Run("builtin types are all registered", func(t *testing.T) {
		r := DefaultRegistry()
		for _, typ := range []Type{
			TypeBirthdayReminder, TypeOwnershipFlag, TypeFriendRequest,
			TypeFriendAccepted, TypeWishlistShared, TypeCollaboratorAdded,
		} {
			assert.True(t, r.Has(typ), typ)
		}
		assert.Len(t, r.Types(), 6)
	})

	t.Run("duplicate type is rejected", func(t *testing.T) {
		_, err := NewRegistry(pingEntry("ping"), pingEntry("ping"))
		assert.ErrorIs(t, err, ErrDuplicateType)
	})

	t.Run("empty type is rejected", func(t *testing.T) {
		_, err := NewRegistry(pingEntry(""))
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("entry without view is rejected", func(t *testing.T) {
		e := pingEntry("ping")
		e.View = nil
		_, err := NewRegistry(e)
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("must panics on invalid input", func(t *testing.T) {
		assert.Panics(t, func() { MustNewRegistry(pingEntry("a"), pingEntry("a")) })
	})

	t.Run("types are sorted", func(t *testing.T) {
		r := MustNewRegistry(pingEntry("zeta"), pingEntry("alpha"), pingEntry("mid"))
		assert.Equal(t, []Type{"alpha", "mid", "zeta"}, r.Types())
	})
}

func TestRegistryLookup(t *testing.T) {
	r := MustNewRegistry(pingEntry("ping"))

	e, err := r.Lookup("ping")
	require.NoError(t, err)
	msg, err := e.Message(json.RawMessage(`{"who":"ana"}`))
	require.NoError(t, err)
	assert.Equal(t, "from ana", msg)

	_, err = r.Lookup("pong")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.False(t, r.Has("pong"))
}

func TestDefineDecodesMetadata(t *testing.T) {
	e := pingEntry("ping")

	title, err := e.Title(nil)
	require.NoError(t, err)
	assert.Equal(t, "Ping", title)

	msg, err := e.Message(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Equal(t, "from ", msg)

	_, err = e.Message(json.RawMessage(`{"who":42}`))
	assert.ErrorIs(t, err, ErrInvalidMetadata)

	_, err = e.View(json.RawMessage(`not json`))
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}
