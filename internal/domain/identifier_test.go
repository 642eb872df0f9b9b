package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"tarabaho-web/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemIDJSON(t *testing.T) {
	t.Run("persisted ids encode as numbers", func(t *testing.T) {
		b, err := json.Marshal(domain.PersistedID(42))
		require.NoError(t, err)
		assert.Equal(t, "42", string(b))
	})

	t.Run("pending ids encode as prefixed strings", func(t *testing.T) {
		id := domain.NewPendingID()
		b, err := json.Marshal(id)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(b), `"new-`))

		var back domain.ItemID
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, id, back)
		assert.True(t, back.IsPending())
	})

	t.Run("decoding", func(t *testing.T) {
		cases := map[string]domain.IDKind{
			`null`:      domain.IDUnset,
			`7`:         domain.IDPersisted,
			`"7"`:       domain.IDPersisted,
			`"new-abc"`: domain.IDPending,
			`""`:        domain.IDUnset,
		}
		for raw, kind := range cases {
			var id domain.ItemID
			require.NoError(t, json.Unmarshal([]byte(raw), &id), raw)
			assert.Equal(t, kind, id.Kind(), raw)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var id domain.ItemID
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
		assert.Error(t, json.Unmarshal([]byte(`"new-"`), &id))
	})
}

func TestItemIDWire(t *testing.T) {
	assert.Nil(t, domain.NewPendingID().Wire())
	assert.Nil(t, domain.ItemID{}.Wire())

	wire := domain.PersistedID(9).Wire()
	require.NotNil(t, wire)
	assert.Equal(t, int64(9), *wire)
}

func TestPendingIDsAreUnique(t *testing.T) {
	seen := map[domain.ItemID]bool{}
	for i := 0; i < 100; i++ {
		id := domain.NewPendingID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
