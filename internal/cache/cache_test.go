package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncode_StringAndJSON(t *testing.T) {
	it, err := Encode("a@x.com")
	require.NoError(t, err)
	require.False(t, it.IsJSON)
	require.Equal(t, "a@x.com", it.String())

	it, err = Encode(map[string]any{"token": "T1"})
	require.NoError(t, err)
	require.True(t, it.IsJSON)
	require.JSONEq(t, `{"token":"T1"}`, string(it.Raw))

	it, err = Encode(json.RawMessage(`{}`))
	require.NoError(t, err)
	require.True(t, it.IsEmptyObject())
}

func TestDecode_UsesNumber(t *testing.T) {
	it := &Item{IsJSON: true, Raw: []byte(`{"user_id":9,"online":true}`)}

	var m map[string]any
	require.NoError(t, it.Decode(&m))
	require.Equal(t, json.Number("9"), m["user_id"])
	require.Equal(t, true, m["online"])
}

func TestDecode_StringValue(t *testing.T) {
	it := &Item{Raw: []byte("a@x.com")}

	var s string
	require.NoError(t, it.Decode(&s))
	require.Equal(t, "a@x.com", s)

	var m map[string]any
	require.ErrorIs(t, it.Decode(&m), ErrNotJSON)
}

func TestExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	require.False(t, (&Item{}).Expired(now))
	require.False(t, (&Item{ExpiresAt: now.Unix() + 1}).Expired(now))
	require.True(t, (&Item{ExpiresAt: now.Unix()}).Expired(now))
	require.True(t, (&Item{ExpiresAt: now.Unix() - 5}).Expired(now))
}

func TestIsEmptyObject(t *testing.T) {
	require.True(t, (&Item{IsJSON: true, Raw: []byte(" {} ")}).IsEmptyObject())
	require.False(t, (&Item{IsJSON: true, Raw: []byte(`{"a":1}`)}).IsEmptyObject())
	require.False(t, (&Item{Raw: []byte("{}")}).IsEmptyObject())
}
