package badgerdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordCodec(t *testing.T) {
	now := time.Now().UnixNano()

	encoded, err := encodeRecord(&objectRecord{ModTimeNanos: now, Data: []byte("payload")})
	require.NoError(t, err)

	decoded, err := decodeRecord(encoded)
	require.NoError(t, err)
	require.Equal(t, now, decoded.ModTimeNanos)
	require.Equal(t, []byte("payload"), decoded.Data)
}

func TestRecordCodecEmptyData(t *testing.T) {
	encoded, err := encodeRecord(&objectRecord{ModTimeNanos: 0})
	require.NoError(t, err)

	decoded, err := decodeRecord(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded.Data)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decodeRecord([]byte{0x01})
	require.Error(t, err)
}

func TestObjectKeyNamespacing(t *testing.T) {
	// Locator and oid must not collide across the separator.
	a := objectKey("pool", "ab", "c")
	b := objectKey("pool", "a", "bc")
	require.NotEqual(t, a, b)
}
