package pmtiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUvarintRoundtrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40, ^uint64(0)}
	for _, v := range values {
		buf := appendUvarint(nil, v)
		got, err := readUvarint(&byteSliceReader{buf: buf})
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestUvarintMinimalLength(t *testing.T) {
	buf := appendUvarint(nil, 1)
	assert.Len(t, buf, 1)
}

func TestUvarintUnexpectedEOF(t *testing.T) {
	buf := appendUvarint(nil, 1<<20)
	truncated := buf[:len(buf)-1]
	_, err := readUvarint(&byteSliceReader{buf: truncated})
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestUvarintOverflow(t *testing.T) {
	// Nine continuation bytes followed by a tenth, final byte whose value
	// can't fit in the remaining bit budget for a 64-bit integer.
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}
	_, err := readUvarint(&byteSliceReader{buf: buf})
	assert.ErrorIs(t, err, ErrVarintOverflow)
}
