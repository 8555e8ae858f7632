package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// RFC 3720 check value.
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))

	h := NewCRC32C()
	_, _ = h.Write([]byte("12345"))
	_, _ = h.Write([]byte("6789"))
	assert.Equal(t, uint32(0xE3069283), h.Sum32())
}

func TestEncodeCRC32C(t *testing.T) {
	assert.Equal(t, "AAAAAA==", EncodeCRC32C(0))
	assert.Equal(t, "4waSgw==", EncodeCRC32C(0xE3069283))
}
