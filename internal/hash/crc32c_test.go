package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Check value from RFC 3720 (iSCSI), 32 bytes of zeros.
	assert.Equal(t, uint32(0x8a9136aa), CRC32C(make([]byte, 32)))
	assert.Equal(t, uint32(0), CRC32C(nil))

	h := NewCRC32C()
	_, _ = h.Write([]byte("catdog"))
	_, _ = h.Write([]byte("bird"))
	assert.Equal(t, CRC32C([]byte("catdogbird")), h.Sum32())
}
