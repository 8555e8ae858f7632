package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Count  uint32            `json:"count"`
	Counts map[uint32]uint32 `json:"counts"`
	Mean   float64           `json:"mean"`
}

func TestCodecs(t *testing.T) {
	in := record{Count: 3, Counts: map[uint32]uint32{7: 2, 1: 1}, Mean: 0.25}

	for _, name := range []string{"json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			b, err := c.Marshal(in)
			require.NoError(t, err)

			var out record
			require.NoError(t, c.Unmarshal(b, &out))
			assert.Equal(t, in, out)

			assert.Error(t, c.Unmarshal([]byte(`{"count":1,"bogus":2}`), &out))
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, Default.Name(), c.Name())

	_, err = ByName("msgpack")
	assert.Error(t, err)
}
