package media

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePhoto(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0}
	encoded := base64.StdEncoding.EncodeToString(raw)

	t.Run("bare base64", func(t *testing.T) {
		got, contentType, err := DecodePhoto(encoded)
		require.NoError(t, err)
		assert.Equal(t, raw, got)
		assert.Empty(t, contentType)
	})

	t.Run("data URI", func(t *testing.T) {
		got, contentType, err := DecodePhoto("data:image/png;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, raw, got)
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("malformed data URI", func(t *testing.T) {
		_, _, err := DecodePhoto("data:image/png," + encoded)
		assert.Error(t, err)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, _, err := DecodePhoto("not-!!-base64")
		assert.Error(t, err)
	})

	t.Run("empty payload", func(t *testing.T) {
		_, _, err := DecodePhoto("")
		assert.Error(t, err)
	})
}
