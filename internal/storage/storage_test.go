package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("http://localhost:8090/covers")

	_, err := s.URL(ctx, "covers/b1.png")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "covers/b1.png", "image/png", strings.NewReader("png-bytes")))

	url, err := s.URL(ctx, "covers/b1.png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090/covers/covers/b1.png", url)

	r, contentType, err := s.Open("covers/b1.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(r)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, s.Delete(ctx, "covers/b1.png"))
	_, _, err = s.Open("covers/b1.png")
	assert.ErrorIs(t, err, ErrNotFound)
}
