package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectedFailureLeavesDataUntouched(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, map[string][]byte{"k": []byte("1")}))

	s.FailWrites(true)
	err := s.Set(ctx, map[string][]byte{"k": []byte("2")})
	assert.True(t, errors.Is(err, ErrInjected))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got["k"]))
	assert.Equal(t, 1, s.Writes())

	s.FailWrites(false)
	require.NoError(t, s.Set(ctx, map[string][]byte{"k": []byte("2")}))
	raw, ok := s.Raw("k")
	assert.True(t, ok)
	assert.Equal(t, "2", string(raw))
}
