package reqctx

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	ctx, r := Start(context.Background(), "https://shop.test/p/1")

	assert.Len(t, r.ID, 16)
	assert.Equal(t, "https://shop.test/p/1", r.URL)
	assert.Same(t, r, From(ctx))

	_, other := Start(context.Background(), "https://shop.test/p/1")
	assert.NotEqual(t, r.ID, other.ID)
}

func TestFrom_Unknown(t *testing.T) {
	r := From(context.Background())
	assert.Equal(t, "unknown", r.ID)
	assert.Empty(t, r.URL)
}

func TestWrap(t *testing.T) {
	ctx, r := Start(context.Background(), "https://shop.test/p/1")
	base := errors.New("connection refused")

	err := Wrap(ctx, base)
	require.Error(t, err)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), r.ID)
	assert.Contains(t, err.Error(), "https://shop.test/p/1")

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, r.ID, rerr.RequestID)

	assert.NoError(t, Wrap(ctx, nil))
}

func TestFields(t *testing.T) {
	var buf bytes.Buffer
	_, r := Start(context.Background(), "https://shop.test/p/1")

	logger := r.Fields(zerolog.New(&buf).With()).Logger()
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"request_id":"`+r.ID+`"`)
	assert.Contains(t, buf.String(), `"url":"https://shop.test/p/1"`)
}
