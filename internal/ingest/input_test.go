package ingest

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsov-agro/agroreport/internal/common"
)

func TestDecode(t *testing.T) {
	t.Run("valid envelope", func(t *testing.T) {
		data := []byte(`{"messages":[{"id":1,"date":"2025-04-12","payload":"Пахота зяби\nПо Пу 26/488"}]}`)
		batch, err := Decode(data)
		require.NoError(t, err)
		require.Len(t, batch.Messages, 1)
		assert.Equal(t, 1, batch.Messages[0].ID)
		assert.Equal(t, "2025-04-12", batch.Messages[0].Date)
		assert.Contains(t, batch.Messages[0].Payload, "По Пу")
	})

	t.Run("legacy reports key", func(t *testing.T) {
		data := []byte(`{"reports":[{"id":5,"payload":"Сев"}]}`)
		batch, err := Decode(data)
		require.NoError(t, err)
		require.Len(t, batch.Messages, 1)
		assert.Equal(t, 5, batch.Messages[0].ID)
	})

	t.Run("message date without iso shape rejected", func(t *testing.T) {
		data := []byte(`{"messages":[{"id":1,"date":"12.04.2025","payload":"x"}]}`)
		_, err := Decode(data)
		require.Error(t, err)

		var appErr *common.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "BATCH_INVALID", appErr.Code)
	})

	t.Run("missing payload rejected", func(t *testing.T) {
		data := []byte(`{"messages":[{"id":1,"date":"2025-04-12"}]}`)
		_, err := Decode(data)
		assert.Error(t, err)
	})

	t.Run("neither messages nor reports rejected", func(t *testing.T) {
		_, err := Decode([]byte(`{}`))
		assert.Error(t, err)
	})

	t.Run("duplicate message ids rejected", func(t *testing.T) {
		data := []byte(`{"messages":[{"id":1,"payload":"a"},{"id":1,"payload":"b"}]}`)
		_, err := Decode(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate message id")
	})

	t.Run("not json", func(t *testing.T) {
		_, err := Decode([]byte("Пахота зяби"))
		assert.Error(t, err)
	})

	t.Run("empty messages array is a valid empty batch", func(t *testing.T) {
		batch, err := Decode([]byte(`{"messages":[]}`))
		require.NoError(t, err)
		assert.Empty(t, batch.Messages)
	})
}

func TestLoad(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"messages":[{"id":1,"payload":"Сев"}]}`), 0o644))

		batch, err := Load(path, logger)
		require.NoError(t, err)
		assert.Len(t, batch.Messages, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"), logger)
		require.Error(t, err)

		var appErr *common.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "INPUT_READ", appErr.Code)
	})
}
