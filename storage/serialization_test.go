package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/poiesic/secondbrain/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalNote(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		note *core.Note
	}{
		{
			name: "full note",
			note: &core.Note{
				Id:          1,
				Problem:     "How to undo the last git commit",
				Solution:    "git reset --soft HEAD~1",
				Explanation: "Keeps the changes staged",
				Tags:        []string{"git", "undo"},
				CreatedAt:   now,
			},
		},
		{
			name: "unicode and multiline solution",
			note: &core.Note{
				Id:          2,
				Problem:     "Vấn đề",
				Solution:    "for i in range(3):\n    print(i)\n",
				Explanation: "Giải thích",
				Tags:        []string{},
				CreatedAt:   now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalNote(tt.note)
			decoded, err := UnmarshalNote(data)
			require.NoError(t, err)
			assert.Equal(t, tt.note, decoded)
		})
	}
}

func TestUnmarshalNote_Truncated(t *testing.T) {
	data := MarshalNote(&core.Note{Id: 1, Problem: "p", Solution: "s", Explanation: "e", Tags: []string{}})
	_, err := UnmarshalNote(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalVectorRecord(t *testing.T) {
	rec := &core.VectorRecord{Id: 9, Fingerprint: 12345, Vector: []float32{0.1, 0.2, 0.3}}
	decoded, err := UnmarshalVectorRecord(MarshalVectorRecord(rec))
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil))

	raw := errors.New("disk on fire")
	wrapped := Wrap(raw)
	assert.ErrorIs(t, wrapped, ErrStorage)
	assert.ErrorIs(t, wrapped, raw)

	assert.Equal(t, ErrNotFound, Wrap(ErrNotFound))
	assert.Equal(t, ErrDuplicateKey, Wrap(ErrDuplicateKey))
	assert.ErrorIs(t, ErrDuplicateKey, core.ErrValidation)
	assert.ErrorIs(t, ErrCorrupt, ErrStorage)
}
