package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/secondbrain/core"
)

// Key prefixes for different data types
const (
	notePrefix     = "note:"
	noteDatePrefix = "notedt:"
	noteTagPrefix  = "notetag:"
	noteIDSeq      = "noteseq"

	vectorPrefix  = "vec:"
	vectorDimsKey = "vecdims"

	storeIdentityKey = "storeid"
)

// tagTerminator separates the tag from the note id in tag index keys, so
// that the tag "go" does not match keys of the tag "golang".
const tagTerminator = 0x00

// makeIDKey appends id to prefix in BigEndian order so lexicographic
// iteration follows numeric id order.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// idFromKey extracts the trailing BigEndian id of a key.
func idFromKey(key []byte) core.ID {
	if len(key) < 8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeNoteKey generates a key for a note by ID.
func makeNoteKey(id core.ID) []byte {
	return makeIDKey(notePrefix, id)
}

// makeVectorKey generates a key for a vector record by ID.
func makeVectorKey(id core.ID) []byte {
	return makeIDKey(vectorPrefix, id)
}

// makeNoteDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeNoteDateKey(timestamp time.Time, id core.ID) []byte {
	buf := make([]byte, len(noteDatePrefix)+16) // 8 bytes for timestamp + 8 bytes for ID
	offset := copy(buf, noteDatePrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialNoteDateKey generates a partial key for date seeks.
// Format: prefix:timestamp
func makePartialNoteDateKey(timestamp time.Time) []byte {
	buf := make([]byte, len(noteDatePrefix)+8)
	offset := copy(buf, noteDatePrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makePartialNoteTagKey generates the prefix shared by all entries of a tag.
// Format: prefix:tag\x00
func makePartialNoteTagKey(tag string) []byte {
	buf := make([]byte, len(noteTagPrefix)+len(tag)+1)
	offset := copy(buf, noteTagPrefix)
	offset += copy(buf[offset:], tag)
	buf[offset] = tagTerminator
	return buf
}

// makeNoteTagKey generates a composite key for the tag index.
// Format: prefix:tag\x00id
func makeNoteTagKey(tag string, id core.ID) []byte {
	partial := makePartialNoteTagKey(tag)
	buf := make([]byte, len(partial)+8)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
