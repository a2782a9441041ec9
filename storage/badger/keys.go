package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/grocer/core"
)

// Key prefixes for different data types
const (
	knowledgePrefix  = "knorec"
	entryPrefix      = "entrec"
	entryOrderPrefix = "entord"
	entryPositionSeq = "entposseq"
)

// makeKnowledgeKey generates a key for a knowledge record from its normalized name.
// The stored record carries the full name, which readers compare on lookup.
func makeKnowledgeKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%d", knowledgePrefix, core.IDFromContent(name)))
}

// makeEntryKey generates a key for an entry by ID.
func makeEntryKey(id string) []byte {
	return []byte(entryPrefix + ":" + id)
}

// makeEntryOrderKey generates a key for the position index.
// Format: prefix:position
func makeEntryOrderKey(position uint64) []byte {
	prefix := []byte(entryOrderPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], position)
	return buf
}

func prefixOf(p string) []byte {
	return []byte(p + ":")
}
