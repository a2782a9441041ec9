// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"

	"github.com/poiesic/grocer/core"
)

// MarshalKnowledgeRecord serializes a KnowledgeRecord to bytes.
func MarshalKnowledgeRecord(record *core.KnowledgeRecord) []byte {
	buf := make([]byte, core.KnowledgeRecordMUS.Size(*record))
	core.KnowledgeRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalKnowledgeRecord deserializes a KnowledgeRecord from bytes.
func UnmarshalKnowledgeRecord(data []byte) (*core.KnowledgeRecord, error) {
	record, _, err := core.KnowledgeRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: knowledge record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalEntry serializes a GroceryEntry to bytes.
func MarshalEntry(entry *core.GroceryEntry) []byte {
	buf := make([]byte, core.GroceryEntryMUS.Size(*entry))
	core.GroceryEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEntry deserializes a GroceryEntry from bytes.
func UnmarshalEntry(data []byte) (*core.GroceryEntry, error) {
	entry, _, err := core.GroceryEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: entry: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
