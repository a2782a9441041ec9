// Package knowledge owns the persistent cache of learned item knowledge.
//
// Store is a read-through cache in front of a storage.KnowledgeRepository.
// Reads are served from memory once a name has been seen. Upserts overwrite
// every field and always win, whatever the previous record's source was.
// Writers to one name are serialized; writers to different names and all
// readers proceed in parallel.
//
// Store also tracks which names have background enrichment in flight and can
// load seed knowledge from YAML.
package knowledge
