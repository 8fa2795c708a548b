// Package serialization decodes schema sources and message documents into the
// tree of maps, slices and scalars the schema package validates.
//
// Documents are tried as JSON first and fall back to YAML, so a schema file can
// be authored in either encoding and yield the same in-memory shape.
package serialization
