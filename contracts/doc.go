// Package contracts provides the core message types and error contracts for hedwig schema validation.
//
// This package defines:
//   - Message: the interface every validated message satisfies
//   - BaseMessage: the wire form of a hedwig message (id, schema, format_version, metadata, data)
//   - MessageRoute / RouteTable: the message routing table, which doubles as the set of
//     (message type, major version) pairs a deployment must be able to validate
//   - SchemaError and ValidationError: the two failure kinds reported by the schema package
//
// Messages are plain data; all validation lives in the schema package.
package contracts
