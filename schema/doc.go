// Package schema validates hedwig messages against a versioned schema document.
//
// A schema document has a root id and a "schemas" mapping from message type to
// a mapping of semantic version to JSON Schema (Draft 4):
//
//	id: https://hedwig.example/schema#
//	schemas:
//	  user.created:
//	    "1.0":
//	      type: object
//	      required: [id, name]
//	      properties:
//	        id: {type: string, format: human-uuid}
//	        name: {type: string}
//
// Loading checks the document once and fails with a *contracts.SchemaError
// listing every issue: missing keys, malformed version strings, uncompilable
// schemas and (message type, major version) pairs required by the routing table
// that have no schema.
//
// Basic usage:
//
//	doc, err := schema.LoadDocumentFile("schema.yaml", routes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	validator, _ := schema.NewMessageValidator(doc)
//
//	err = validator.ValidateMessage("https://hedwig.example/schema#/schemas/user.created/1.0", payload)
//	if err != nil {
//	    log.Printf("Validation failed: %v", err)
//	}
//
// Validation never stops at the first problem: a *contracts.ValidationError
// carries every violation found in the payload. Custom string formats are added
// through a FormatRegistry before the document is loaded; unknown formats are
// not enforced.
package schema
