// Package jsonapi transcodes between JSON:API documents and flat,
// storage-agnostic records.
//
// The package is built around a Codec configured with per-type field
// schemas and a chain of reversible name inflectors. Decoding turns a
// wire document into one or many FlatRecord values (plain attributes
// plus relationship references); encoding reverses the transform. The
// structural rules mandated by the JSON:API specification, such as
// reserved field names and duplicate resource detection, are enforced
// identically on both paths.
//
// The core does no I/O and holds no mutable state after construction,
// so a Codec is safe for concurrent use across independent documents.
package jsonapi
