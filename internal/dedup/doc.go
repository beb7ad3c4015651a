// Package dedup provides the construction-time content lookup used to assign
// byte-identical strings the same id.
//
// The lookup is owned by a single builder and discarded when the table is
// frozen; frozen tables never consult it.
package dedup
