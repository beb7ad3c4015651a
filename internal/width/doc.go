// Package width selects the integer width used to encode index entries.
//
// The tier set is closed (u8, u16, u32, u64) and a selection is made once,
// when the final buffer size and longest string are known. All entries of an
// index share the same widths, so lookups never branch on a per-entry width.
package width
