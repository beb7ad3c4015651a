// Package index implements the packed offset/length index of a string table.
//
// Entries are stored interleaved as [offset][length] in little-endian order
// with widths chosen by package width. Decoding never requires alignment, so
// an Index can view bytes straight out of a serialized table or a memory map.
package index
