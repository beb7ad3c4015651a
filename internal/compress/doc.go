// Package compress implements the checksummed compression envelope used when
// tables are written to blob storage.
//
// Envelope layout (little-endian):
//
//	[magic "STZ1"][codec u8][crc32c u32][raw length u64][payload]
//
// The checksum covers the decoded bytes. Codecs are LZ4 block compression and
// Zstandard; payloads that do not shrink by at least 10% are stored as-is.
package compress
