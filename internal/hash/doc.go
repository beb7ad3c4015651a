// Package hash provides the checksum used by compressed table envelopes.
//
// All checksums use CRC32-Castagnoli (CRC32C), which Go's hash/crc32
// computes with SSE4.2 or the ARM CRC extension when available.
//
//	sum := hash.CRC32C(raw)
//
//	h := hash.NewCRC32C()
//	h.Write(header)
//	h.Write(payload)
//	sum = h.Sum32()
package hash
