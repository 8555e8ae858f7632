// Package stream implements the framed record files used for rows, group
// dumps and assignment dumps.
//
// A stream starts with an 8-byte header (magic "MIXS", version uint32 LE),
// followed by records:
//
//	[Length uint32 LE] [CRC32C uint32 LE] [Payload: Length bytes]
//
// The checksum covers the payload. Streams may be wrapped in lz4 or zstd
// compression; the compression is chosen by file suffix (".lz4", ".zst").
package stream
