// Package hash holds the CRC32-Castagnoli helpers shared by the record
// stream format and the S3 blob store.
//
// Stream records carry the checksum of their payload:
//
//	sum := hash.CRC32C(payload)
//
// Uploads checksum whole objects incrementally:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk)
//	header := hash.EncodeCRC32C(h.Sum32())
package hash
