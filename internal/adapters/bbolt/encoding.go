// Binary encoding for keyword lists.
//
// Keyword lists are the dominant blob of a stored dictionary, so they are kept
// out of the JSON metadata and written as a compact length-prefixed list
// (little-endian):
//
//	keywordCount: uint32
//	per keyword:
//	  keyLen: uint16
//	  key:    [keyLen]byte
package bbolt

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeKeywords encodes keywords in the order given. A single buffer is
// pre-allocated to avoid repeated growth.
func encodeKeywords(keywords []string) ([]byte, error) {
	// Header: 4 bytes (keywordCount)
	// Per keyword: 2 (keyLen) + len(key)
	totalSize := 4
	for _, kw := range keywords {
		if len(kw) > math.MaxUint16 {
			return nil, fmt.Errorf("keyword too long: %d bytes", len(kw))
		}
		totalSize += 2 + len(kw)
	}

	buf := make([]byte, totalSize)
	offset := 0

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(keywords)))
	offset += 4

	for _, kw := range keywords {
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(kw)))
		offset += 2
		offset += copy(buf[offset:], kw)
	}

	return buf, nil
}

// decodeKeywords decodes a keyword list. Every read is bounds-checked to
// avoid panics on corrupt data.
func decodeKeywords(data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("keyword list too short: %d bytes", len(data))
	}

	offset := 0
	count := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	// Each keyword needs at least its 2-byte length.
	if uint64(count)*2 > uint64(len(data)-offset) {
		return nil, fmt.Errorf("keyword count %d exceeds data size %d", count, len(data))
	}

	keywords := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+2 > len(data) {
			return nil, fmt.Errorf("truncated at keyword %d length (offset %d)", i, offset)
		}
		keyLen := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2

		if offset+keyLen > len(data) {
			return nil, fmt.Errorf("truncated at keyword %d (offset %d, need %d)", i, offset, keyLen)
		}
		keywords = append(keywords, string(data[offset:offset+keyLen]))
		offset += keyLen
	}

	if offset != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after %d keywords", len(data)-offset, count)
	}
	return keywords, nil
}
