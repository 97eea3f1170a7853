package operation

import (
	"encoding/binary"
	"fmt"
)

const (

	// codes for special database markers
	codeFinalizedEpoch = 1

	// codes for committee state per epoch
	codeCommittee   = 10
	codePerformance = 11
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
