package atom

import (
	"fmt"
	"hash/crc32"
)

func HashOrNumber(key interface{}) (value uint32) {
	switch k := key.(type) {
	case uint8:
		return uint32(k)
	case uint16:
		return uint32(k)
	case uint32:
		return k
	case uint64:
		return uint32(k)
	case uint:
		return uint32(k)
	case int8:
		return uint32(k)
	case int16:
		return uint32(k)
	case int32:
		return uint32(k)
	case int64:
		return uint32(k)
	case int:
		return uint32(k)
	case CanHash:
		return k.HashCode()
	case string:
		return crc32.ChecksumIEEE([]byte(k))
	case []byte:
		return crc32.ChecksumIEEE(k)
	}

	return crc32.ChecksumIEEE([]byte(fmt.Sprintln(key)))
}
