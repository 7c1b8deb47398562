package kafka

import "hash/crc32"

func crcOf(b []byte) int32 {
	return int32(crc32.ChecksumIEEE(b))
}
