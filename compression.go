package kafka

import "github.com/harborstream/kafka/compress"

// Compression is an alias of the compress package type, re-exported so most
// programs only need to import this package.
type Compression = compress.Compression

const (
	Gzip   Compression = compress.Gzip
	Snappy Compression = compress.Snappy
	Lz4    Compression = compress.Lz4
	Zstd   Compression = compress.Zstd
)
