package constants

// Hash algorithm names
const (
	HashAlgorithmSHA256   = "sha256"
	HashAlgorithmSHA1     = "sha1"
	HashAlgorithmMD5      = "md5"
	HashAlgorithmBlake3   = "blake3"
	HashAlgorithmXXHash64 = "xxhash64"
)

// Compression algorithm names
const (
	CompressionTypeNone = "none"
	CompressionTypeGzip = "gzip"
	CompressionTypeZstd = "zstd"
	CompressionTypeLZ4  = "lz4"
)

// Chunking strategy names
const (
	ChunkingStrategyFixed       = "fixed"
	ChunkingStrategyContent     = "content_defined"
	ChunkingStrategyFormatAware = "format_aware"
)

// Chunking defaults
const (
	DefaultWindowSize     = 64
	DefaultMinChunkSize   = 1024
	DefaultMaxChunkSize   = 1024 * 1024
	DefaultBoundaryMask   = 0xFFF // ~4KB average chunks
	DefaultFixedBlockSize = 64 * 1024
)

// Storage limits
const (
	// CompressionThreshold is the minimum payload size worth compressing.
	CompressionThreshold = 1024

	// MaxDecompressionSize caps decompressed output to guard against
	// decompression bombs (1 GiB).
	MaxDecompressionSize = 1 << 30
)

// File permissions
const (
	SecureDirPerms    = 0o700 // Owner read/write/execute only
	SecureFilePerms   = 0o600 // Owner read/write only
	StandardDirPerms  = 0o755 // Standard directory permissions
	StandardFilePerms = 0o644 // Standard file permissions
)

// Vault layout
const (
	VaultDirName     = ".stillsuit"
	VaultConfigName  = "vault.yaml"
	ChunksDirName    = "chunks"
	ChunkMetaDirName = "metadata"
	RefsDirName      = "refs"
	SnapshotsDirName = "snapshots"
	IndexesDirName   = "indexes"
)
