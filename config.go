package quire

import "log/slog"

// DefaultMaxDocumentSize bounds the decompressed body (64MB).
const DefaultMaxDocumentSize = 64 * 1024 * 1024

// Config holds document and encoding options. Zero values select defaults.
type Config struct {
	Algorithm       int          // Checksum algorithm written by Save (default AlgXXHash3)
	Compression     int          // Body compression written by Save (default CompressZstd)
	MaxDocumentSize int          // Maximum decompressed body size accepted by Load
	Actor           ActorID      // Local actor for new ops (default NewActorID)
	Logger          *slog.Logger // Default slog.Default()
}

func (c Config) withDefaults() Config {
	if c.Algorithm == 0 {
		c.Algorithm = AlgXXHash3
	}
	if c.Compression == 0 {
		c.Compression = CompressZstd
	}
	if c.MaxDocumentSize == 0 {
		c.MaxDocumentSize = DefaultMaxDocumentSize
	}
	if c.Actor == UnknownActor {
		c.Actor = NewActorID()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
