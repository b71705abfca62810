package cache

import (
	"errors"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the disk cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when a stored entry cannot be decoded
	ErrCacheCorrupted = errors.New("cache data corrupted")

	// ErrClosed is returned by a disk cache after Close
	ErrClosed = errors.New("cache is closed")
)

// CacheLevel represents the cache tier
type CacheLevel int

const (
	// CacheLevelL1 represents the memory cache
	CacheLevelL1 CacheLevel = iota

	// CacheLevelL2 represents the disk cache
	CacheLevelL2
)

// String returns the string representation of the cache level
func (l CacheLevel) String() string {
	switch l {
	case CacheLevelL1:
		return "L1-Memory"
	case CacheLevelL2:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// CacheStats holds cache performance metrics
type CacheStats struct {
	Capacity int64 // Maximum capacity in bytes, 0 when unbounded

	Size      int64 // Current size in bytes
	ItemCount int64 // Number of items in cache

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
}

func (s *CacheStats) calculateHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// DiskConfig configures the L2 disk cache.
type DiskConfig struct {
	Path             string        // Directory for cache files
	Capacity         int64         // Bytes on disk
	CompressionLevel int           // zstd level, 1-22
	MaxAge           time.Duration // Entries older than this are pruned on open; 0 keeps everything
}

// DefaultDiskConfig returns the default disk cache configuration.
func DefaultDiskConfig(path string) DiskConfig {
	return DiskConfig{
		Path:             path,
		Capacity:         256 * 1024 * 1024, // 256MB
		CompressionLevel: 3,
		MaxAge:           30 * 24 * time.Hour,
	}
}
