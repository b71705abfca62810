package cache

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

const (
	indexFile = "cache.index"

	// blob layout: magic, channels u16, sample rate u32, sample count u32,
	// then float32 LE samples.
	blobMagic      = "VBX1"
	blobHeaderSize = 14
)

// DiskCache is the L2 cache. Buffers are stored one file per key,
// compressed with zstd, and evicted least recently used first once the
// configured capacity is exceeded.
type DiskCache struct {
	basePath string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskCacheEntry

	mu     sync.RWMutex
	closed bool

	stats CacheStats
}

// diskCacheEntry represents an entry in the disk cache index
type diskCacheEntry struct {
	Key          string
	FilePath     string
	Size         int64 // Size on disk (compressed)
	OriginalSize int64
	Timestamp    time.Time
	LastAccess   time.Time
	Hits         int64
}

// NewDiskCache opens (or creates) the disk cache described by config.
func NewDiskCache(config DiskConfig) (*DiskCache, error) {
	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		basePath: config.Path,
		capacity: config.Capacity,
		index:    make(map[string]*diskCacheEntry),
		stats:    CacheStats{Capacity: config.Capacity},
	}

	var err error
	dc.encoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(config.CompressionLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dc.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	if err := dc.loadIndex(); err != nil {
		// Non-fatal: start over with an empty index
		dc.index = make(map[string]*diskCacheEntry)
	}
	dc.calculateSize()

	if config.MaxAge > 0 {
		dc.RemoveOlderThan(time.Now().Add(-config.MaxAge))
	}

	return dc, nil
}

// Get retrieves a buffer from the disk cache. Unreadable or corrupt entries
// are dropped and reported as misses.
func (dc *DiskCache) Get(key string) (*audio.Buffer, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok || dc.closed {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.FilePath)
	if err == nil {
		data, err = dc.decoder.DecodeAll(data, nil)
	}
	var buf *audio.Buffer
	if err == nil {
		buf, err = unmarshalBuffer(data)
	}
	if err != nil {
		dc.removeEntry(key, entry)
		dc.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.Hits++

	dc.stats.Hits++
	dc.stats.LastAccess = entry.LastAccess

	return buf, true
}

// Put stores buf under key, replacing any previous entry.
func (dc *DiskCache) Put(key string, buf *audio.Buffer) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return ErrClosed
	}

	raw := marshalBuffer(buf)
	compressed := dc.encoder.EncodeAll(raw, nil)
	diskSize := int64(len(compressed))

	if existing, ok := dc.index[key]; ok {
		dc.removeEntry(key, existing)
	}

	if diskSize > dc.capacity {
		return ErrItemTooLarge
	}

	for dc.size+diskSize > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	filePath := filepath.Join(dc.basePath, key+".zst")
	if err := writeFileAtomic(filePath, compressed); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	dc.index[key] = &diskCacheEntry{
		Key:          key,
		FilePath:     filePath,
		Size:         diskSize,
		OriginalSize: int64(len(raw)),
		Timestamp:    now,
		LastAccess:   now,
	}
	dc.size += diskSize

	return nil
}

// Contains checks if a key exists in the cache without updating access time.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	_, ok := dc.index[key]
	return ok
}

// Clear removes all entries from the disk cache.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for _, entry := range dc.index {
		os.Remove(entry.FilePath)
	}
	dc.index = make(map[string]*diskCacheEntry)
	dc.size = 0

	return dc.saveIndex()
}

// Size returns the current cache size in bytes.
func (dc *DiskCache) Size() int64 {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	return dc.size
}

// Stats returns cache statistics.
func (dc *DiskCache) Stats() CacheStats {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	stats := dc.stats
	stats.Size = dc.size
	stats.ItemCount = int64(len(dc.index))
	stats.calculateHitRate()
	return stats
}

// RemoveOlderThan removes entries stored before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.index {
		if entry.Timestamp.Before(cutoff) {
			dc.removeEntry(key, entry)
			removed++
		}
	}
	return removed
}

// Close saves the index and releases the zstd coders. Further Puts fail and
// Gets miss.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return nil
	}
	dc.closed = true

	err := dc.saveIndex()
	dc.encoder.Close()
	dc.decoder.Close()
	return err
}

func (dc *DiskCache) removeEntry(key string, entry *diskCacheEntry) {
	os.Remove(entry.FilePath)
	dc.size -= entry.Size
	delete(dc.index, key)
}

func (dc *DiskCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range dc.index {
		if oldestKey == "" || entry.LastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccess
		}
	}

	if oldestKey != "" {
		dc.removeEntry(oldestKey, dc.index[oldestKey])
		dc.stats.Evictions++
	}
}

func (dc *DiskCache) loadIndex() error {
	file, err := os.Open(filepath.Join(dc.basePath, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&dc.index); err != nil {
		return err
	}

	// Drop entries whose files went missing behind our back.
	for key, entry := range dc.index {
		if _, err := os.Stat(entry.FilePath); err != nil {
			delete(dc.index, key)
		}
	}
	return nil
}

func (dc *DiskCache) saveIndex() error {
	indexPath := filepath.Join(dc.basePath, indexFile)
	tempPath := indexPath + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	err = gob.NewEncoder(file).Encode(dc.index)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	return os.Rename(tempPath, indexPath)
}

func (dc *DiskCache) calculateSize() {
	dc.size = 0
	for _, entry := range dc.index {
		dc.size += entry.Size
	}
}

// writeFileAtomic writes to a temp file first, then renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	return os.Rename(tempPath, path)
}

func marshalBuffer(buf *audio.Buffer) []byte {
	samples := buf.Samples()
	out := make([]byte, blobHeaderSize+len(samples)*4)
	copy(out, blobMagic)
	binary.LittleEndian.PutUint16(out[4:], uint16(buf.Channels()))
	binary.LittleEndian.PutUint32(out[6:], uint32(buf.SampleRate()))
	binary.LittleEndian.PutUint32(out[10:], uint32(len(samples)))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[blobHeaderSize+i*4:], math.Float32bits(s))
	}
	return out
}

func unmarshalBuffer(data []byte) (*audio.Buffer, error) {
	if len(data) < blobHeaderSize || string(data[:4]) != blobMagic {
		return nil, ErrCacheCorrupted
	}
	channels := int(binary.LittleEndian.Uint16(data[4:]))
	rate := int(binary.LittleEndian.Uint32(data[6:]))
	count := int(binary.LittleEndian.Uint32(data[10:]))
	if len(data)-blobHeaderSize != count*4 {
		return nil, ErrCacheCorrupted
	}

	samples := make([]float32, count)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[blobHeaderSize+i*4:]))
	}

	buf, err := audio.NewBuffer(samples, channels, rate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheCorrupted, err)
	}
	return buf, nil
}
