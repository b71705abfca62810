package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

func testBuffer(t *testing.T, n int) *audio.Buffer {
	t.Helper()
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(i%200)/100 - 1
	}
	buf, err := audio.NewBuffer(samples, 1, 22050)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello there.", "hello there."},
		{"  Hello   there. ", "hello there."},
		{"HELLO\tTHERE.\n", "hello there."},
		{"ﬁne", "fine"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	base := Key("Hello there.", 1.0)

	if len(base) != 64 {
		t.Errorf("expected hex sha256, got %q", base)
	}
	if Key("  hello THERE. ", 1.0) != base {
		t.Error("normalized variants should share a key")
	}
	if Key("Hello there.", 1.04) != base {
		t.Error("speeds rounding to the same tenth should share a key")
	}
	if Key("Hello there.", 1.5) == base {
		t.Error("different speeds must not share a key")
	}
	if Key("Hello there!", 1.0) == base {
		t.Error("different text must not share a key")
	}
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	c := NewMemoryCache()
	buf := testBuffer(t, 100)

	if _, ok := c.Get("k"); ok {
		t.Fatal("empty cache returned a hit")
	}

	c.Put("k", buf)
	got, ok := c.Get("k")
	if !ok || got != buf {
		t.Fatal("Get did not return the stored buffer")
	}
	if !c.Contains("k") || c.Len() != 1 {
		t.Error("Contains/Len mismatch")
	}
	if c.Size() != buf.SizeBytes() {
		t.Errorf("Size mismatch: got %d, want %d", c.Size(), buf.SizeBytes())
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.HitRate != 0.5 {
		t.Errorf("unexpected stats %+v", stats)
	}

	c.Delete("k")
	if c.Contains("k") || c.Size() != 0 {
		t.Error("Delete left the entry behind")
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := NewMemoryCache()
	first := testBuffer(t, 100)
	second := testBuffer(t, 300)

	c.Put("k", first)
	c.Put("k", second)

	got, _ := c.Get("k")
	if got != second {
		t.Error("second writer should win")
	}
	if c.Len() != 1 || c.Size() != second.SizeBytes() {
		t.Errorf("expected one entry of %d bytes, got %d entries, %d bytes", second.SizeBytes(), c.Len(), c.Size())
	}

	c.Clear()
	if c.Len() != 0 || c.Size() != 0 {
		t.Error("Clear left entries behind")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache()
	buf := testBuffer(t, 10)
	c.Put("shared", buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got, ok := c.Get("shared"); !ok || got != buf {
					t.Error("concurrent read failed")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func newDisk(t *testing.T, dir string) *DiskCache {
	t.Helper()
	dc, err := NewDiskCache(DefaultDiskConfig(dir))
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	return dc
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	buf := testBuffer(t, 4000)
	key := Key("Hello there.", 1.0)

	dc := newDisk(t, dir)
	if err := dc.Put(key, buf); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if dc.Size() >= buf.SizeBytes() {
		t.Errorf("expected compression, %d bytes on disk for %d raw", dc.Size(), buf.SizeBytes())
	}
	if err := dc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen to read from the persisted index.
	dc = newDisk(t, dir)
	defer dc.Close()

	got, ok := dc.Get(key)
	if !ok {
		t.Fatal("entry missing after reopen")
	}
	if got.Len() != buf.Len() || got.SampleRate() != 22050 || got.Channels() != 1 {
		t.Fatalf("got %d samples @ %d Hz", got.Len(), got.SampleRate())
	}
	for i := 0; i < buf.Len(); i++ {
		if got.Sample(i) != buf.Sample(i) {
			t.Fatalf("sample %d: got %f, want %f", i, got.Sample(i), buf.Sample(i))
		}
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dc := newDisk(t, t.TempDir())
	defer dc.Close()

	if err := dc.Put("k", testBuffer(t, 100)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dc.index["k"].FilePath, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := dc.Get("k"); ok {
		t.Fatal("corrupt entry returned a hit")
	}
	if dc.Contains("k") {
		t.Error("corrupt entry should be dropped from the index")
	}
}

func TestDiskCache_Eviction(t *testing.T) {
	cfg := DefaultDiskConfig(t.TempDir())
	cfg.CompressionLevel = 1
	dc, err := NewDiskCache(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	if err := dc.Put("a", testBuffer(t, 1000)); err != nil {
		t.Fatal(err)
	}
	dc.capacity = dc.Size() + 1

	time.Sleep(time.Millisecond)
	if err := dc.Put("b", testBuffer(t, 1000)); err != nil {
		t.Fatal(err)
	}
	if dc.Contains("a") || !dc.Contains("b") {
		t.Error("oldest entry should have been evicted")
	}
	if dc.Stats().Evictions != 1 {
		t.Errorf("expected one eviction, got %d", dc.Stats().Evictions)
	}

	dc.capacity = 1
	if err := dc.Put("c", testBuffer(t, 1000)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("expected ErrItemTooLarge, got %v", err)
	}
}

func TestDiskCache_Closed(t *testing.T) {
	dc := newDisk(t, t.TempDir())
	if err := dc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dc.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if err := dc.Put("k", testBuffer(t, 10)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestDiskCache_RemoveOlderThan(t *testing.T) {
	dc := newDisk(t, t.TempDir())
	defer dc.Close()

	_ = dc.Put("old", testBuffer(t, 10))
	if n := dc.RemoveOlderThan(time.Now().Add(time.Hour)); n != 1 {
		t.Errorf("expected 1 removal, got %d", n)
	}
	if dc.Size() != 0 {
		t.Errorf("size should be zero, got %d", dc.Size())
	}
}

func TestManager_Promotion(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultDiskConfig(filepath.Join(dir, "audio"))
	buf := testBuffer(t, 500)

	m, err := NewManager(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Put("k", buf); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	m, err = NewManager(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if m.Contains("k") {
		t.Fatal("memory should start empty")
	}
	if _, level, ok := m.Get("k"); !ok || level != CacheLevelL2 {
		t.Fatalf("expected L2 hit, got ok=%v level=%v", ok, level)
	}
	if _, level, ok := m.Get("k"); !ok || level != CacheLevelL1 {
		t.Fatalf("expected promoted L1 hit, got ok=%v level=%v", ok, level)
	}

	stats := m.Stats()
	if stats.L1Hits != 1 || stats.L2Hits != 1 || stats.Promotions != 1 || !stats.DiskEnabled {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestManager_MemoryOnly(t *testing.T) {
	m, err := NewManager(nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, ok := m.Get("k"); ok {
		t.Fatal("unexpected hit")
	}
	if err := m.Put("k", testBuffer(t, 10)); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", m.Len())
	}

	m.ClearMemory()
	if m.Len() != 0 {
		t.Error("ClearMemory left entries")
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}
