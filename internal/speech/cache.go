package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/echosoul/echosoul/internal/logger"
)

// AudioCache is a two-tier (memory + disk) cache for synthesized
// audio, keyed by sha256(voice + ":" + text) so switching voices
// never serves stale audio.
//
// The on-disk layer is always read when a cacheDir is configured;
// diskWrite only gates whether new entries are persisted. Replies in
// this client rarely repeat verbatim, so the disk layer mostly earns
// its keep on meta notices spoken every session.
type AudioCache struct {
	mu        sync.RWMutex
	entries   map[string][]byte // key -> WAV bytes
	log       *logger.Logger
	voice     string
	cacheDir  string // empty disables the disk layer
	diskWrite bool
}

// NewAudioCache creates an audio cache for the given voice.
func NewAudioCache(voice, cacheDir string, diskWrite bool, log *logger.Logger) *AudioCache {
	c := &AudioCache{
		entries:   make(map[string][]byte),
		log:       log,
		voice:     voice,
		cacheDir:  cacheDir,
		diskWrite: diskWrite,
	}
	if cacheDir != "" && diskWrite {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			log.Error("cache: creating dir %s: %v", cacheDir, err)
		}
	}
	return c
}

// Get returns cached audio for the text, consulting memory then disk.
// A disk hit is promoted into memory.
func (c *AudioCache) Get(text string) ([]byte, bool) {
	key := c.key(text)

	c.mu.RLock()
	data, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.log.Debug("cache hit (mem): %s", truncate(text, 40))
		return data, true
	}

	if c.cacheDir != "" {
		if data, err := os.ReadFile(c.diskPath(key)); err == nil {
			c.mu.Lock()
			c.entries[key] = data
			c.mu.Unlock()
			c.log.Debug("cache hit (disk): %s", truncate(text, 40))
			return data, true
		}
	}
	return nil, false
}

// Put stores audio for the text in memory, and on disk when enabled.
func (c *AudioCache) Put(text string, audio []byte) {
	key := c.key(text)

	c.mu.Lock()
	c.entries[key] = audio
	c.mu.Unlock()

	if c.cacheDir != "" && c.diskWrite {
		path := c.diskPath(key)
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			c.log.Error("cache: disk write %s: %v", path, err)
		}
	}
}

// Has reports whether audio for the text is cached in either tier.
func (c *AudioCache) Has(text string) bool {
	key := c.key(text)

	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return true
	}
	if c.cacheDir == "" {
		return false
	}
	_, err := os.Stat(c.diskPath(key))
	return err == nil
}

// Len returns the number of in-memory entries.
func (c *AudioCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *AudioCache) key(text string) string {
	h := sha256.Sum256([]byte(c.voice + ":" + text))
	return hex.EncodeToString(h[:])
}

func (c *AudioCache) diskPath(key string) string {
	return filepath.Join(c.cacheDir, key+".wav")
}
