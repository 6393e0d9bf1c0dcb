// Package assets persists baked outline meshes and loads mesh sources.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/internal/logger"
	"github.com/Faultbox/midgard-outline/pkg/formats"
)

// OutlineSuffix is appended to the source name of a baked outline mesh.
const OutlineSuffix = "_Outline"

// OutlineExt is the file extension of baked outline meshes.
const OutlineExt = ".omsh"

// Store saves outline meshes under a directory. Each save moves the
// default directory to where the last file was written.
type Store struct {
	mu      sync.Mutex
	dir     string
	lastDir string

	cache *Cache
}

// NewStore creates a store that saves into dir until told otherwise.
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: NewCache(),
	}
}

// Dir returns the directory the next save goes to.
func (s *Store) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastDir != "" {
		return s.lastDir
	}
	return s.dir
}

// SetDir overrides the save directory, as a save dialog would.
func (s *Store) SetDir(dir string) {
	s.mu.Lock()
	s.lastDir = dir
	s.mu.Unlock()
}

// OutlinePath returns the path SaveOutlineMesh would use for sourceName.
func (s *Store) OutlinePath(sourceName string) string {
	return filepath.Join(s.Dir(), sourceName+OutlineSuffix+OutlineExt)
}

// SaveOutlineMesh writes m as <dir>/<sourceName>_Outline.omsh and
// returns the written path.
func (s *Store) SaveOutlineMesh(m *mesh.Mesh, sourceName string) (string, error) {
	if sourceName == "" {
		sourceName = strings.TrimSuffix(m.Name, OutlineSuffix)
	}
	path := s.OutlinePath(sourceName)
	// The file is about to change, so a failed save must not leave the
	// previous mesh cached under its path.
	s.cache.Invalidate(path)

	data, err := formats.EncodeOMSH(m)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", sourceName, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	s.mu.Lock()
	s.lastDir = dir
	s.mu.Unlock()
	s.cache.Set(path, m)

	logger.Debug("saved outline mesh",
		zap.String("path", path),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("bytes", len(data)),
	)
	return path, nil
}

// LoadOutlineMesh reads an outline mesh written by SaveOutlineMesh.
func (s *Store) LoadOutlineMesh(path string) (*mesh.Mesh, error) {
	if m, ok := s.cache.Get(path); ok {
		return m, nil
	}
	m, err := formats.LoadOMSH(path)
	if err != nil {
		return nil, err
	}
	s.cache.Set(path, m)
	return m, nil
}

// Cache returns the store's mesh cache.
func (s *Store) Cache() *Cache {
	return s.cache
}

// LoadMesh reads a source mesh, picking the decoder by extension.
func LoadMesh(path string) (*mesh.Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return formats.LoadOBJ(path)
	case OutlineExt:
		return formats.LoadOMSH(path)
	default:
		return nil, fmt.Errorf("unsupported mesh format %q: %s", ext, path)
	}
}

// Cache is a simple in-memory cache for loaded meshes.
type Cache struct {
	data map[string]*mesh.Mesh
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*mesh.Mesh),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*mesh.Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return m, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, m *mesh.Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = m
}

// Invalidate drops one entry, e.g. after the file changed on disk.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*mesh.Mesh)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
