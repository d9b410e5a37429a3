// Package persist saves and restores the parameters scene owners need to
// rebuild their ropes and cloths; particle state is never stored
package persist

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/drape/cloth"
	"github.com/lixenwraith/drape/rope"
)

// Version is written into every document
const Version = 1

// Lantern is a hanging lantern rope record
type Lantern struct {
	rope.Params
	Length float64 `toml:"length"`
}

// Ornament is a rope strung between two anchors
type Ornament struct {
	rope.Params
	WindTime float64 `toml:"wind_time"`
}

// Pillar is a beaded rope strung between two anchors
type Pillar struct {
	rope.Params
	BeadCount int   `toml:"bead_count"`
	ID        int64 `toml:"id"`
}

// Document is one saved scene
type Document struct {
	Version    int            `toml:"version"`
	Lanterns   []Lantern      `toml:"lantern"`
	Ornaments  []Ornament     `toml:"ornament"`
	Pillars    []Pillar       `toml:"pillar"`
	Tapestries []cloth.Params `toml:"tapestry"`
}

// Len returns the number of records across all kinds
func (d Document) Len() int {
	return len(d.Lanterns) + len(d.Ornaments) + len(d.Pillars) + len(d.Tapestries)
}

// Encode writes doc as TOML
func Encode(w io.Writer, doc Document) error {
	doc.Version = Version
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	return nil
}

// Decode reads a TOML document, rejecting newer versions
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("persist: decode: %w", err)
	}
	if doc.Version > Version {
		return Document{}, fmt.Errorf("persist: document version %d newer than supported %d", doc.Version, Version)
	}
	return doc, nil
}

// Manager handles save/load of scene documents under a base directory
type Manager struct {
	basePath string
}

// NewManager creates a manager with the given base directory
func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

// FilePath returns the path for a named scene
func (m *Manager) FilePath(name string) string {
	return filepath.Join(m.basePath, name+".toml")
}

// Exists checks if a scene file exists
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(m.FilePath(name))
	return err == nil
}

// Save writes doc to disk
func (m *Manager) Save(name string, doc Document) error {
	if err := os.MkdirAll(m.basePath, 0755); err != nil {
		return fmt.Errorf("persist: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}

	return os.WriteFile(m.FilePath(name), buf.Bytes(), 0644)
}

// Load reads a scene from disk
func (m *Manager) Load(name string) (Document, error) {
	f, err := os.Open(m.FilePath(name))
	if err != nil {
		return Document{}, fmt.Errorf("persist: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
