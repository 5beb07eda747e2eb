package datadir

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/OpenTraceLab/swmc/pkg/microcontroller"
)

// Entry describes one saved microcontroller
type Entry struct {
	Name    string // file name, including .xml
	Size    int64
	ModTime time.Time
	Sum     [32]byte // blake3 of the file content
}

// Fingerprint is the hex form of Sum
func (e Entry) Fingerprint() string {
	return hex.EncodeToString(e.Sum[:])
}

// Library knows how to list and load saved microcontrollers.
type Library interface {
	List() ([]Entry, error)
	Load(name string) (string, error)
}

// DirLibrary is a Library backed by a folder of .xml files. Fingerprints are
// cached by name, size and modification time.
type DirLibrary struct {
	root string

	mu    sync.RWMutex
	cache map[string]Entry
}

// NewDirLibrary opens the folder at root
func NewDirLibrary(root string) *DirLibrary {
	return &DirLibrary{root: root, cache: make(map[string]Entry)}
}

// Root returns the folder the library reads
func (l *DirLibrary) Root() string { return l.root }

// List implements the Library interface. Entries are sorted by name.
func (l *DirLibrary) List() ([]Entry, error) {
	dirents, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("datadir: list %s: %w", l.root, err)
	}

	var entries []Entry
	for _, d := range dirents {
		if d.IsDir() || !isMicrocontrollerFile(d.Name()) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("datadir: stat %s: %w", d.Name(), err)
		}
		entry, err := l.entry(d.Name(), info)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (l *DirLibrary) entry(name string, info os.FileInfo) (Entry, error) {
	l.mu.RLock()
	cached, ok := l.cache[name]
	l.mu.RUnlock()
	if ok && cached.Size == info.Size() && cached.ModTime.Equal(info.ModTime()) {
		return cached, nil
	}

	data, err := os.ReadFile(filepath.Join(l.root, name))
	if err != nil {
		return Entry{}, fmt.Errorf("datadir: read %s: %w", name, err)
	}
	entry := Entry{Name: name, Size: info.Size(), ModTime: info.ModTime(), Sum: blake3.Sum256(data)}

	l.mu.Lock()
	l.cache[name] = entry
	l.mu.Unlock()
	return entry, nil
}

// Load implements the Library interface. The name may omit the .xml suffix.
func (l *DirLibrary) Load(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("datadir: invalid name %q", name)
	}
	if !isMicrocontrollerFile(name) {
		name += ".xml"
	}
	data, err := os.ReadFile(filepath.Join(l.root, name))
	if err != nil {
		return "", fmt.Errorf("datadir: load %s: %w", name, err)
	}
	return string(data), nil
}

// Open loads and parses one microcontroller from a library
func Open(lib Library, name string, opts ...microcontroller.ParseOption) (*microcontroller.Microcontroller, error) {
	text, err := lib.Load(name)
	if err != nil {
		return nil, err
	}
	mc, err := microcontroller.Parse(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadir: parse %s: %w", name, err)
	}
	return mc, nil
}

func isMicrocontrollerFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xml")
}
