package game

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/emberduel/ember-server-go/internal/game/counters"
	"github.com/emberduel/ember-server-go/internal/game/rules"
)

// Journal records every event a fight publishes, in publish order. The
// recording can be stepped through for review and persisted to disk.
type Journal struct {
	FightID string

	mu      sync.RWMutex
	entries []rules.Event
	cursor  int
	handle  int
	bus     *rules.EventBus
}

// NewJournal creates an empty journal for a fight.
func NewJournal(fightID string) *Journal {
	return &Journal{FightID: fightID, handle: -1}
}

// Attach subscribes the journal to a fight's event bus.
func (j *Journal) Attach(fight *Fight) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.bus = fight.Bus()
	j.handle = j.bus.Subscribe(func(evt rules.Event) {
		j.mu.Lock()
		j.entries = append(j.entries, evt)
		j.mu.Unlock()
	})
}

// Detach stops recording.
func (j *Journal) Detach() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.bus != nil && j.handle >= 0 {
		j.bus.Unsubscribe(j.handle)
		j.handle = -1
	}
}

// Record appends an event directly, bypassing the bus.
func (j *Journal) Record(evt rules.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, evt)
}

// Size returns the number of recorded events.
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Start resets the review cursor to the beginning.
func (j *Journal) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cursor = 0
}

// Next returns the event under the cursor and advances, nil at the end.
func (j *Journal) Next() *rules.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cursor < len(j.entries) {
		evt := j.entries[j.cursor]
		j.cursor++
		return &evt
	}
	return nil
}

// Previous steps the cursor back and returns that event, nil at the start.
func (j *Journal) Previous() *rules.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cursor > 0 {
		j.cursor--
		evt := j.entries[j.cursor]
		return &evt
	}
	return nil
}

// EntryAt returns the event at an index, nil when out of range.
func (j *Journal) EntryAt(index int) *rules.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if index >= 0 && index < len(j.entries) {
		evt := j.entries[index]
		return &evt
	}
	return nil
}

// journalFile is the on-disk shape.
type journalFile struct {
	FightID string
	Entries []rules.Event
}

// SaveToFile writes the journal to directory as a gzipped gob file.
func (j *Journal) SaveToFile(directory string) error {
	j.mu.RLock()
	file := journalFile{FightID: j.FightID, Entries: append([]rules.Event(nil), j.entries...)}
	j.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	path := filepath.Join(directory, fmt.Sprintf("fight_%s.journal.gz", j.FightID))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create journal file: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	defer zw.Close()

	if err := gob.NewEncoder(zw).Encode(&file); err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	return nil
}

// LoadJournal reads a journal previously written with SaveToFile.
func LoadJournal(directory, fightID string) (*Journal, error) {
	path := filepath.Join(directory, fmt.Sprintf("fight_%s.journal.gz", fightID))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal file: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open journal stream: %w", err)
	}
	defer zr.Close()

	var file journalFile
	if err := gob.NewDecoder(zr).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode journal: %w", err)
	}
	return &Journal{FightID: file.FightID, entries: file.Entries, handle: -1}, nil
}

// ProgressChecksum computes a deterministic SHA-256 over a lifetime counter
// snapshot. Maps are rendered in sorted key order so the same progress always
// hashes the same, which guards replicated progress against divergence.
func ProgressChecksum(snap counters.Snapshot) string {
	var buf bytes.Buffer

	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		byKey := snap[name]
		keys := make([]int, 0, len(byKey))
		for key := range byKey {
			keys = append(keys, key)
		}
		sort.Ints(keys)
		for _, key := range keys {
			fmt.Fprintf(&buf, "%s|%d|%d\n", name, key, byKey[key])
		}
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
