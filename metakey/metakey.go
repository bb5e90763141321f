// Package metakey maintains the table of metadata keys items may carry.
package metakey

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ID identifies a metadata key within a Table.
type ID int

// Invalid is never assigned to a key.
const Invalid ID = 0

// Type is the value type stored under a key.
type Type string

const (
	String Type = "string"
	Int    Type = "int"
	Float  Type = "float"
	Bool   Type = "bool"
	Time   Type = "time"
)

// Core keys, pre-registered in every table.
const (
	Title ID = iota + 1
	URL
	Artist
	Album
	Genre
	Thumbnail
	MediaID
	Author
	Description
	Source
	Lyrics
	Site
	Duration
	Date
	ChildCount
	MimeType
	Width
	Height
	FrameRate
	Rating
	Bitrate
	PlayCount
	LastPlayed
)

// Key describes one metadata key.
type Key struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
}

var core = []Key{
	{Title, "title", "Title of the media", String},
	{URL, "url", "Media URL", String},
	{Artist, "artist", "Main artist", String},
	{Album, "album", "Album the media belongs to", String},
	{Genre, "genre", "Genre the media belongs to", String},
	{Thumbnail, "thumbnail", "Thumbnail image", String},
	{MediaID, "id", "Identifier of media", String},
	{Author, "author", "Creator of the media", String},
	{Description, "description", "Description of the media", String},
	{Source, "source", "Source ID providing the content", String},
	{Lyrics, "lyrics", "Song lyrics", String},
	{Site, "site", "Site providing the media", String},
	{Duration, "duration", "Media duration in seconds", Int},
	{Date, "date", "Publishing or recording date", String},
	{ChildCount, "childcount", "Number of items contained in a container", Int},
	{MimeType, "mime-type", "Media mime type", String},
	{Width, "width", "Width of video (pixels)", Int},
	{Height, "height", "Height of video (pixels)", Int},
	{FrameRate, "framerate", "Frames per second", Float},
	{Rating, "rating", "Media rating", Float},
	{Bitrate, "bitrate", "Media bitrate in Kb/s", Int},
	{PlayCount, "play-count", "How many times the media has been played", Int},
	{LastPlayed, "last-played-time", "Last time the media was played", String},
}

// ErrUnknownKey is returned for names or ids absent from the table.
var ErrUnknownKey = errors.New("unknown metadata key")

// Table is a registry of metadata keys. Each registry owns its own table.
type Table struct {
	mu     sync.RWMutex
	byID   map[ID]Key
	byName map[string]ID
	next   ID
}

// NewTable returns a table populated with the core keys.
func NewTable() *Table {
	t := &Table{
		byID:   make(map[ID]Key, len(core)),
		byName: make(map[string]ID, len(core)),
	}
	for _, k := range core {
		t.byID[k.ID] = k
		t.byName[k.Name] = k.ID
	}
	t.next = ID(len(core)) + 1
	return t
}

// Register adds a key under name, returning the existing key when name is
// already registered with the same type.
func (t *Table) Register(name, description string, typ Type) (Key, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Key{}, errors.New("metadata key name is empty")
	}
	if typ == "" {
		typ = String
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byName[name]; ok {
		existing := t.byID[id]
		if existing.Type != typ {
			return Key{}, fmt.Errorf("metadata key %q already registered as %s", name, existing.Type)
		}
		return existing, nil
	}

	k := Key{ID: t.next, Name: name, Description: description, Type: typ}
	t.byID[k.ID] = k
	t.byName[name] = k.ID
	t.next++
	return k, nil
}

// ByName looks up a key by its name.
func (t *Table) ByName(name string) (Key, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, ok := t.byName[name]
	if !ok {
		return Key{}, false
	}
	return t.byID[id], true
}

// ByID looks up a key by its identifier.
func (t *Table) ByID(id ID) (Key, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	k, ok := t.byID[id]
	return k, ok
}

// Name returns the name for id, or "" when unknown.
func (t *Table) Name(id ID) string {
	k, _ := t.ByID(id)
	return k.Name
}

// Names maps ids to names, skipping unknown ids.
func (t *Table) Names(ids []ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if k, ok := t.ByID(id); ok {
			out = append(out, k.Name)
		}
	}
	return out
}

// Parse resolves a comma-separated list of key names.
func (t *Table) Parse(list string) ([]ID, error) {
	var ids []ID
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		k, ok := t.ByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, name)
		}
		if !slices.Contains(ids, k.ID) {
			ids = append(ids, k.ID)
		}
	}
	return ids, nil
}

// All returns every key sorted by id.
func (t *Table) All() []Key {
	t.mu.RLock()
	keys := make([]Key, 0, len(t.byID))
	for _, k := range t.byID {
		keys = append(keys, k)
	}
	t.mu.RUnlock()

	slices.SortFunc(keys, func(a, b Key) int { return int(a.ID) - int(b.ID) })
	return keys
}

// Len returns the number of registered keys.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
