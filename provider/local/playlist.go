package local

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
	"github.com/samber/lo"
)

// playlistTypes maps playlist extensions to their mime types.
var playlistTypes = map[string]string{
	".m3u":  "audio/x-mpegurl",
	".m3u8": "audio/x-mpegurl",
	".pls":  "audio/x-scpls",
}

func isPlaylist(name string) bool {
	_, ok := playlistTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// playlistEntry is one line of a playlist.
type playlistEntry struct {
	location string
	title    string
	// seconds is -1 when the playlist does not know the length.
	seconds int
}

func parsePlaylist(name string, r io.Reader) ([]playlistEntry, error) {
	if strings.EqualFold(filepath.Ext(name), ".pls") {
		return parsePLS(r)
	}
	return parseM3U(r)
}

// parseM3U reads plain and extended M3U. An #EXTINF line describes the
// location that follows it.
func parseM3U(r io.Reader) ([]playlistEntry, error) {
	var (
		entries []playlistEntry
		pending = playlistEntry{seconds: -1}
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXTINF:"):
			length, title, _ := strings.Cut(strings.TrimPrefix(line, "#EXTINF:"), ",")
			// attributes such as tvg-id may follow the length
			length, _, _ = strings.Cut(length, " ")
			pending.title = strings.TrimSpace(title)
			pending.seconds = atoiOr(length, -1)
		case strings.HasPrefix(line, "#"):
		default:
			pending.location = line
			entries = append(entries, pending)
			pending = playlistEntry{seconds: -1}
		}
	}
	return entries, scanner.Err()
}

// parsePLS reads the INI-like PLS format. Entries are ordered by their
// number, not by the order of the lines.
func parsePLS(r io.Reader) ([]playlistEntry, error) {
	byIndex := make(map[int]*playlistEntry)
	get := func(i int) *playlistEntry {
		if e, ok := byIndex[i]; ok {
			return e
		}
		e := &playlistEntry{seconds: -1}
		byIndex[i] = e
		return e
	}

	scanner := bufio.NewScanner(r)
	header := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			header = strings.EqualFold(line, "[playlist]")
			continue
		}
		if !header {
			continue
		}

		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k, v = strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v)

		for _, field := range []string{"file", "title", "length"} {
			n, found := strings.CutPrefix(k, field)
			if !found {
				continue
			}
			i, err := strconv.Atoi(n)
			if err != nil {
				break
			}
			switch field {
			case "file":
				get(i).location = v
			case "title":
				get(i).title = v
			case "length":
				get(i).seconds = atoiOr(v, -1)
			}
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var entries []playlistEntry
	for _, i := range slices.Sorted(maps.Keys(byIndex)) {
		if e := byIndex[i]; e.location != "" {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

// browsePlaylist emits the valid entries of the playlist at p. Local entries
// that are missing or outside the root are skipped.
func (s *Source) browsePlaylist(ctx context.Context, p string, emit source.Emitter) error {
	f, err := filesystem.API().Open(p)
	if err != nil {
		return fmt.Errorf("%w: %v", source.ErrNotFound, err)
	}
	defer f.Close()

	entries, err := parsePlaylist(p, f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", s.id(p), err)
	}

	items := lo.FilterMap(entries, func(e playlistEntry, _ int) (*media.Media, bool) {
		m := s.playlistItem(filepath.Dir(p), e)
		if m == nil {
			log.WithSource(ID).Debugf("skip playlist entry %s of %s", e.location, s.id(p))
		}
		return m, m != nil
	})

	for i, m := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !emit(m, len(items)-i-1) {
			return nil
		}
	}
	return nil
}

func (s *Source) playlistItem(dir string, e playlistEntry) *media.Media {
	var m *media.Media

	if remote(e.location) {
		m = media.New(ID, e.location).
			Set(metakey.MediaID, e.location).
			Set(metakey.URL, e.location).
			Set(metakey.Title, e.location)
	} else {
		p := strings.TrimPrefix(e.location, "file://")
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, filepath.FromSlash(p))
		}
		p = filepath.Clean(p)
		if id := s.id(p); id == "" || id == ".." || strings.HasPrefix(id, "../") {
			return nil
		}
		info, err := filesystem.API().Stat(p)
		if err != nil || info.IsDir() {
			return nil
		}
		m = s.item(p, info)
	}

	if e.title != "" {
		m.Set(metakey.Title, e.title)
	}
	if e.seconds > 0 {
		m.Set(metakey.Duration, e.seconds)
	}
	return m
}

// remote reports whether location is a URL other than file://.
func remote(location string) bool {
	scheme, _, ok := strings.Cut(location, "://")
	return ok && !strings.EqualFold(scheme, "file") && !strings.ContainsAny(scheme, `/\`)
}
