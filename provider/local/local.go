// Package local serves audio files from a directory tree.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/util"
	"github.com/medley-cli/medley/where"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// ID identifies the local source.
const ID = "local"

// audioTypes maps supported extensions to mime types. The platform mime
// table is consulted for anything else.
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".wma":  "audio/x-ms-wma",
}

// Source browses and searches a directory of audio files. Item ids are
// slash-separated paths relative to the root; the root itself is "".
type Source struct {
	root string
}

// New returns a source rooted at the root field of bundle, local.root, or
// the user's music directory, in that order.
func New(bundle config.Bundle) (*Source, error) {
	root := bundle.GetOr("root", viper.GetString(key.LocalRoot))
	if root == "" {
		root = where.Music()
	}

	info, err := filesystem.API().Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	return &Source{root: filepath.Clean(root)}, nil
}

func (s *Source) Info() source.Info {
	return source.Info{
		ID:          ID,
		Name:        "Local files",
		Description: "Audio files under " + s.root,
		Rank:        0,
		Origin:      constant.Builtin,
		Tags:        []string{"local", "filesystem"},
	}
}

func (s *Source) SupportedKeys() []string {
	return []string{"id", "title", "artist", "album", "genre", "date", "url", "mime-type", "childcount", "duration"}
}

func (s *Source) WritableKeys() []string { return nil }

// path maps an item id to a filesystem path, refusing ids that leave the root.
func (s *Source) path(id string) (string, error) {
	clean := path.Clean("/" + id)
	if clean != "/"+strings.Trim(id, "/") && id != "" {
		return "", fmt.Errorf("%w: %s", source.ErrNotFound, id)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *Source) id(p string) string {
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func isAudio(name string) bool {
	_, ok := audioTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// item builds a media item from a directory entry without reading tags.
func (s *Source) item(p string, info fs.FileInfo) *media.Media {
	id := s.id(p)

	if info.IsDir() {
		m := media.NewContainer(ID, id).
			Set(metakey.MediaID, id).
			Set(metakey.Title, lo.Ternary(id == "", "Local files", info.Name()))
		if entries, err := afero.ReadDir(filesystem.API(), p); err == nil {
			count := 0
			for _, e := range entries {
				if e.IsDir() || isAudio(e.Name()) || isPlaylist(e.Name()) {
					count++
				}
			}
			m.Set(metakey.ChildCount, count)
		}
		return m
	}

	m := media.New(ID, id).
		Set(metakey.MediaID, id).
		Set(metakey.Title, util.FileStem(info.Name())).
		Set(metakey.URL, "file://"+filepath.ToSlash(p))
	ext := strings.ToLower(filepath.Ext(info.Name()))
	if mt, ok := playlistTypes[ext]; ok {
		m.Container = true
		m.Set(metakey.MimeType, mt)
	} else if mt, ok := audioTypes[ext]; ok {
		m.Set(metakey.MimeType, mt)
	} else if mt := mime.TypeByExtension(ext); mt != "" {
		m.Set(metakey.MimeType, mt)
	}
	return m
}

// Browse lists a directory, or the entries of a playlist container.
func (s *Source) Browse(ctx context.Context, container *media.Media, _ source.Options, emit source.Emitter) error {
	dir := s.root
	if container != nil {
		var err error
		if dir, err = s.path(container.ID); err != nil {
			return err
		}
		if isPlaylist(dir) {
			return s.browsePlaylist(ctx, dir, emit)
		}
	}

	entries, err := afero.ReadDir(filesystem.API(), dir)
	if err != nil {
		return fmt.Errorf("%w: %v", source.ErrNotFound, err)
	}

	entries = slices.DeleteFunc(entries, func(e fs.FileInfo) bool {
		return strings.HasPrefix(e.Name(), ".") || (!e.IsDir() && !isAudio(e.Name()) && !isPlaylist(e.Name()))
	})
	slices.SortFunc(entries, func(a, b fs.FileInfo) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !emit(s.item(filepath.Join(dir, e.Name()), e), len(entries)-i-1) {
			return nil
		}
	}
	return nil
}

// Search walks the tree and matches file names fuzzily, ignoring case and accents.
func (s *Source) Search(ctx context.Context, text string, opts source.Options, emit source.Emitter) error {
	text = strings.TrimSpace(text)
	window := opts.Window()

	var matches []*media.Media
	err := afero.Walk(filesystem.API(), s.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			log.WithSource(ID).Debugf("walk %s: %v", p, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			if p != s.root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isAudio(info.Name()) {
			return nil
		}
		if text != "" && !fuzzy.MatchNormalizedFold(text, util.FileStem(info.Name())) {
			return nil
		}

		matches = append(matches, s.item(p, info))
		if window >= 0 && len(matches) >= window {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return err
	}

	for i, m := range matches {
		if !emit(m, len(matches)-i-1) {
			return nil
		}
	}
	return nil
}

// Resolve reads the audio tags of a file item. Remote playlist entries are
// returned as they are.
func (s *Source) Resolve(ctx context.Context, item *media.Media, opts source.Options) (*media.Media, error) {
	if remote(item.ID) {
		return item.Clone(), nil
	}
	p, err := s.path(item.ID)
	if err != nil {
		return nil, err
	}

	info, err := filesystem.API().Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, item.ID)
	}

	resolved := item.Clone()
	resolved.Merge(s.item(p, info))
	if info.IsDir() || isPlaylist(p) || ctx.Err() != nil {
		return resolved, ctx.Err()
	}

	if err := readTags(p, resolved); err != nil {
		log.WithSource(ID).Debugf("read tags of %s: %v", item.ID, err)
	}
	return resolved, nil
}

func readTags(p string, m *media.Media) error {
	f, err := filesystem.API().Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		return err
	}

	set := func(k metakey.ID, v string) {
		if v = strings.TrimSpace(v); v != "" {
			m.Set(k, v)
		}
	}
	set(metakey.Title, t.Title())
	set(metakey.Artist, t.Artist())
	set(metakey.Album, t.Album())
	set(metakey.Genre, t.Genre())
	if t.Year() > 0 {
		m.Set(metakey.Date, fmt.Sprint(t.Year()))
	}
	return nil
}

// Metadata builds an item from its path id, tags included.
func (s *Source) Metadata(ctx context.Context, id string, opts source.Options) (*media.Media, error) {
	return s.Resolve(ctx, media.New(ID, id), opts)
}

// Remove deletes a file, or an empty directory.
func (s *Source) Remove(_ context.Context, item *media.Media) error {
	if item.ID == "" {
		return fmt.Errorf("refusing to remove the root")
	}
	p, err := s.path(item.ID)
	if err != nil {
		return err
	}
	if _, err := filesystem.API().Stat(p); err != nil {
		return fmt.Errorf("%w: %s", source.ErrNotFound, item.ID)
	}
	return filesystem.API().Remove(p)
}

// Plugin registers the local source.
func Plugin() registry.Plugin {
	return registry.Plugin{
		ID:   ID,
		Info: map[string]string{"kind": "filesystem"},
		Load: func(bundle config.Bundle) (source.Source, error) {
			src, err := New(bundle)
			if err != nil {
				return nil, err
			}
			return src, nil
		},
	}
}
