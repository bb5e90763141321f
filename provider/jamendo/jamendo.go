// Package jamendo serves tracks, albums and artists from the Jamendo API.
package jamendo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/internal/cache"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/network"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	"github.com/tidwall/gjson"
)

const (
	// ID identifies the Jamendo source.
	ID = "jamendo"

	// DefaultEndpoint is the API root used unless the endpoint field is set.
	DefaultEndpoint = "https://api.jamendo.com/v3.0"

	// pageSize is the largest page the API serves.
	pageSize = 200
)

// Container ids.
const (
	artistsID = "artists"
	albumsID  = "albums"
	artistPfx = "artist/"
	albumPfx  = "album/"
	trackPfx  = "track/"
)

// Source queries Jamendo. It requires the client_id field.
type Source struct {
	clientID string
	endpoint string
}

// New returns a Jamendo source, or a *source.ConfigMissingError without a client id.
func New(bundle config.Bundle) (*Source, error) {
	if err := bundle.Require("client_id"); err != nil {
		return nil, err
	}

	clientID, _ := bundle.Get("client_id")
	return &Source{
		clientID: clientID,
		endpoint: strings.TrimRight(bundle.GetOr("endpoint", DefaultEndpoint), "/"),
	}, nil
}

func (s *Source) Info() source.Info {
	return source.Info{
		ID:          ID,
		Name:        "Jamendo",
		Description: "A source for browsing and searching Jamendo music",
		Rank:        10,
		Tags:        []string{"net:internet", "music"},
	}
}

func (s *Source) SupportedKeys() []string {
	return []string{"id", "title", "artist", "album", "genre", "url", "thumbnail", "duration", "date", "site", "mime-type", "childcount"}
}

func (s *Source) WritableKeys() []string { return nil }

// get fetches one page of resource, consulting the response cache first.
func (s *Source) get(ctx context.Context, resource string, params url.Values) (gjson.Result, error) {
	params.Set("client_id", s.clientID)
	params.Set("format", "json")
	u := fmt.Sprintf("%s/%s/?%s", s.endpoint, resource, params.Encode())

	k := cache.Key(ID, u)
	var body string
	if !cache.Read(k, &body) {
		resp, err := network.Fetch(ctx, network.Client, network.Request{URL: u})
		if err != nil {
			return gjson.Result{}, err
		}
		body = string(resp.Body)
		if !gjson.Valid(body) {
			return gjson.Result{}, errors.New("malformed response")
		}
		if status := gjson.Get(body, "headers.status").String(); status != "success" {
			return gjson.Result{}, fmt.Errorf("jamendo: %s", gjson.Get(body, "headers.error_message").String())
		}
		_ = cache.Write(k, body)
	}

	return gjson.Get(body, "results"), nil
}

// stream pages through resource until the window is filled or the API runs dry.
func (s *Source) stream(ctx context.Context, resource string, params url.Values, opts source.Options, convert func(gjson.Result) *media.Media, emit source.Emitter) error {
	window := opts.Window()
	offset := 0

	for {
		limit := pageSize
		if window >= 0 {
			limit = min(pageSize, window-offset)
		}
		if limit <= 0 {
			return nil
		}

		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
		results, err := s.get(ctx, resource, params)
		if err != nil {
			return err
		}

		page := results.Array()
		last := len(page) < limit || (window >= 0 && offset+len(page) >= window)
		for i, r := range page {
			remaining := len(page) - i - 1
			if !last {
				remaining = source.RemainingUnknown
			}
			if !emit(convert(r), remaining) {
				return nil
			}
		}
		if last {
			return nil
		}
		offset += len(page)
	}
}

func (s *Source) track(r gjson.Result) *media.Media {
	id := trackPfx + r.Get("id").String()
	m := media.New(ID, id).
		Set(metakey.MediaID, id).
		Set(metakey.Title, r.Get("name").String()).
		Set(metakey.Artist, r.Get("artist_name").String()).
		Set(metakey.Album, r.Get("album_name").String()).
		Set(metakey.URL, r.Get("audio").String()).
		Set(metakey.Thumbnail, r.Get("album_image").String()).
		Set(metakey.Site, r.Get("shareurl").String()).
		Set(metakey.Date, r.Get("releasedate").String()).
		Set(metakey.MimeType, "audio/mpeg")
	if d := r.Get("duration").Int(); d > 0 {
		m.Set(metakey.Duration, int(d))
	}
	if genres := r.Get("musicinfo.tags.genres").Array(); len(genres) > 0 {
		m.Set(metakey.Genre, genres[0].String())
	}
	return m
}

func (s *Source) artist(r gjson.Result) *media.Media {
	id := artistPfx + r.Get("id").String()
	return media.NewContainer(ID, id).
		Set(metakey.MediaID, id).
		Set(metakey.Title, r.Get("name").String()).
		Set(metakey.Artist, r.Get("name").String()).
		Set(metakey.Thumbnail, r.Get("image").String()).
		Set(metakey.Site, r.Get("shareurl").String())
}

func (s *Source) album(r gjson.Result) *media.Media {
	id := albumPfx + r.Get("id").String()
	return media.NewContainer(ID, id).
		Set(metakey.MediaID, id).
		Set(metakey.Title, r.Get("name").String()).
		Set(metakey.Album, r.Get("name").String()).
		Set(metakey.Artist, r.Get("artist_name").String()).
		Set(metakey.Thumbnail, r.Get("image").String()).
		Set(metakey.Date, r.Get("releasedate").String())
}

// Search finds tracks whose name, artist or album matches text.
func (s *Source) Search(ctx context.Context, text string, opts source.Options, emit source.Emitter) error {
	params := url.Values{}
	if text != "" {
		params.Set("search", text)
	}
	return s.stream(ctx, "tracks", params, opts, s.track, emit)
}

// Browse lists the artists and albums folders at the root, and tracks below them.
func (s *Source) Browse(ctx context.Context, container *media.Media, opts source.Options, emit source.Emitter) error {
	id := ""
	if container != nil {
		id = container.ID
	}

	switch {
	case id == "":
		roots := []*media.Media{
			media.NewContainer(ID, artistsID).Set(metakey.Title, "Artists"),
			media.NewContainer(ID, albumsID).Set(metakey.Title, "Albums"),
		}
		for i, r := range roots {
			if !emit(r, len(roots)-i-1) {
				break
			}
		}
		return nil
	case id == artistsID:
		return s.stream(ctx, "artists", url.Values{"order": {"popularity_total"}}, opts, s.artist, emit)
	case id == albumsID:
		return s.stream(ctx, "albums", url.Values{"order": {"popularity_total"}}, opts, s.album, emit)
	case strings.HasPrefix(id, artistPfx):
		return s.stream(ctx, "tracks", url.Values{"artist_id": {strings.TrimPrefix(id, artistPfx)}}, opts, s.track, emit)
	case strings.HasPrefix(id, albumPfx):
		return s.stream(ctx, "tracks", url.Values{"album_id": {strings.TrimPrefix(id, albumPfx)}, "order": {"position"}}, opts, s.track, emit)
	default:
		return fmt.Errorf("%w: container %s", source.ErrNotFound, id)
	}
}

// Metadata fetches a single track. Bare numeric ids are accepted.
func (s *Source) Metadata(ctx context.Context, id string, _ source.Options) (*media.Media, error) {
	results, err := s.get(ctx, "tracks", url.Values{"id": {strings.TrimPrefix(id, trackPfx)}})
	if err != nil {
		return nil, err
	}

	first := results.Get("0")
	if !first.Exists() {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, id)
	}
	return s.track(first), nil
}

// Plugin registers the Jamendo source.
func Plugin() registry.Plugin {
	return registry.Plugin{
		ID:   ID,
		Info: map[string]string{"website": "https://www.jamendo.com", "requires": "client_id"},
		Load: func(bundle config.Bundle) (source.Source, error) {
			src, err := New(bundle)
			if err != nil {
				return nil, err
			}
			return src, nil
		},
	}
}
