package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
)

const maxBodySize = 16 << 20

// cacheMeta is the HTTP validator state kept next to a cached body.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Fetcher downloads calendars with conditional requests and keeps the last
// good body on disk, so a calendar that did not change or whose server is
// down is served from the cache.
type Fetcher struct {
	client *http.Client
	store  *diskv.Diskv
}

// NewFetcher creates a Fetcher caching under dir. A leading ~ is expanded.
func NewFetcher(dir string) (*Fetcher, error) {
	base, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand cache dir: %w", err)
	}
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		store: diskv.New(diskv.Options{
			BasePath:     base,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 4 << 20,
		}),
	}, nil
}

// Fetch returns the calendar body at rawURL and whether it came from the
// cache.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	if rawURL == "" {
		return nil, false, errors.New("calendar URL is empty")
	}
	key := cacheKey(rawURL)

	var meta cacheMeta
	if raw, err := f.store.Read(key + ".meta"); err == nil {
		if err := json.Unmarshal(raw, &meta); err != nil {
			log.Printf("Failed to read cache metadata of %s: %v", redact(rawURL), err)
		}
	}
	cached, _ := f.store.Read(key + ".ics")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	if len(cached) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			log.Printf("Failed to fetch %s, using cached copy: %v", redact(rawURL), err)
			return cached, true, nil
		}
		return nil, false, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, false, fmt.Errorf("failed to read calendar: %w", err)
		}
		meta = cacheMeta{
			URL:          rawURL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			FetchedAt:    time.Now().UTC(),
		}
		if err := f.save(key, meta, body); err != nil {
			log.Printf("Failed to cache calendar %s: %v", redact(rawURL), err)
		}
		return body, false, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, false, errors.New("calendar not modified but nothing is cached")
		}
		return cached, true, nil

	default:
		if len(cached) > 0 {
			log.Printf("Calendar %s answered %s, using cached copy", redact(rawURL), resp.Status)
			return cached, true, nil
		}
		return nil, false, fmt.Errorf("failed to fetch calendar: %s", resp.Status)
	}
}

func (f *Fetcher) save(key string, meta cacheMeta, body []byte) error {
	// Body first so the metadata never points at a missing body.
	if err := f.store.Write(key+".ics", body); err != nil {
		return err
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return f.store.Write(key+".meta", raw)
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:8])
}

// redact drops the path and query of a calendar URL, which often carry a
// private token.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "calendar"
	}
	return u.Scheme + "://" + u.Host + "/..."
}
