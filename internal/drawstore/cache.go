package drawstore

import (
	"klotto/internal/jsonfile"
	"klotto/internal/lotto"
)

const DefaultCacheSize = 100

type cacheEntry struct {
	DrawNo  int    `json:"draw_no"`
	Date    string `json:"date"`
	Numbers []int  `json:"numbers"`
	Bonus   int    `json:"bonus"`
}

// JSONCache is the bounded on-disk mirror of the newest draws. Writes go to a
// temp sibling that is renamed over the target, so readers never see a
// partial file.
type JSONCache struct {
	path string
	size int
}

func NewJSONCache(path string, size int) *JSONCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &JSONCache{path: path, size: size}
}

func (c *JSONCache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

func (c *JSONCache) Size() int {
	if c == nil {
		return DefaultCacheSize
	}
	return c.size
}

// Read returns the valid cached records ordered desc plus the number of
// entries that failed validation. A missing file is an empty cache.
func (c *JSONCache) Read() ([]lotto.DrawRecord, int, error) {
	if c == nil || c.path == "" {
		return nil, 0, nil
	}
	var entries []cacheEntry
	if _, err := jsonfile.Read(c.path, &entries); err != nil {
		return nil, 0, err
	}

	records := make([]lotto.DrawRecord, 0, len(entries))
	seen := make(map[int]struct{}, len(entries))
	skipped := 0
	for _, e := range entries {
		rec, err := lotto.Normalize(lotto.DrawInput{
			DrawNo:  e.DrawNo,
			Date:    e.Date,
			Numbers: e.Numbers,
			Bonus:   e.Bonus,
		})
		if err != nil {
			skipped++
			continue
		}
		if _, dup := seen[rec.DrawNo]; dup {
			continue
		}
		seen[rec.DrawNo] = struct{}{}
		records = append(records, rec)
	}
	lotto.SortDesc(records)
	return records, skipped, nil
}

// Write replaces the cache file with the first Size() records.
func (c *JSONCache) Write(records []lotto.DrawRecord) error {
	if c == nil || c.path == "" {
		return nil
	}
	if len(records) > c.size {
		records = records[:c.size]
	}
	entries := make([]cacheEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, cacheEntry{
			DrawNo:  r.DrawNo,
			Date:    r.Date,
			Numbers: r.Numbers,
			Bonus:   r.Bonus,
		})
	}
	return jsonfile.Write(c.path, entries)
}
