package service

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"klotto/internal/analysis"
	"klotto/internal/drawstore"
	"klotto/internal/jsonfile"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

const maxMemoLen = 200

type Favorite struct {
	Numbers   []int     `json:"numbers"`
	Memo      string    `json:"memo"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoritesService keeps user-saved sets in insertion order, persisted as
// one JSON file. Entries are addressed by their position.
type FavoritesService struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	items []Favorite
}

func NewFavoritesService(path string, logger *zap.Logger) *FavoritesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoritesService{path: path, logger: logger, now: time.Now}
}

func (f *FavoritesService) Load() int {
	var items []Favorite
	if f.path != "" {
		if _, err := jsonfile.Read(f.path, &items); err != nil {
			f.logger.Error("favorites load failed", zap.String("path", f.path), zap.Error(err))
			items = nil
		}
	}
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return len(items)
}

// Add saves numbers with an optional memo and returns the new entry with its
// position. A combination already saved is not added again; the position is
// then -1.
func (f *FavoritesService) Add(numbers []int, memo string) (Favorite, int, error) {
	set, err := analysis.AnalyzeSet(numbers)
	if err != nil {
		return Favorite{}, -1, err
	}
	memo = strings.TrimSpace(memo)
	if len(memo) > maxMemoLen {
		memo = memo[:maxMemoLen]
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if slices.Equal(it.Numbers, set.Numbers) {
			return Favorite{}, -1, nil
		}
	}
	item := Favorite{Numbers: set.Numbers, Memo: memo, CreatedAt: f.now().UTC()}
	next := append(slices.Clone(f.items), item)
	if err := f.save(next); err != nil {
		return Favorite{}, -1, err
	}
	f.items = next
	item.Numbers = slices.Clone(item.Numbers)
	return item, len(next) - 1, nil
}

func (f *FavoritesService) Remove(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.items) {
		return ErrFavoriteNotFound
	}
	next := slices.Delete(slices.Clone(f.items), index, index+1)
	if err := f.save(next); err != nil {
		return err
	}
	f.items = next
	return nil
}

func (f *FavoritesService) All() []Favorite {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Favorite, len(f.items))
	for i, it := range f.items {
		out[i] = it
		out[i].Numbers = slices.Clone(it.Numbers)
	}
	return out
}

func (f *FavoritesService) save(items []Favorite) error {
	if f.path == "" {
		return nil
	}
	if err := jsonfile.Write(f.path, items); err != nil {
		f.logger.Error("favorites save failed", zap.String("path", f.path), zap.Error(err))
		return &drawstore.PersistenceError{Op: "write favorites", Err: err}
	}
	return nil
}
