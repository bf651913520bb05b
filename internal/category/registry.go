package category

import (
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/gosimple/slug"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Entry is one known category: a slug key and its display label.
type Entry struct {
	Key   string `json:"key" mapstructure:"key"`
	Label string `json:"label" mapstructure:"label"`
}

// DefaultEntries is the canonical category enumeration. Insertion order
// is display order.
func DefaultEntries() []Entry {
	return []Entry{
		{Key: "lavatrice", Label: "Lavatrici"},
		{Key: "lavastoviglie", Label: "Lavastoviglie"},
		{Key: "forno", Label: "Forni"},
		{Key: "frigorifero", Label: "Frigoriferi"},
		{Key: "asciugatrice", Label: "Asciugatrici"},
		{Key: "microonde", Label: "Microonde"},
		{Key: "condizionatore", Label: "Condizionatori"},
		{Key: "piccoli_elettrodomestici", Label: "Piccoli Elettrodomestici"},
		{Key: "altro", Label: "Altro"},
	}
}

type snapshot struct {
	entries []Entry
	byKey   map[string]string
}

// Registry is the single source of truth for category keys and labels.
// Lookups never fail: unknown keys degrade to a generated label because
// products written before the registry existed may carry stale values.
type Registry struct {
	current atomic.Value // holds snapshot
	log     *zap.Logger
}

// NewRegistry builds a registry from the canonical entries, optionally
// extended by a categories.yml found on the given search paths. The file
// is watched and hot-reloaded; invalid reloads are ignored.
func NewRegistry(log *zap.Logger, searchPaths ...string) (*Registry, error) {
	r := &Registry{log: log.Named("category.registry")}
	r.store(DefaultEntries())

	v := viper.New()
	v.SetConfigName("categories")
	v.SetConfigType("yml")
	for _, path := range searchPaths {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("/etc/riparo")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		return r, nil
	}

	entries, err := entriesFromViper(v)
	if err != nil {
		return nil, err
	}
	r.store(entries)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := entriesFromViper(v)
		if err != nil {
			r.log.Warn("invalid category config ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		r.store(updated)
		r.log.Info("category config reloaded", zap.String("file", e.Name))
	})

	return r, nil
}

// NewStaticRegistry builds a registry from fixed entries, for tests and
// embedded use.
func NewStaticRegistry(entries []Entry) *Registry {
	r := &Registry{log: zap.NewNop()}
	if len(entries) == 0 {
		entries = DefaultEntries()
	}
	r.store(entries)
	return r
}

func entriesFromViper(v *viper.Viper) ([]Entry, error) {
	var extra []Entry
	if err := v.UnmarshalKey("categories", &extra); err != nil {
		return nil, err
	}

	merged := DefaultEntries()
	known := make(map[string]bool, len(merged))
	for _, e := range merged {
		known[e.Key] = true
	}
	for _, e := range extra {
		key := slug.Make(strings.TrimSpace(e.Key))
		if key == "" || known[key] {
			continue
		}
		label := strings.TrimSpace(e.Label)
		if label == "" {
			label = FallbackLabel(key)
		}
		merged = append(merged, Entry{Key: key, Label: label})
		known[key] = true
	}
	return merged, nil
}

func (r *Registry) store(entries []Entry) {
	byKey := make(map[string]string, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e.Label
	}
	r.current.Store(snapshot{entries: entries, byKey: byKey})
}

func (r *Registry) load() snapshot {
	return r.current.Load().(snapshot)
}

// All returns every known category in display order.
func (r *Registry) All() []Entry {
	snap := r.load()
	out := make([]Entry, len(snap.entries))
	copy(out, snap.entries)
	return out
}

// IsValid reports whether key is a registered category.
func (r *Registry) IsValid(key string) bool {
	_, ok := r.load().byKey[strings.TrimSpace(key)]
	return ok
}

// ResolveLabel returns the canonical label for key, or a generated
// best-effort label for unknown keys. It is total over all strings.
func (r *Registry) ResolveLabel(key string) string {
	key = strings.TrimSpace(key)
	if label, ok := r.load().byKey[key]; ok {
		return label
	}
	return FallbackLabel(key)
}

// FallbackLabel generates a display label from a raw key: underscores
// become spaces and the first letter is upper-cased.
func FallbackLabel(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "Non specificata"
	}
	label := strings.ReplaceAll(key, "_", " ")
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}
