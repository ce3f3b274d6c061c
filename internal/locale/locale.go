package locale

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Locales holds every language table, flattened to dotted keys. Tables are
// loaded once at startup and read-only afterwards.
type Locales struct {
	logger    *zap.Logger
	defaultID string
	tables    map[string]*table
}

type table struct {
	strings map[string]string
	lists   map[string][]string
}

func Load(defaultID string, logger *zap.Logger) (*Locales, error) {
	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	locales := &Locales{
		logger:    logger,
		defaultID: defaultID,
		tables:    make(map[string]*table),
	}

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := localeFiles.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, err
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		tbl := &table{strings: make(map[string]string), lists: make(map[string][]string)}
		flatten("", raw, tbl)
		locales.tables[strings.TrimSuffix(name, ".yaml")] = tbl
	}

	if _, ok := locales.tables[defaultID]; !ok {
		return nil, fmt.Errorf("default locale %q not found", defaultID)
	}
	return locales, nil
}

func flatten(prefix string, node map[string]any, tbl *table) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]any:
			flatten(full, typed, tbl)
		case []any:
			list := make([]string, 0, len(typed))
			for _, item := range typed {
				list = append(list, fmt.Sprint(item))
			}
			tbl.lists[full] = list
		case nil:
		default:
			tbl.strings[full] = fmt.Sprint(typed)
		}
	}
}

// Get returns the localized string for key with positional {0}, {1}, ...
// placeholders substituted. A missing key is logged and returned verbatim so
// lookups never fail the caller.
func (l *Locales) Get(langID, key string, args ...any) string {
	if value, ok := l.lookup(langID, key); ok {
		return format(value, args...)
	}
	l.logger.Warn("missing translation key", zap.String("locale", langID), zap.String("key", key))
	return key
}

// GetList returns a list value with substitution applied uniformly to every
// element.
func (l *Locales) GetList(langID, key string, args ...any) []string {
	if list, ok := l.lookupList(langID, key); ok {
		out := make([]string, len(list))
		for i, item := range list {
			out[i] = format(item, args...)
		}
		return out
	}
	l.logger.Warn("missing translation key", zap.String("locale", langID), zap.String("key", key))
	return []string{key}
}

// Has reports whether key exists for langID or the default language.
func (l *Locales) Has(langID, key string) bool {
	_, ok := l.lookup(langID, key)
	return ok
}

func (l *Locales) lookup(langID, key string) (string, bool) {
	if tbl := l.tables[langID]; tbl != nil {
		if value, ok := tbl.strings[key]; ok {
			return value, true
		}
	}
	if langID != l.defaultID {
		if tbl := l.tables[l.defaultID]; tbl != nil {
			if value, ok := tbl.strings[key]; ok {
				return value, true
			}
		}
	}
	return "", false
}

func (l *Locales) lookupList(langID, key string) ([]string, bool) {
	if tbl := l.tables[langID]; tbl != nil {
		if value, ok := tbl.lists[key]; ok {
			return value, true
		}
	}
	if langID != l.defaultID {
		if tbl := l.tables[l.defaultID]; tbl != nil {
			if value, ok := tbl.lists[key]; ok {
				return value, true
			}
		}
	}
	return nil, false
}

func format(value string, args ...any) string {
	for i, arg := range args {
		placeholder := "{" + fmt.Sprint(i) + "}"
		value = strings.ReplaceAll(value, placeholder, fmt.Sprint(arg))
	}
	return value
}
