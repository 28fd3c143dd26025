package i18n

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Bundle holds the loaded language tables and resolves a (locale, key) pair
// to text. Lookup order: the best-matching loaded language for the caller's
// locale, then the configured default language, then the key's baked-in
// literal. A Bundle is immutable after loading and safe for concurrent use.
type Bundle struct {
	tables      map[string]Table
	tags        []language.Tag
	tagLangs    []string
	matcher     language.Matcher
	defaultLang string
}

// NewBundle returns an empty bundle; every lookup falls through to the
// baked-in defaults until tables are added.
func NewBundle() *Bundle {
	return &Bundle{tables: map[string]Table{}}
}

// SetDefaultLanguage names the language used when the caller's locale
// matches nothing (or is empty).
func (b *Bundle) SetDefaultLanguage(lang string) { b.defaultLang = lang }

// Languages lists the loaded language codes, sorted.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.tables))
	for l := range b.tables {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Add registers a table under a language code and rebuilds the matcher.
// Unparseable codes are registered for exact-string lookup only.
func (b *Bundle) Add(lang string, table Table) {
	b.tables[lang] = table
	if tag, err := language.Parse(lang); err == nil {
		b.tags = append(b.tags, tag)
		b.tagLangs = append(b.tagLangs, lang)
		b.matcher = language.NewMatcher(b.tags)
	}
}

// AddFile parses one locale file and registers it.
func (b *Bundle) AddFile(path string) error {
	lang, table, err := ParseFile(path)
	if err != nil {
		return err
	}
	b.Add(lang, table)
	return nil
}

// ScanDir loads every *.json file directly inside dir.
func (b *Bundle) ScanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := b.AddFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// table picks the best table for a locale string, or nil.
func (b *Bundle) table(locale string) Table {
	if locale == "" {
		return nil
	}
	if t, ok := b.tables[locale]; ok {
		return t
	}
	if b.matcher == nil {
		return nil
	}
	want, err := language.Parse(locale)
	if err != nil {
		return nil
	}
	_, idx, conf := b.matcher.Match(want)
	if conf == language.No {
		return nil
	}
	return b.tables[b.tagLangs[idx]]
}

// Localize resolves key for the given locale ("" selects the default
// language) and substitutes {name} placeholders from args.
func (b *Bundle) Localize(locale string, key Key, args map[string]string) string {
	msg := ""
	if t := b.table(locale); t != nil {
		if e, ok := t[key.Name]; ok {
			msg = e.DefaultMessage
		}
	}
	if msg == "" && b.defaultLang != "" {
		if t, ok := b.tables[b.defaultLang]; ok {
			if e, ok := t[key.Name]; ok {
				msg = e.DefaultMessage
			}
		}
	}
	if msg == "" {
		msg = key.Default
	}
	for k, v := range args {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}
