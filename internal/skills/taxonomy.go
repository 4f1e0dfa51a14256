// Package skills recognizes canonical skill names in free-form text.
package skills

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// CategoryOther is reported for skills the taxonomy does not know.
const CategoryOther = "other"

// Taxonomy categories.
const (
	CategoryLanguages     = "languages"
	CategoryFrameworks    = "frameworks"
	CategoryDatabases     = "databases"
	CategoryCloud         = "cloud"
	CategoryDevOps        = "devops"
	CategoryMethodologies = "methodologies"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// Entry is one canonical skill with the spellings that refer to it.
// CaseSensitive lists spellings that double as ordinary words; in free text
// they only count when written with exactly that casing ("Go", not "go").
type Entry struct {
	Name          string   `yaml:"name"`
	Category      string   `yaml:"category"`
	Aliases       []string `yaml:"aliases"`
	CaseSensitive []string `yaml:"case_sensitive"`
}

// File is the on-disk layout of a taxonomy.
type File struct {
	Version string  `yaml:"version"`
	Skills  []Entry `yaml:"skills"`
}

type phrase struct {
	tokens []string
	// exact holds the required original-case tokens, nil when any casing matches
	exact     []string
	canonical string
}

// Taxonomy is an immutable snapshot of the skill table.
type Taxonomy struct {
	version  string
	byPhrase map[string]Entry
	// phrases indexed by first token, longest first
	byHead map[string][]phrase
	size   int
}

// NewTaxonomy builds a snapshot. Two entries may not claim the same spelling.
func NewTaxonomy(version string, entries []Entry) (*Taxonomy, error) {
	t := &Taxonomy{
		version:  version,
		byPhrase: make(map[string]Entry, len(entries)*2),
		byHead:   make(map[string][]phrase, len(entries)*2),
	}
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, fmt.Errorf("op=skills.new_taxonomy: %w: empty skill name", domain.ErrInvalidArgument)
		}
		if e.Category == "" {
			e.Category = CategoryOther
		}
		spellings := append([]string{e.Name}, e.Aliases...)
		exact, err := exactSpellings(e, spellings)
		if err != nil {
			return nil, err
		}
		for _, s := range spellings {
			toks := tokenize(s)
			if len(toks) == 0 {
				continue
			}
			key := strings.Join(toks, " ")
			if prev, ok := t.byPhrase[key]; ok {
				if prev.Name == e.Name {
					continue
				}
				return nil, fmt.Errorf("op=skills.new_taxonomy: %w: %q claimed by %q and %q", domain.ErrInvalidArgument, s, prev.Name, e.Name)
			}
			t.byPhrase[key] = e
			t.byHead[toks[0]] = append(t.byHead[toks[0]], phrase{tokens: toks, exact: exact[key], canonical: e.Name})
		}
		t.size++
	}
	for head, ps := range t.byHead {
		sort.SliceStable(ps, func(i, j int) bool { return len(ps[i].tokens) > len(ps[j].tokens) })
		t.byHead[head] = ps
	}
	return t, nil
}

// exactSpellings maps the lowercase key of each case-sensitive spelling to its
// original-case tokens. Every case-sensitive spelling must be the name or an alias.
func exactSpellings(e Entry, spellings []string) (map[string][]string, error) {
	if len(e.CaseSensitive) == 0 {
		return nil, nil
	}
	known := make(map[string]struct{}, len(spellings))
	for _, s := range spellings {
		known[strings.Join(tokenize(s), " ")] = struct{}{}
	}
	out := make(map[string][]string, len(e.CaseSensitive))
	for _, s := range e.CaseSensitive {
		raw := splitWords(s)
		key := strings.Join(tokenize(s), " ")
		if _, ok := known[key]; !ok || len(raw) == 0 {
			return nil, fmt.Errorf("op=skills.new_taxonomy: %w: case-sensitive spelling %q is not a spelling of %q", domain.ErrInvalidArgument, s, e.Name)
		}
		out[key] = raw
	}
	return out, nil
}

// ParseTaxonomy decodes a YAML taxonomy. A missing version is derived from the content hash.
func ParseTaxonomy(raw []byte) (*Taxonomy, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("op=skills.parse_taxonomy: %w: %v", domain.ErrInvalidArgument, err)
	}
	if len(f.Skills) == 0 {
		return nil, fmt.Errorf("op=skills.parse_taxonomy: %w: no skills", domain.ErrInvalidArgument)
	}
	version := strings.TrimSpace(f.Version)
	if version == "" {
		sum := sha256.Sum256(raw)
		version = hex.EncodeToString(sum[:6])
	}
	return NewTaxonomy(version, f.Skills)
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := ParseTaxonomy(defaultTaxonomyYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// Version identifies the snapshot; it is part of score cache keys.
func (t *Taxonomy) Version() string { return t.version }

// Len returns the number of canonical skills.
func (t *Taxonomy) Len() int { return t.size }

func (t *Taxonomy) lookup(name string) (Entry, bool) {
	toks := tokenize(name)
	if len(toks) == 0 {
		return Entry{}, false
	}
	e, ok := t.byPhrase[strings.Join(toks, " ")]
	return e, ok
}

// tokenize lowercases the words of s.
func tokenize(s string) []string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// splitWords splits s on anything outside [A-Za-z0-9+#.] and keeps the original casing.
// Trailing dots are sentence punctuation, leading dots are kept for names like ".net".
func splitWords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '+' || r == '#' || r == '.':
			return false
		}
		return true
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimRight(f, ".")
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}
