package skills

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Extractor matches text against the current taxonomy snapshot.
// Swap replaces the snapshot atomically; in-flight calls keep the snapshot they started with.
type Extractor struct {
	snap atomic.Pointer[Taxonomy]
}

// NewExtractor returns an extractor over t, or over the built-in taxonomy when t is nil.
func NewExtractor(t *Taxonomy) *Extractor {
	if t == nil {
		t = DefaultTaxonomy()
	}
	e := &Extractor{}
	e.snap.Store(t)
	return e
}

// Swap installs a new taxonomy snapshot. Nil is ignored.
func (e *Extractor) Swap(t *Taxonomy) {
	if t == nil {
		return
	}
	e.snap.Store(t)
}

// Taxonomy returns the snapshot currently in use.
func (e *Extractor) Taxonomy() *Taxonomy { return e.snap.Load() }

// Version returns the version of the snapshot currently in use.
func (e *Extractor) Version() string { return e.snap.Load().Version() }

// Extract returns the sorted, de-duplicated canonical skill names found in text.
// Multi-word and longer phrases win over their prefixes, so "react native" never also yields "React".
func (e *Extractor) Extract(text string) []string {
	return e.snap.Load().extract(text)
}

// Canonical maps a user-typed skill name to its taxonomy spelling.
// Unknown names are returned trimmed.
func (e *Extractor) Canonical(name string) string {
	if ent, ok := e.snap.Load().lookup(name); ok {
		return ent.Name
	}
	return strings.TrimSpace(name)
}

// Category returns the category of name, or CategoryOther.
func (e *Extractor) Category(name string) string {
	if ent, ok := e.snap.Load().lookup(name); ok {
		return ent.Category
	}
	return CategoryOther
}

func (t *Taxonomy) extract(text string) []string {
	raw := splitWords(text)
	if len(raw) == 0 {
		return []string{}
	}
	toks := make([]string, len(raw))
	for i, w := range raw {
		toks[i] = strings.ToLower(w)
	}
	seen := make(map[string]struct{})
	for i := 0; i < len(toks); {
		n := t.matchAt(toks, raw, i, seen)
		if n == 0 {
			i++
			continue
		}
		i += n
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// matchAt records the longest phrase starting at toks[i] and returns its token length.
// raw carries the original casing of toks for case-sensitive spellings.
func (t *Taxonomy) matchAt(toks, raw []string, i int, seen map[string]struct{}) int {
	for _, p := range t.byHead[toks[i]] {
		if i+len(p.tokens) > len(toks) {
			continue
		}
		match := true
		for k, pt := range p.tokens {
			if toks[i+k] != pt || (p.exact != nil && raw[i+k] != p.exact[k]) {
				match = false
				break
			}
		}
		if match {
			seen[p.canonical] = struct{}{}
			return len(p.tokens)
		}
	}
	return 0
}
