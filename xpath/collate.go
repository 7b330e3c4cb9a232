package xpath

import (
	"maps"
	"net/url"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator orders strings. The codepoint collator is always available;
// others are registered by URI or produced on demand by a resolver.
type Collator interface {
	Compare(left, right string) int
}

const (
	CodepointUri = "http://www.w3.org/2005/xpath-functions/collation/codepoint"
	ucaUriPrefix = "http://www.w3.org/2013/collation/UCA"
)

type codepointCollator struct{}

func (codepointCollator) Compare(left, right string) int {
	return strings.Compare(left, right)
}

type textCollator struct {
	coll *collate.Collator
}

func (c textCollator) Compare(left, right string) int {
	return c.coll.CompareString(left, right)
}

// CollationMap maps collation URIs to collators. Copy gives a snapshot
// that can be extended without the original seeing the additions; the
// underlying table is only duplicated at that point, lookups share it.
type CollationMap struct {
	names   map[string]Collator
	deflt   string
	resolve func(uri string) (Collator, error)
}

func DefaultCollations() *CollationMap {
	m := CollationMap{
		names: make(map[string]Collator),
		deflt: CodepointUri,
	}
	m.names[CodepointUri] = codepointCollator{}
	m.resolve = resolveUCA
	return &m
}

func (m *CollationMap) Default() Collator {
	c, err := m.Get(m.deflt)
	if err != nil {
		return codepointCollator{}
	}
	return c
}

func (m *CollationMap) SetDefault(uri string) error {
	if _, err := m.Get(uri); err != nil {
		return err
	}
	m.deflt = uri
	return nil
}

// Get returns the collator registered under the URI, asking the
// resolver for unknown ones. Resolved collators are cached.
func (m *CollationMap) Get(uri string) (Collator, error) {
	if c, ok := m.names[uri]; ok {
		return c, nil
	}
	if m.resolve != nil {
		c, err := m.resolve(uri)
		if err == nil {
			m.names[uri] = c
			return c, nil
		}
	}
	return nil, dynamicErrorf(CodeCollation, "%s: unknown collation", uri)
}

func (m *CollationMap) Register(uri string, c Collator) {
	m.names[uri] = c
}

// Copy returns an independent map with the same contents. Either side
// may register collations afterwards without the other noticing.
func (m *CollationMap) Copy() *CollationMap {
	return &CollationMap{
		names:   maps.Clone(m.names),
		deflt:   m.deflt,
		resolve: m.resolve,
	}
}

// resolveUCA builds a collator for the W3C UCA collation URIs. The
// language is taken from the lang query parameter when present.
func resolveUCA(uri string) (Collator, error) {
	if !strings.HasPrefix(uri, ucaUriPrefix) {
		return nil, dynamicErrorf(CodeCollation, "%s: unknown collation", uri)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, dynamicErrorf(CodeCollation, "%s: invalid collation uri", uri)
	}
	var opts []collate.Option
	query := u.Query()
	if query.Get("strength") == "primary" {
		opts = append(opts, collate.IgnoreCase, collate.IgnoreDiacritics)
	}
	tag := language.Und
	if lang := query.Get("lang"); lang != "" {
		tag = language.Make(lang)
	}
	return textCollator{
		coll: collate.New(tag, opts...),
	}, nil
}
