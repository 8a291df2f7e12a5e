package domain

import (
	"bufio"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const MaxIdentifierLength = 30

const profileHostMarker = "instagram.com/"

// Identifier is a normalized account handle. The zero value is not a valid identifier.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// NormalizeIdentifier maps raw user or page text onto the canonical handle form.
// An empty result means the input carried no usable handle.
func NormalizeIdentifier(raw string) Identifier {
	value := norm.NFKC.String(raw)
	value = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, value)
	value = strings.TrimPrefix(value, "@")
	value = strings.ToLower(value)

	if idx := strings.Index(value, profileHostMarker); idx >= 0 {
		value = value[idx+len(profileHostMarker):]
		if cut := strings.IndexAny(value, "/?#"); cut >= 0 {
			value = value[:cut]
		}
		value = strings.TrimPrefix(value, "@")
	}

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if isIdentifierRune(r) {
			b.WriteRune(r)
		}
	}

	if b.Len() > MaxIdentifierLength {
		return ""
	}

	return Identifier(b.String())
}

func isIdentifierRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_'
}

// IdentifierSet is a hash set of identifiers. A nil set means "not provided".
type IdentifierSet map[Identifier]struct{}

func NewIdentifierSet(ids ...Identifier) IdentifierSet {
	set := make(IdentifierSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// Add inserts id unless it is empty and reports whether the set grew.
func (s IdentifierSet) Add(id Identifier) bool {
	if id == "" {
		return false
	}
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s IdentifierSet) Has(id Identifier) bool {
	_, ok := s[id]
	return ok
}

func (s IdentifierSet) Remove(id Identifier) {
	delete(s, id)
}

// Merge adds every member of other and returns how many were new.
func (s IdentifierSet) Merge(other IdentifierSet) int {
	added := 0
	for id := range other {
		if s.Add(id) {
			added++
		}
	}
	return added
}

func (s IdentifierSet) Sorted() []Identifier {
	out := make([]Identifier, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sortIdentifiers(out)
	return out
}

func sortIdentifiers(ids []Identifier) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// ParseIdentifierList reads one identifier per line. Commas and semicolons
// also separate entries; blank and unusable entries are dropped.
func ParseIdentifierList(payload string) IdentifierSet {
	set := IdentifierSet{}

	scanner := bufio.NewScanner(strings.NewReader(strings.ReplaceAll(payload, "\r", "\n")))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, token := range strings.FieldsFunc(scanner.Text(), func(r rune) bool { return r == ',' || r == ';' }) {
			set.Add(NormalizeIdentifier(token))
		}
	}

	return set
}
