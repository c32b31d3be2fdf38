// Package refdata holds the immutable reference tables consulted by the patent
// attribute classifiers: the place-name hierarchy, the known universities and
// the high-tech IPC prefixes.
//
// Tables are built once by Load and never mutated afterwards, so they are safe
// for concurrent readers without locking.
package refdata

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ─────────────────────────────────────────────────────────────────────────────
// LocationTable
// ─────────────────────────────────────────────────────────────────────────────

// LocationTable maps place names to their administrative classification.
type LocationTable struct {
	domestic      string
	domesticNames []string

	provinces    map[string]string // name or alias -> canonical province
	provinceList []string          // canonical, file order
	postal       map[string]string // two-digit prefix -> province

	cities map[string][]string // city name or alias -> candidate provinces

	countries map[string]string // foreign/special name or alias -> canonical
	special   map[string]bool

	foreignSubs map[string][]string // foreign state/city -> owner countries

	agencies map[string]string // agency -> head-office province ("" when unknown)

	provinceKeys []string
	cityKeys     []string
	countryKeys  []string
	subKeys      []string
	agencyKeys   []string
}

func newLocationTable() *LocationTable {
	return &LocationTable{
		provinces:   make(map[string]string),
		postal:      make(map[string]string),
		cities:      make(map[string][]string),
		countries:   make(map[string]string),
		special:     make(map[string]bool),
		foreignSubs: make(map[string][]string),
		agencies:    make(map[string]string),
	}
}

// seal builds the longest-first key lists used by the substring scanners.
func (t *LocationTable) seal() {
	t.provinceKeys = sortedKeys(t.provinces)
	t.cityKeys = sortedKeys(t.cities)
	t.countryKeys = sortedKeys(t.countries)
	t.subKeys = sortedKeys(t.foreignSubs)
	t.agencyKeys = sortedKeys(t.agencies)
	sort.SliceStable(t.domesticNames, func(i, j int) bool {
		return utf8.RuneCountInString(t.domesticNames[i]) > utf8.RuneCountInString(t.domesticNames[j])
	})
}

// Domestic returns the canonical name of the home country.
func (t *LocationTable) Domestic() string { return t.domestic }

// DomesticNames returns every name of the home country, longest first.
func (t *LocationTable) DomesticNames() []string { return t.domesticNames }

// Provinces returns the canonical province names in file order.
func (t *LocationTable) Provinces() []string { return t.provinceList }

// ProvinceNames returns province names and aliases, longest first.
func (t *LocationTable) ProvinceNames() []string { return t.provinceKeys }

// Province resolves a province name or alias.
func (t *LocationTable) Province(name string) (string, bool) {
	p, ok := t.provinces[name]
	return p, ok
}

// PostalProvince maps the first two digits of a postal code to a province.
func (t *LocationTable) PostalProvince(code string) (string, bool) {
	if len(code) < 2 {
		return "", false
	}
	p, ok := t.postal[code[:2]]
	return p, ok
}

// CityNames returns domestic city names and aliases, longest first.
func (t *LocationTable) CityNames() []string { return t.cityKeys }

// CityProvinces returns the provinces owning a city name. More than one entry
// means the name is ambiguous.
func (t *LocationTable) CityProvinces(name string) []string { return t.cities[name] }

// CountryNames returns foreign and special-region names and aliases, longest
// first. The home country is never included.
func (t *LocationTable) CountryNames() []string { return t.countryKeys }

// Country resolves a foreign country name or alias to its canonical name.
func (t *LocationTable) Country(name string) (string, bool) {
	c, ok := t.countries[name]
	return c, ok
}

// IsSpecial reports whether a canonical country is a special region that is
// reported by name instead of as a generic foreign location.
func (t *LocationTable) IsSpecial(country string) bool { return t.special[country] }

// ForeignSubNames returns foreign state and city names, longest first.
func (t *LocationTable) ForeignSubNames() []string { return t.subKeys }

// ForeignSubCountries returns the countries owning a foreign sub-national name.
func (t *LocationTable) ForeignSubCountries(name string) []string { return t.foreignSubs[name] }

// AgencyNames returns the hard-coded agency names, longest first.
func (t *LocationTable) AgencyNames() []string { return t.agencyKeys }

// Agency returns the head-office province of an agency. The province is empty
// when the agency has no fixed seat.
func (t *LocationTable) Agency(name string) (string, bool) {
	p, ok := t.agencies[name]
	return p, ok
}

// ─────────────────────────────────────────────────────────────────────────────
// UniversitySet
// ─────────────────────────────────────────────────────────────────────────────

// UniversitySet is the set of known university names with their home
// provinces. A nil set matches nothing.
type UniversitySet struct {
	byName map[string]string
	keys   []string
}

func newUniversitySet(m map[string]string) *UniversitySet {
	return &UniversitySet{byName: m, keys: sortedKeys(m)}
}

// Len returns the number of known universities.
func (s *UniversitySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byName)
}

// Province returns the home province of an exactly named university.
func (s *UniversitySet) Province(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	p, ok := s.byName[name]
	return p, ok
}

// MatchPrefix returns the longest known university name that text starts with.
func (s *UniversitySet) MatchPrefix(text string) (name, province string, ok bool) {
	if s == nil {
		return "", "", false
	}
	for _, k := range s.keys {
		if strings.HasPrefix(text, k) {
			return k, s.byName[k], true
		}
	}
	return "", "", false
}

// Find returns the leftmost known university name contained in text, the
// longest one when several start at the same position.
func (s *UniversitySet) Find(text string) (name, province string, ok bool) {
	if s == nil {
		return "", "", false
	}
	k, _ := Leftmost(text, s.keys)
	if k == "" {
		return "", "", false
	}
	return k, s.byName[k], true
}

// ─────────────────────────────────────────────────────────────────────────────
// IPCPrefixSet
// ─────────────────────────────────────────────────────────────────────────────

// IPCPrefixSet holds IPC prefixes tagged high-tech. A nil set contains nothing.
type IPCPrefixSet struct {
	set map[string]struct{}
}

// Contains reports whether prefix is listed.
func (s *IPCPrefixSet) Contains(prefix string) bool {
	if s == nil {
		return false
	}
	_, ok := s.set[prefix]
	return ok
}

// Len returns the number of listed prefixes.
func (s *IPCPrefixSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.set)
}

// ─────────────────────────────────────────────────────────────────────────────
// Tables
// ─────────────────────────────────────────────────────────────────────────────

// Tables bundles the three reference tables. Universities and HighTech are nil
// when their files were disabled.
type Tables struct {
	Locations    *LocationTable
	Universities *UniversitySet
	HighTech     *IPCPrefixSet
}

// Stats summarises table sizes for readiness probes and startup logs.
type Stats struct {
	Provinces    int `json:"provinces"`
	Cities       int `json:"cities"`
	Countries    int `json:"countries"`
	Agencies     int `json:"agencies"`
	Universities int `json:"universities"`
	IPCPrefixes  int `json:"ipc_prefixes"`
}

// Map returns the sizes keyed by table name.
func (s Stats) Map() map[string]int {
	return map[string]int{
		"provinces":    s.Provinces,
		"cities":       s.Cities,
		"countries":    s.Countries,
		"agencies":     s.Agencies,
		"universities": s.Universities,
		"ipc_prefixes": s.IPCPrefixes,
	}
}

// Stats returns the table sizes.
func (t *Tables) Stats() Stats {
	return Stats{
		Provinces:    len(t.Locations.provinceList),
		Cities:       len(t.Locations.cities),
		Countries:    len(t.Locations.countries),
		Agencies:     len(t.Locations.agencies),
		Universities: t.Universities.Len(),
		IPCPrefixes:  t.HighTech.Len(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

// Leftmost returns the key that occurs earliest in text together with its
// byte offset. keys must be sorted longest first so that, among keys starting
// at the same offset, the longest wins. It returns ("", -1) on no match.
func Leftmost(text string, keys []string) (string, int) {
	best, bestIdx := "", -1
	for _, k := range keys {
		i := strings.Index(text, k)
		if i < 0 {
			continue
		}
		if bestIdx < 0 || i < bestIdx {
			best, bestIdx = k, i
		}
	}
	return best, bestIdx
}

// Matches returns every key found in text ordered by first occurrence, longest
// first at equal offsets.
func Matches(text string, keys []string) []string {
	type hit struct {
		key string
		idx int
	}
	var hits []hit
	for _, k := range keys {
		if i := strings.Index(text, k); i >= 0 {
			hits = append(hits, hit{k, i})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].idx < hits[j].idx })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.key
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	return keys
}

//Personal.AI order the ending
