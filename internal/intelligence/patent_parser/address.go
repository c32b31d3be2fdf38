package patent_parser

import (
	"strings"

	"github.com/turtacn/cnsipo-attrs/internal/domain/refdata"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// resolveMode selects which cues apply. Applicant names carry no postal code
// and are too short for the province-designator check, and foreign sub-national
// names in them are handled by the applicant region cascade instead.
type resolveMode int

const (
	addressMode resolveMode = iota
	nameMode
)

// designatorHead bounds the position of a province designator (省) that
// marks an address as unreliable when its prefix is not a known province.
const designatorHead = 4

// noiseSuffix after a country name means the match is part of 国际.
const noiseSuffix = "际"

// ParseAddress classifies an address as domestic with an optional province,
// foreign with its country, or unknown.
func (p *Parser) ParseAddress(text string) attrs.AddressResult {
	return p.resolve(normalize(text), addressMode)
}

func (p *Parser) resolve(s string, mode resolveMode) attrs.AddressResult {
	var postalProvince string
	if mode == addressMode {
		var code string
		s, code = stripPostalCode(s)
		if code != "" {
			postalProvince, _ = p.loc.PostalProvince(code)
		}
	}
	if s == "" && postalProvince == "" {
		return attrs.Unknown
	}

	if country := p.foreignCountry(s); country != "" {
		return attrs.AddressResult{Country: country}
	}
	if r, ok := p.domestic(s, postalProvince, mode); ok {
		return r
	}
	if mode == addressMode {
		if country := p.foreignSubCountry(s); country != "" {
			return attrs.AddressResult{Country: country}
		}
	}
	return attrs.Unknown
}

// foreignCountry returns the canonical name of the longest foreign country
// name in s, the leftmost among equally long ones.
func (p *Parser) foreignCountry(s string) string {
	best, bestIdx, bestLen := "", -1, 0
	for _, k := range p.loc.CountryNames() {
		n := runeLen(k)
		if n < bestLen {
			break
		}
		if i := indexClean(s, k); i >= 0 && (bestIdx < 0 || i < bestIdx) {
			best, bestIdx, bestLen = k, i, n
		}
	}
	if best == "" {
		return ""
	}
	c, _ := p.loc.Country(best)
	return c
}

// indexClean finds k in s, skipping occurrences followed by the 国际 suffix.
func indexClean(s, k string) int {
	off := 0
	for {
		i := strings.Index(s[off:], k)
		if i < 0 {
			return -1
		}
		i += off
		end := i + len(k)
		if !strings.HasPrefix(s[end:], noiseSuffix) {
			return i
		}
		off = end
	}
}

func (p *Parser) domestic(s, postalProvince string, mode resolveMode) (attrs.AddressResult, bool) {
	if name, _ := refdata.Leftmost(s, p.loc.ProvinceNames()); name != "" {
		prov, _ := p.loc.Province(name)
		return domesticResult(prov), true
	}
	if postalProvince != "" {
		return domesticResult(postalProvince), true
	}
	if mode == addressMode && p.unknownDesignator(s) {
		return attrs.Unknown, true
	}
	if name, _ := refdata.Leftmost(s, p.loc.AgencyNames()); name != "" {
		prov, _ := p.loc.Agency(name)
		return domesticResult(prov), true
	}

	domesticHint := false
	if _, prov, ok := p.tables.Universities.Find(s); ok {
		if prov != "" {
			return domesticResult(prov), true
		}
		domesticHint = true
	}
	if prov, ok := p.city(s); ok {
		return domesticResult(prov), true
	}
	if domesticHint || containsAny(s, p.loc.DomesticNames()) {
		return domesticResult(""), true
	}
	return attrs.Unknown, false
}

// unknownDesignator reports an "X省" head where X is not a province.
func (p *Parser) unknownDesignator(s string) bool {
	i := strings.Index(s, "省")
	if i < 0 {
		return false
	}
	head := s[:i]
	if n := runeLen(head); n < 2 || n > designatorHead {
		return false
	}
	_, known := p.loc.Province(head)
	return !known
}

// city resolves the leftmost unambiguous city name. When only ambiguous names
// are present the province is empty but the address is still domestic. A city
// name overlapped by a longer foreign state or city name does not count, so
// 马里兰州 is not 兰州.
func (p *Parser) city(s string) (string, bool) {
	found := false
	for _, m := range refdata.Matches(s, p.loc.CityNames()) {
		if p.shadowed(s, m) {
			continue
		}
		found = true
		if provs := p.loc.CityProvinces(m); len(provs) == 1 {
			return provs[0], true
		}
	}
	return "", found
}

// shadowed reports whether every occurrence of name in s overlaps a longer
// foreign sub-national name.
func (p *Parser) shadowed(s, name string) bool {
	for _, i := range occurrences(s, name) {
		if !p.overlapsForeignSub(s, i, i+len(name)) {
			return false
		}
	}
	return true
}

func (p *Parser) overlapsForeignSub(s string, start, end int) bool {
	for _, f := range p.loc.ForeignSubNames() {
		if len(f) <= end-start {
			continue
		}
		for _, j := range occurrences(s, f) {
			if j < end && start < j+len(f) {
				return true
			}
		}
	}
	return false
}

// occurrences yields the byte offsets of every occurrence of k in s.
func occurrences(s, k string) []int {
	var out []int
	for off := 0; off < len(s); {
		i := strings.Index(s[off:], k)
		if i < 0 {
			break
		}
		out = append(out, off+i)
		off += i + 1
	}
	return out
}

// foreignSubCountry returns the owner of the leftmost foreign state or city
// name that belongs to exactly one country.
func (p *Parser) foreignSubCountry(s string) string {
	for _, m := range refdata.Matches(s, p.loc.ForeignSubNames()) {
		if owners := p.loc.ForeignSubCountries(m); len(owners) == 1 {
			return owners[0]
		}
	}
	return ""
}

func domesticResult(province string) attrs.AddressResult {
	return attrs.AddressResult{Country: attrs.Mainland, Province: province}
}

//Personal.AI order the ending
