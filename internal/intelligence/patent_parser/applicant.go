package patent_parser

import (
	"strings"

	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// orgSuffixes are stripped before the stem-length check, longest first.
var orgSuffixes = []string{
	"股份有限公司", "有限责任公司", "有限公司", "研究院", "研究所", "总公司",
	"公司", "集团", "总厂", "大学", "学院", "学校", "医院", "中心", "厂", "局", "院", "所",
}

// orgMarkers are characters or words that disqualify a name from being a
// personal name.
var orgMarkers = []string{
	"公司", "厂", "大学", "学院", "学校", "研究", "医院", "中心", "部", "局", "院", "所",
	"会", "社", "集团", "株", "银行", "站", "队", "店", "场", "处", "室",
}

// minStem is the minimum rune length of a name once its suffix is removed.
const minStem = 2

// ParseApplicants classifies each applicant of a semicolon separated list.
// Entities keep input order and duplicates; personal names and fragments are
// dropped. The shared address, when given, is classified once and returned
// alongside the entities.
func (p *Parser) ParseApplicants(names, address string) attrs.ApplicantResult {
	addr := attrs.Unknown
	if strings.TrimSpace(address) != "" {
		addr = p.ParseAddress(address)
	}

	segments := SplitApplicants(names)
	entities := make([]attrs.Entity, 0, len(segments))
	for _, seg := range segments {
		if e, ok := p.classifyApplicant(seg, addr); ok {
			entities = append(entities, e)
		}
	}
	return attrs.ApplicantResult{Entities: entities, Address: addr}
}

// SplitApplicants splits an applicant list on ASCII and full-width semicolons.
// Hyphens and dots never split.
func SplitApplicants(names string) []string {
	parts := strings.FieldsFunc(names, func(r rune) bool { return r == ';' || r == '；' })
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ClassifyType returns the organisation type of a single name and the rule
// that decided it. The second result is empty when the name is rejected as
// non-organisational.
func (p *Parser) ClassifyType(name string) (attrs.OrgType, string) {
	n := normalize(name)
	if n == "" || rejectName(n) {
		return "", ""
	}
	return p.orgType(n)
}

func (p *Parser) classifyApplicant(raw string, addr attrs.AddressResult) (attrs.Entity, bool) {
	folded := fold(raw)
	n := normalize(raw)
	if n == "" || rejectName(n) {
		return attrs.Entity{}, false
	}
	typ, _ := p.orgType(n)
	return attrs.Entity{
		Name:   strings.TrimSpace(raw),
		Type:   typ,
		Region: p.applicantRegion(n, foreignStyle(folded), addr),
	}, true
}

// rejectName drops bare personal names and names that are little more than an
// organisational suffix.
func rejectName(n string) bool {
	if l := runeLen(n); l >= 2 && l <= 3 && allHan(n) && !containsAny(n, orgMarkers) {
		return true
	}
	for _, suf := range orgSuffixes {
		if strings.HasSuffix(n, suf) {
			return runeLen(strings.TrimSuffix(n, suf)) < minStem
		}
	}
	return runeLen(n) < minStem
}

// applicantRegion resolves the region cascade: the name's own province, its
// foreign country, the shared address, a unique foreign sub-national name, a
// domestic-only name, a foreign-style name, and finally the mainland.
func (p *Parser) applicantRegion(n string, foreignLooking bool, addr attrs.AddressResult) string {
	own := p.resolve(n, nameMode)
	switch {
	case own.Country == attrs.Mainland && own.Province != "":
		return own.Province
	case own.Country != "" && own.Country != attrs.Mainland:
		return p.regionOf(own)
	case !addr.IsUnknown():
		return p.regionOf(addr)
	}
	if country := p.foreignSubCountry(n); country != "" {
		return p.regionOf(attrs.AddressResult{Country: country})
	}
	if own.Country == attrs.Mainland {
		return attrs.Mainland
	}
	if foreignLooking {
		return attrs.Foreign
	}
	return attrs.Mainland
}

//Personal.AI order the ending
