// Package patent_parser classifies the free-text fields of Chinese patent
// records: applicant addresses, applicant name lists and IPC code lists.
//
// A Parser is built once from reference tables and is safe for concurrent use.
// No method returns an error; an unrecognised input yields the unknown
// sentinel of its result type.
package patent_parser

import (
	"github.com/turtacn/cnsipo-attrs/internal/domain/refdata"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// Parser extracts geographic, organisational and technology attributes.
type Parser struct {
	tables *refdata.Tables
	loc    *refdata.LocationTable
	rules  []typeRule
}

// New returns a Parser over tables. Universities and HighTech may be nil.
func New(tables *refdata.Tables) (*Parser, error) {
	if tables == nil || tables.Locations == nil {
		return nil, errors.InvalidParam("patent parser requires a location table")
	}
	rules := make([]typeRule, 0, len(defaultTypeRules))
	for _, r := range defaultTypeRules {
		if r.Type == attrs.University && tables.Universities == nil {
			continue
		}
		rules = append(rules, r)
	}
	return &Parser{tables: tables, loc: tables.Locations, rules: rules}, nil
}

// Tables returns the reference tables the parser was built from.
func (p *Parser) Tables() *refdata.Tables { return p.tables }

// regionOf converts an address result into an applicant region tag.
func (p *Parser) regionOf(r attrs.AddressResult) string {
	switch {
	case r.Country == attrs.Mainland:
		if r.Province != "" {
			return r.Province
		}
		return attrs.Mainland
	case p.loc.IsSpecial(r.Country):
		return r.Country
	case r.Country != "":
		return attrs.Foreign
	}
	return ""
}

//Personal.AI order the ending
