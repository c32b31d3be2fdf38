// Package auxfill fills the auxiliary patent table from the patent detail
// table: one classifier per source field, processed year by year in
// committed batches.
package auxfill

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/cnsipo-attrs/internal/intelligence/patent_parser"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// Field selects which source column is classified.
type Field int

const (
	FieldAddress Field = iota + 1
	FieldApplicant
	FieldIntCl
)

var fieldNames = map[Field]string{
	FieldAddress:   "address",
	FieldApplicant: "applicant",
	FieldIntCl:     "int_cl",
}

// Fields lists every supported field in CLI order.
func Fields() []Field {
	return []Field{FieldAddress, FieldApplicant, FieldIntCl}
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return "field(" + strconv.Itoa(int(f)) + ")"
}

// ParseField resolves a field name as typed on the command line.
func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, n := range fieldNames {
		if n == s {
			return f, nil
		}
	}
	return 0, errors.New(errors.CodeUnknownField, "unknown field name").WithDetail(s)
}

// SourceColumns returns the patent-table columns read for f, the classified
// column first.
func (f Field) SourceColumns() []string {
	switch f {
	case FieldAddress:
		return []string{"address"}
	case FieldApplicant:
		return []string{"applicant", "address"}
	case FieldIntCl:
		return []string{"int_cl"}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Records
// ─────────────────────────────────────────────────────────────────────────────

// SourceRecord is one row read from the patent table. Address is only
// populated for FieldApplicant.
type SourceRecord struct {
	AppNo   string
	Year    int
	Value   string
	Address string
}

// AuxRecord is one row written to the auxiliary table. Which columns are
// meaningful depends on the field being filled.
type AuxRecord struct {
	AppNo   string
	Year    int
	Country string
	State   string
	Attrs   int
	HiTech  bool
	LoTech  bool
}

// Applicant attribute bits stored in the attrs column.
const (
	AttrUniversity = 1 << iota
	AttrIndustry
	AttrGovernment
	AttrForeign
	AttrCoApplication
)

// AttrsMask folds an applicant classification into the attrs bitmask.
func AttrsMask(r attrs.ApplicantResult) int {
	mask := 0
	for _, e := range r.Entities {
		switch e.Type {
		case attrs.University:
			mask |= AttrUniversity
		case attrs.Industry:
			mask |= AttrIndustry
		case attrs.Government:
			mask |= AttrGovernment
		}
		if e.IsForeign() {
			mask |= AttrForeign
		}
	}
	if len(r.Entities) > 1 {
		mask |= AttrCoApplication
	}
	return mask
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

// Classifier is the subset of patent_parser.Parser used by the filler.
type Classifier interface {
	ParseAddress(text string) attrs.AddressResult
	ParseApplicants(names, address string) attrs.ApplicantResult
	ParseIntCl(codes string) attrs.IPCResult
}

var _ Classifier = (*patent_parser.Parser)(nil)

// fieldHandler turns a source record into an aux record and names the
// classification outcome for metrics.
type fieldHandler struct {
	transform func(c Classifier, rec SourceRecord) (AuxRecord, string)
}

var handlers = map[Field]fieldHandler{
	FieldAddress: {transform: func(c Classifier, rec SourceRecord) (AuxRecord, string) {
		r := c.ParseAddress(rec.Value)
		return AuxRecord{AppNo: rec.AppNo, Year: rec.Year, Country: r.Country, State: r.Province}, AddressOutcome(r)
	}},
	FieldApplicant: {transform: func(c Classifier, rec SourceRecord) (AuxRecord, string) {
		r := c.ParseApplicants(rec.Value, rec.Address)
		return AuxRecord{AppNo: rec.AppNo, Year: rec.Year, Attrs: AttrsMask(r)}, ApplicantOutcome(r)
	}},
	FieldIntCl: {transform: func(c Classifier, rec SourceRecord) (AuxRecord, string) {
		r := c.ParseIntCl(rec.Value)
		return AuxRecord{AppNo: rec.AppNo, Year: rec.Year, HiTech: r.HighTech, LoTech: r.LowTech}, IPCOutcome(r)
	}},
}

// AddressOutcome labels an address result: unknown, domestic or foreign.
func AddressOutcome(r attrs.AddressResult) string {
	switch {
	case r.IsUnknown():
		return "unknown"
	case r.IsDomestic():
		return "domestic"
	}
	return "foreign"
}

// ApplicantOutcome labels an applicant result: none or classified.
func ApplicantOutcome(r attrs.ApplicantResult) string {
	if len(r.Entities) == 0 {
		return "none"
	}
	return "classified"
}

// IPCOutcome labels an IPC result.
func IPCOutcome(r attrs.IPCResult) string {
	switch {
	case r.HighTech && r.LowTech:
		return "both"
	case r.HighTech:
		return "high"
	case r.LowTech:
		return "low"
	}
	return "none"
}

func handlerFor(f Field) (fieldHandler, error) {
	h, ok := handlers[f]
	if !ok {
		return fieldHandler{}, errors.New(errors.CodeUnknownField, "unknown field name").WithDetail(f.String())
	}
	return h, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Years
// ─────────────────────────────────────────────────────────────────────────────

const (
	minYear = 1985
	maxYear = 2999
)

// ParseYears converts command-line year arguments, keeping their order and
// dropping repeats.
func ParseYears(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, errors.New(errors.CodeInvalidYear, "at least one year is required")
	}
	seen := make(map[int]bool, len(args))
	years := make([]int, 0, len(args))
	for _, a := range args {
		y, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil || y < minYear || y > maxYear {
			return nil, errors.New(errors.CodeInvalidYear, "invalid application year").
				WithDetail(fmt.Sprintf("%q not in [%d, %d]", a, minYear, maxYear))
		}
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	return years, nil
}

//Personal.AI order the ending
