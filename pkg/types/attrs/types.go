// Package attrs defines the result types produced by the patent attribute
// classifiers and consumed by the batch filler, the HTTP API and the CLI.
//
// The empty string is the "unknown" sentinel for Country and Province.
package attrs

import (
	"encoding/json"
	"fmt"
)

// Region tags that are not province names.
const (
	// Mainland is the domestic country tag.
	Mainland = "中国"
	// Foreign tags an applicant located outside the domestic country.
	Foreign = "外国"
)

// ─────────────────────────────────────────────────────────────────────────────
// OrgType
// ─────────────────────────────────────────────────────────────────────────────

// OrgType is the organisational category of an applicant.
type OrgType string

const (
	University OrgType = "U"
	Industry   OrgType = "I"
	Government OrgType = "G"
)

// IsValid reports whether t is one of the three known categories.
func (t OrgType) IsValid() bool {
	switch t {
	case University, Industry, Government:
		return true
	}
	return false
}

func (t OrgType) String() string {
	return string(t)
}

// Label returns a human-readable name for tables and logs.
func (t OrgType) Label() string {
	switch t {
	case University:
		return "university"
	case Industry:
		return "industry"
	case Government:
		return "government"
	}
	return "unknown"
}

// UnmarshalJSON rejects anything but U, I and G.
func (t *OrgType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v := OrgType(s)
	if !v.IsValid() {
		return fmt.Errorf("invalid org type %q", s)
	}
	*t = v
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Results
// ─────────────────────────────────────────────────────────────────────────────

// AddressResult is the geographic classification of an address.
//
//	domestic: {Mainland, province} (province may be empty)
//	foreign:  {country, ""}
//	unknown:  {"", ""}
type AddressResult struct {
	Country  string `json:"country"`
	Province string `json:"province"`
}

// Unknown is the zero AddressResult.
var Unknown = AddressResult{}

// IsUnknown reports whether nothing was recognised.
func (r AddressResult) IsUnknown() bool {
	return r.Country == "" && r.Province == ""
}

// IsDomestic reports whether the address resolved to the domestic country.
func (r AddressResult) IsDomestic() bool {
	return r.Country == Mainland
}

func (r AddressResult) String() string {
	return fmt.Sprintf("(%s, %s)", orNone(r.Country), orNone(r.Province))
}

// Entity is one classified applicant.
type Entity struct {
	Name   string  `json:"name,omitempty"`
	Type   OrgType `json:"type"`
	Region string  `json:"region"`
}

func (e Entity) String() string {
	return fmt.Sprintf("(%s, %s)", e.Type, e.Region)
}

// IsForeign reports whether the entity is located abroad.
func (e Entity) IsForeign() bool {
	return e.Region == Foreign
}

// ApplicantResult is the output of classifying an applicant list.
type ApplicantResult struct {
	Entities []Entity      `json:"entities"`
	Address  AddressResult `json:"address"`
}

// IPCResult is the technology-level classification of an IPC code list.
type IPCResult struct {
	HighTech bool `json:"high_tech"`
	LowTech  bool `json:"low_tech"`
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

//Personal.AI order the ending
