package refdata

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/turtacn/cnsipo-attrs/pkg/errors"
)

//go:embed data/LocList.xml data/cn_univs.json data/hi_tech_ipcs
var embedded embed.FS

const (
	defaultLocationFile   = "data/LocList.xml"
	defaultUniversityFile = "data/cn_univs.json"
	defaultIPCFile        = "data/hi_tech_ipcs"
)

// Disabled switches off an optional table when used as its path.
const Disabled = "none"

// Paths locates the reference files. An empty path selects the built-in copy.
type Paths struct {
	Location   string
	University string
	IPC        string
}

// ConfigError reports a missing or malformed reference file.
type ConfigError struct {
	Path    string
	Missing bool
	Reason  string
	Err     error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("refdata: ")
	sb.WriteString(e.Path)
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func missing(path string, err error) error {
	ce := &ConfigError{Path: path, Missing: true, Reason: "cannot open file", Err: err}
	return errors.Wrap(ce, errors.CodeRefDataMissing, "reference data file missing")
}

func malformed(path, reason string, err error) error {
	ce := &ConfigError{Path: path, Reason: reason, Err: err}
	return errors.Wrap(ce, errors.CodeRefDataInvalid, "reference data file malformed")
}

// ─────────────────────────────────────────────────────────────────────────────
// Load
// ─────────────────────────────────────────────────────────────────────────────

// LoadDefault builds the tables from the built-in reference files.
func LoadDefault() (*Tables, error) {
	return Load(Paths{})
}

// Load builds all tables. Any error is fatal; no partial tables are returned.
func Load(p Paths) (*Tables, error) {
	var t Tables

	data, name, err := readSource(p.Location, defaultLocationFile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, malformed(p.Location, "location file cannot be disabled", nil)
	}
	if t.Locations, err = ParseLocations(bytes.NewReader(data), name); err != nil {
		return nil, err
	}

	data, name, err = readSource(p.University, defaultUniversityFile)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if t.Universities, err = ParseUniversities(bytes.NewReader(data), name); err != nil {
			return nil, err
		}
	}

	data, name, err = readSource(p.IPC, defaultIPCFile)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if t.HighTech, err = ParseIPCPrefixes(bytes.NewReader(data), name); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// readSource returns nil data for a disabled table.
func readSource(path, def string) ([]byte, string, error) {
	switch {
	case strings.EqualFold(path, Disabled):
		return nil, path, nil
	case path == "":
		b, err := fs.ReadFile(embedded, def)
		if err != nil {
			return nil, def, missing(def, err)
		}
		return b, "embedded:" + def, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, path, missing(path, err)
	}
	return b, path, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Location hierarchy
// ─────────────────────────────────────────────────────────────────────────────

type xmlLocation struct {
	XMLName   xml.Name     `xml:"Location"`
	Countries []xmlCountry `xml:"CountryRegion"`
	Agencies  []xmlAgency  `xml:"Agency"`
}

type xmlCountry struct {
	Name     string     `xml:"Name,attr"`
	Alias    string     `xml:"Alias,attr"`
	Domestic bool       `xml:"Domestic,attr"`
	Special  bool       `xml:"Special,attr"`
	States   []xmlState `xml:"State"`
}

type xmlState struct {
	Name     string    `xml:"Name,attr"`
	Alias    string    `xml:"Alias,attr"`
	Postcode string    `xml:"Postcode,attr"`
	Cities   []xmlCity `xml:"City"`
}

type xmlCity struct {
	Name  string `xml:"Name,attr"`
	Alias string `xml:"Alias,attr"`
}

type xmlAgency struct {
	Name  string `xml:"Name,attr"`
	State string `xml:"State,attr"`
}

// ParseLocations decodes a location hierarchy. name is used in error messages.
func ParseLocations(r io.Reader, name string) (*LocationTable, error) {
	var doc xmlLocation
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, malformed(name, "invalid xml", err)
	}

	t := newLocationTable()
	for _, c := range doc.Countries {
		cname := strings.TrimSpace(c.Name)
		if cname == "" {
			return nil, malformed(name, "country without a name", nil)
		}
		if c.Domestic {
			if t.domestic != "" {
				return nil, malformed(name, fmt.Sprintf("second domestic country %q", cname), nil)
			}
			if err := t.addDomestic(c); err != nil {
				return nil, malformed(name, err.Error(), nil)
			}
			continue
		}
		if err := t.addForeign(c); err != nil {
			return nil, malformed(name, err.Error(), nil)
		}
	}
	if t.domestic == "" {
		return nil, malformed(name, "no domestic country", nil)
	}

	for _, a := range doc.Agencies {
		an := strings.TrimSpace(a.Name)
		if an == "" {
			return nil, malformed(name, "agency without a name", nil)
		}
		st := strings.TrimSpace(a.State)
		if st != "" {
			p, ok := t.provinces[st]
			if !ok {
				return nil, malformed(name, fmt.Sprintf("agency %q refers to unknown province %q", an, st), nil)
			}
			st = p
		}
		t.agencies[an] = st
	}

	t.seal()
	return t, nil
}

func (t *LocationTable) addDomestic(c xmlCountry) error {
	t.domestic = strings.TrimSpace(c.Name)
	t.domesticNames = append([]string{t.domestic}, splitList(c.Alias)...)

	for _, s := range c.States {
		p := strings.TrimSpace(s.Name)
		if p == "" {
			return fmt.Errorf("province without a name")
		}
		if _, dup := t.provinces[p]; dup {
			return fmt.Errorf("province %q listed twice", p)
		}
		t.provinces[p] = p
		t.provinceList = append(t.provinceList, p)
		for _, a := range splitList(s.Alias) {
			t.provinces[a] = p
		}
		for _, code := range splitList(s.Postcode) {
			if len(code) != 2 {
				return fmt.Errorf("province %q: postcode prefix %q must have two digits", p, code)
			}
			if other, dup := t.postal[code]; dup {
				return fmt.Errorf("postcode prefix %s claimed by %q and %q", code, other, p)
			}
			t.postal[code] = p
		}
		for _, city := range s.Cities {
			cn := strings.TrimSpace(city.Name)
			if cn == "" {
				return fmt.Errorf("province %q: city without a name", p)
			}
			for _, n := range append([]string{cn}, splitList(city.Alias)...) {
				t.cities[n] = appendUnique(t.cities[n], p)
			}
		}
	}
	return nil
}

func (t *LocationTable) addForeign(c xmlCountry) error {
	cn := strings.TrimSpace(c.Name)
	for _, n := range append([]string{cn}, splitList(c.Alias)...) {
		if other, dup := t.countries[n]; dup && other != cn {
			return fmt.Errorf("country name %q claimed by %q and %q", n, other, cn)
		}
		t.countries[n] = cn
	}
	if c.Special {
		t.special[cn] = true
	}
	for _, s := range c.States {
		sn := strings.TrimSpace(s.Name)
		if sn == "" {
			return fmt.Errorf("country %q: state without a name", cn)
		}
		names := append([]string{sn}, splitList(s.Alias)...)
		for _, city := range s.Cities {
			if n := strings.TrimSpace(city.Name); n != "" {
				names = append(names, n)
			}
			names = append(names, splitList(city.Alias)...)
		}
		for _, n := range names {
			t.foreignSubs[n] = appendUnique(t.foreignSubs[n], cn)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Universities and IPC prefixes
// ─────────────────────────────────────────────────────────────────────────────

// ParseUniversities decodes a JSON object of university name to province.
func ParseUniversities(r io.Reader, name string) (*UniversitySet, error) {
	var m map[string]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, malformed(name, "invalid json", err)
	}
	clean := make(map[string]string, len(m))
	for k, v := range m {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, malformed(name, "empty university name", nil)
		}
		clean[k] = strings.TrimSpace(v)
	}
	return newUniversitySet(clean), nil
}

// ParseIPCPrefixes reads one prefix per line; '#' starts a comment.
func ParseIPCPrefixes(r io.Reader, name string) (*IPCPrefixSet, error) {
	set := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.ToUpper(strings.Join(strings.Fields(text), ""))
		if text == "" {
			continue
		}
		if !validIPCPrefix(text) {
			return nil, malformed(name, fmt.Sprintf("line %d: invalid IPC prefix %q", line, text), nil)
		}
		set[text] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, malformed(name, "read failed", err)
	}
	return &IPCPrefixSet{set: set}, nil
}

// validIPCPrefix accepts A61K, A61K31 and A61K31/00 shapes.
func validIPCPrefix(s string) bool {
	if len(s) < 4 {
		return false
	}
	if s[0] < 'A' || s[0] > 'H' || !isDigit(s[1]) || !isDigit(s[2]) || s[3] < 'A' || s[3] > 'Z' {
		return false
	}
	rest := s[4:]
	group, sub, hasSub := strings.Cut(rest, "/")
	if !allDigits(group) || (hasSub && (group == "" || sub == "" || !allDigits(sub))) {
		return false
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

//Personal.AI order the ending
