package patent_parser

import (
	"regexp"
	"strings"

	"github.com/turtacn/cnsipo-attrs/internal/domain/refdata"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// ipcPattern matches <subclass><main group>[/<subgroup>][(<edition>)][<marker>]
// once whitespace has been removed, e.g. C12R1/19(2006.01)N.
var ipcPattern = regexp.MustCompile(`^([A-H][0-9]{2}[A-Z])([0-9]{1,4})(?:/([0-9]{1,6}))?(?:\(([^)]*)\))?([A-Z])?$`)

// Override markers.
const (
	markerLowTech  = "N"
	markerHighTech = "I"
)

// IPCCode is one parsed classification code.
type IPCCode struct {
	Subclass  string
	MainGroup string
	Subgroup  string
	Edition   string
	Marker    string
}

// Prefixes returns the lookup keys from coarse to fine.
func (c IPCCode) Prefixes() []string {
	keys := []string{c.Subclass, c.Subclass + c.MainGroup}
	if c.Subgroup != "" {
		keys = append(keys, c.Subclass+c.MainGroup+"/"+c.Subgroup)
	}
	return keys
}

// ParseIPCCode parses a single code. ok is false for unparseable input.
func ParseIPCCode(code string) (IPCCode, bool) {
	s := strings.ToUpper(strings.Join(strings.Fields(fold(code)), ""))
	m := ipcPattern.FindStringSubmatch(s)
	if m == nil {
		return IPCCode{}, false
	}
	return IPCCode{Subclass: m[1], MainGroup: m[2], Subgroup: m[3], Edition: m[4], Marker: m[5]}, true
}

// ParseIntCl classifies a semicolon separated IPC code list. The result is the
// OR over all codes; without a high-tech table it is always false, false.
func (p *Parser) ParseIntCl(codes string) attrs.IPCResult {
	var res attrs.IPCResult
	set := p.tables.HighTech
	if set == nil {
		return res
	}
	for _, raw := range strings.FieldsFunc(codes, func(r rune) bool { return r == ';' || r == '；' }) {
		c, ok := ParseIPCCode(raw)
		if !ok {
			continue
		}
		if c.Marker == markerLowTech {
			res.LowTech = true
		}
		if c.Marker == markerHighTech || containsPrefix(set, c) {
			res.HighTech = true
		}
	}
	return res
}

func containsPrefix(set *refdata.IPCPrefixSet, c IPCCode) bool {
	for _, k := range c.Prefixes() {
		if set.Contains(k) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
