package patent_parser

import (
	"strings"

	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// typeRule is one entry of the organisation-type table. Rules are evaluated in
// order and the first match decides the type.
type typeRule struct {
	Name string
	Type attrs.OrgType

	// Keywords match when any of them occurs in the name.
	Keywords []string
	// Exclude lists words whose embedded keyword occurrences do not count.
	Exclude []string
	// Veto disables the rule when any of them occurs in the name.
	Veto []string
	// KnownUniversity matches names starting with a known university.
	KnownUniversity bool
}

func (r typeRule) match(p *Parser, name string) bool {
	if containsAny(name, r.Veto) {
		return false
	}
	if r.KnownUniversity {
		_, _, ok := p.tables.Universities.MatchPrefix(name)
		return ok
	}
	text := name
	for _, ex := range r.Exclude {
		text = strings.ReplaceAll(text, ex, "\x00")
	}
	return containsAny(text, r.Keywords)
}

// companyMarkers identify commercial entities.
var companyMarkers = []string{
	"公司", "有限", "集团", "厂", "(株)", "株式会社", "企业", "商行", "工作室", "事务所", "银行",
}

var defaultTypeRules = []typeRule{
	{
		Name:     "ministry",
		Type:     attrs.Government,
		Keywords: []string{"部"},
		Exclude: []string{
			"总部", "俱乐部", "部件", "部品", "部分", "干部",
			"东部", "西部", "南部", "北部", "中部", "内部", "外部", "全部", "本部",
		},
	},
	{
		Name: "public-body",
		Type: attrs.Government,
		Keywords: []string{
			"医院", "卫生院", "政府", "委员会", "管理局", "总局", "海关", "部队", "军区",
			"科学院", "疾病预防控制中心", "检验检疫", "公安", "法院", "检察院", "气象局",
			"地震局", "专利局", "药品监督",
		},
	},
	{
		Name:            "known-university",
		Type:            attrs.University,
		KnownUniversity: true,
	},
	{
		Name:     "academic-suffix",
		Type:     attrs.University,
		Keywords: []string{"大学", "学院", "学校", "大專"},
		Veto:     companyMarkers,
	},
	{
		Name:     "company",
		Type:     attrs.Industry,
		Keywords: companyMarkers,
	},
}

// defaultRuleName is reported when no rule matched.
const defaultRuleName = "default"

// orgType classifies a normalized applicant name and names the deciding rule.
func (p *Parser) orgType(name string) (attrs.OrgType, string) {
	for _, r := range p.rules {
		if r.match(p, name) {
			return r.Type, r.Name
		}
	}
	return attrs.Industry, defaultRuleName
}

//Personal.AI order the ending
