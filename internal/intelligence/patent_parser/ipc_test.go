package patent_parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cnsipo-attrs/internal/domain/refdata"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

func TestParseIntCl(t *testing.T) {
	t.Parallel()
	p := newDefaultParser(t)

	cases := []struct {
		codes string
		want  attrs.IPCResult
	}{
		{"", attrs.IPCResult{}},
		{"C12R1/19(2006.01)N", attrs.IPCResult{LowTech: true}},
		{"C40B40/06(2006.01)I", attrs.IPCResult{HighTech: true}},
		{"C12R1/19(2006.01)N; C40B40/06(2006.01)I", attrs.IPCResult{HighTech: true, LowTech: true}},
		{"G06F17/30(2006.01)", attrs.IPCResult{HighTech: true}},
		{"A01B1/00", attrs.IPCResult{}},
		{"H02J3/38", attrs.IPCResult{HighTech: true}},
		{"H02J7/00", attrs.IPCResult{}},
		{"G06F 17/30 (2006.01) N", attrs.IPCResult{HighTech: true, LowTech: true}},
		{"ｇ０６ｆ１７／３０", attrs.IPCResult{HighTech: true}},
		{"garbage; ;;", attrs.IPCResult{}},
		{"A01B1/00；C40B40/06", attrs.IPCResult{HighTech: true}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.codes, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, p.ParseIntCl(tc.codes))
		})
	}
}

func TestParseIntCl_WithoutTable(t *testing.T) {
	t.Parallel()

	tables, err := refdata.Load(refdata.Paths{IPC: refdata.Disabled})
	require.NoError(t, err)
	p, err := New(tables)
	require.NoError(t, err)

	assert.Equal(t, attrs.IPCResult{}, p.ParseIntCl("C12R1/19(2006.01)N; C40B40/06(2006.01)I"))
}

func TestParseIPCCode(t *testing.T) {
	t.Parallel()

	c, ok := ParseIPCCode("C12R1/19(2006.01)N")
	require.True(t, ok)
	assert.Equal(t, IPCCode{Subclass: "C12R", MainGroup: "1", Subgroup: "19", Edition: "2006.01", Marker: "N"}, c)
	assert.Equal(t, []string{"C12R", "C12R1", "C12R1/19"}, c.Prefixes())

	c, ok = ParseIPCCode("A61K31")
	require.True(t, ok)
	assert.Equal(t, []string{"A61K", "A61K31"}, c.Prefixes())

	for _, bad := range []string{"", "X01B1/00", "A1B1/00", "A01B/00", "A01B1/00(2006.01"} {
		_, ok := ParseIPCCode(bad)
		assert.False(t, ok, bad)
	}
}

//Personal.AI order the ending
