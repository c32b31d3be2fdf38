package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/cnsipo-attrs/internal/domain/refdata"
	"github.com/turtacn/cnsipo-attrs/internal/intelligence/patent_parser"
)

var (
	parserOnce sync.Once
	parser     *patent_parser.Parser
	parserErr  error
)

// DefaultParser returns a process-wide parser over the built-in reference
// tables, failing the test if they cannot be loaded.
func DefaultParser(t testing.TB) *patent_parser.Parser {
	t.Helper()
	parserOnce.Do(func() {
		var tables *refdata.Tables
		tables, parserErr = refdata.LoadDefault()
		if parserErr == nil {
			parser, parserErr = patent_parser.New(tables)
		}
	})
	require.NoError(t, parserErr)
	return parser
}

//Personal.AI order the ending
