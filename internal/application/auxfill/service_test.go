package auxfill

import (
	"bytes"
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/turtacn/cnsipo-attrs/internal/domain/refdata"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cnsipo-attrs/internal/intelligence/patent_parser"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	mu       sync.Mutex
	rows     map[int][]SourceRecord
	written  map[Field][]AuxRecord
	batches  int
	failYear int
	failErr  error
}

func newFakeStore(rows map[int][]SourceRecord) *fakeStore {
	return &fakeStore{rows: rows, written: make(map[Field][]AuxRecord)}
}

func (s *fakeStore) StreamField(ctx context.Context, _ Field, year, batchSize int, fn func([]SourceRecord) error) error {
	rows := s.rows[year]
	for len(rows) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := batchSize
		if n > len(rows) {
			n = len(rows)
		}
		if err := fn(rows[:n]); err != nil {
			return err
		}
		rows = rows[n:]
	}
	return nil
}

func (s *fakeStore) WriteBatch(_ context.Context, field Field, recs []AuxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failYear != 0 && recs[0].Year == s.failYear {
		return s.failErr
	}
	s.batches++
	s.written[field] = append(s.written[field], recs...)
	return nil
}

func (s *fakeStore) Statement(field Field) string {
	return "UPDATE patent_aux /* " + field.String() + " */"
}

func (s *fakeStore) writtenFor(f Field) []AuxRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]AuxRecord(nil), s.written[f]...)
	sort.Slice(out, func(i, j int) bool { return out[i].AppNo < out[j].AppNo })
	return out
}

type fakeClassifier struct{}

func (fakeClassifier) ParseAddress(text string) attrs.AddressResult {
	if text == "" {
		return attrs.Unknown
	}
	return attrs.AddressResult{Country: attrs.Mainland, Province: text}
}

func (fakeClassifier) ParseApplicants(names, _ string) attrs.ApplicantResult {
	var r attrs.ApplicantResult
	for _, n := range patent_parser.SplitApplicants(names) {
		r.Entities = append(r.Entities, attrs.Entity{Name: n, Type: attrs.OrgType(n[:1]), Region: attrs.Mainland})
	}
	return r
}

func (fakeClassifier) ParseIntCl(codes string) attrs.IPCResult {
	return attrs.IPCResult{HighTech: codes == "hi", LowTech: codes == "lo"}
}

func newTestService(t *testing.T, store Store, opts Options) *Service {
	t.Helper()
	svc, err := NewService(store, fakeClassifier{}, opts, nil, logging.NewNopLogger())
	require.NoError(t, err)
	return svc
}

func yearRows(year, n int) []SourceRecord {
	out := make([]SourceRecord, n)
	for i := range out {
		out[i] = SourceRecord{AppNo: string(rune('a'+year%26)) + string(rune('A'+i)), Value: "江苏"}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil, fakeClassifier{}, Options{BatchSize: 1}, nil, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = NewService(newFakeStore(nil), nil, Options{BatchSize: 1}, nil, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = NewService(newFakeStore(nil), fakeClassifier{}, Options{}, nil, nil)
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
}

func TestRun_Address(t *testing.T) {
	store := newFakeStore(map[int][]SourceRecord{
		1998: {{AppNo: "98100001", Value: "北京"}, {AppNo: "98100002", Value: ""}, {AppNo: " ", Value: "上海"}},
	})
	svc := newTestService(t, store, Options{BatchSize: 2, Concurrency: 2})

	sum, err := svc.Run(context.Background(), FieldAddress, []int{1998})
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, "address", sum.Field)
	require.Len(t, sum.Years, 1)
	assert.Equal(t, YearSummary{Year: 1998, Records: 2, Skipped: 1, Batches: 1, Duration: sum.Years[0].Duration}, sum.Years[0])

	assert.Equal(t, []AuxRecord{
		{AppNo: "98100001", Year: 1998, Country: attrs.Mainland, State: "北京"},
		{AppNo: "98100002", Year: 1998},
	}, store.writtenFor(FieldAddress))
}

func TestRun_ApplicantAndIntCl(t *testing.T) {
	store := newFakeStore(map[int][]SourceRecord{
		2001: {
			{AppNo: "1", Value: "U大学;I公司"},
			{AppNo: "2", Value: "G部"},
			{AppNo: "3", Value: ""},
		},
	})
	svc := newTestService(t, store, Options{BatchSize: 10})

	_, err := svc.Run(context.Background(), FieldApplicant, []int{2001})
	require.NoError(t, err)
	got := store.writtenFor(FieldApplicant)
	require.Len(t, got, 3)
	assert.Equal(t, AttrUniversity|AttrIndustry|AttrCoApplication, got[0].Attrs)
	assert.Equal(t, AttrGovernment, got[1].Attrs)
	assert.Equal(t, 0, got[2].Attrs)

	store.rows[2001] = []SourceRecord{{AppNo: "1", Value: "hi"}, {AppNo: "2", Value: "lo"}}
	_, err = svc.Run(context.Background(), FieldIntCl, []int{2001})
	require.NoError(t, err)
	assert.Equal(t, []AuxRecord{
		{AppNo: "1", Year: 2001, HiTech: true},
		{AppNo: "2", Year: 2001, LoTech: true},
	}, store.writtenFor(FieldIntCl))
}

func TestRun_ManyYearsBoundedConcurrency(t *testing.T) {
	rows := make(map[int][]SourceRecord)
	years := []int{1990, 1991, 1992, 1993, 1994, 1995}
	for _, y := range years {
		rows[y] = yearRows(y, 7)
	}
	store := newFakeStore(rows)
	svc := newTestService(t, store, Options{BatchSize: 3, Concurrency: 2})

	sum, err := svc.Run(context.Background(), FieldAddress, years)
	require.NoError(t, err)

	assert.Equal(t, 42, sum.Records())
	assert.Equal(t, 18, store.batches)
	for i, y := range years {
		assert.Equal(t, y, sum.Years[i].Year, "summaries keep input order")
		assert.Equal(t, 3, sum.Years[i].Batches)
	}
}

func TestRun_DatabaseErrorAborts(t *testing.T) {
	store := newFakeStore(map[int][]SourceRecord{
		1999: yearRows(1999, 4),
		2000: yearRows(2000, 4),
	})
	store.failYear = 2000
	store.failErr = stderrors.New("connection reset by peer")
	svc := newTestService(t, store, Options{BatchSize: 2, Concurrency: 1})

	sum, err := svc.Run(context.Background(), FieldAddress, []int{1999, 2000})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeBatchAborted))
	assert.True(t, errors.IsCode(err, errors.CodeDatabaseError))
	assert.Contains(t, err.Error(), "connection reset by peer")

	require.NotNil(t, sum)
	assert.Equal(t, 4, sum.Years[0].Records, "earlier committed batches stay")
	assert.Equal(t, 0, sum.Years[1].Records)
}

func TestRun_DryRunTouchesNothing(t *testing.T) {
	store := newFakeStore(map[int][]SourceRecord{2005: yearRows(2005, 3)})
	var out bytes.Buffer
	svc := newTestService(t, store, Options{BatchSize: 10, DryRun: true, DryRunOut: &out})

	sum, err := svc.Run(context.Background(), FieldApplicant, []int{2005, 2006})
	require.NoError(t, err)

	assert.True(t, sum.DryRun)
	assert.Equal(t, 0, store.batches)
	assert.Equal(t,
		"year 2005: executing UPDATE patent_aux /* applicant */\n"+
			"year 2006: executing UPDATE patent_aux /* applicant */\n",
		out.String())
}

func TestRun_Rejects(t *testing.T) {
	svc := newTestService(t, newFakeStore(nil), Options{BatchSize: 1})

	_, err := svc.Run(context.Background(), Field(99), []int{2000})
	assert.True(t, errors.IsCode(err, errors.CodeUnknownField))

	_, err = svc.Run(context.Background(), FieldAddress, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidYear))
}

func TestRun_CancelledContext(t *testing.T) {
	store := newFakeStore(map[int][]SourceRecord{2010: yearRows(2010, 5)})
	svc := newTestService(t, store, Options{BatchSize: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, FieldIntCl, []int{2010})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.batches)
}

func TestRun_Metrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	store := newFakeStore(map[int][]SourceRecord{2003: yearRows(2003, 3)})
	svc, err := NewService(store, fakeClassifier{}, Options{BatchSize: 2}, metrics, nil)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), FieldAddress, []int{2003})
	require.NoError(t, err)

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["test_aux_records_total"])
	assert.True(t, names["test_aux_batches_total"])
	assert.True(t, names["test_classifications_total"])
}

func TestRun_WithParser(t *testing.T) {
	tables, err := refdata.LoadDefault()
	require.NoError(t, err)
	parser, err := patent_parser.New(tables)
	require.NoError(t, err)

	store := newFakeStore(map[int][]SourceRecord{
		1996: {
			{AppNo: "96100001", Value: "100080北京市海淀区"},
			{AppNo: "96100002", Value: "日本国大阪府"},
		},
	})
	svc, err := NewService(store, parser, Options{BatchSize: 10}, nil, nil)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), FieldAddress, []int{1996})
	require.NoError(t, err)
	assert.Equal(t, []AuxRecord{
		{AppNo: "96100001", Year: 1996, Country: attrs.Mainland, State: "北京"},
		{AppNo: "96100002", Year: 1996, Country: "日本"},
	}, store.writtenFor(FieldAddress))
}

//Personal.AI order the ending
