package auxfill

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
)

// Store reads source rows and writes auxiliary rows.
type Store interface {
	// StreamField calls fn with consecutive batches of at most batchSize
	// records for one application year. A non-nil error from fn stops the
	// stream and is returned unchanged.
	StreamField(ctx context.Context, field Field, year, batchSize int, fn func([]SourceRecord) error) error

	// WriteBatch writes recs in a single committed transaction.
	WriteBatch(ctx context.Context, field Field, recs []AuxRecord) error

	// Statement returns the write statement used for field.
	Statement(field Field) string
}

// Options tunes a Service.
type Options struct {
	BatchSize   int
	Concurrency int
	DryRun      bool
	// DryRunOut receives the statements printed in dry-run mode.
	DryRunOut io.Writer
}

// YearSummary reports the outcome of one year.
type YearSummary struct {
	Year     int           `json:"year"`
	Records  int           `json:"records"`
	Skipped  int           `json:"skipped"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`
}

// RunSummary reports the outcome of one Run.
type RunSummary struct {
	RunID    string        `json:"run_id"`
	Field    string        `json:"field"`
	DryRun   bool          `json:"dry_run"`
	Years    []YearSummary `json:"years"`
	Duration time.Duration `json:"duration"`
}

// Records returns the number of records written across all years.
func (s *RunSummary) Records() int {
	n := 0
	for _, y := range s.Years {
		n += y.Records
	}
	return n
}

// Service runs the auxiliary-table fill.
type Service struct {
	store      Store
	classifier Classifier
	opts       Options
	metrics    *prometheus.AppMetrics
	logger     logging.Logger
}

// NewService validates opts and wires the collaborators. metrics may be nil.
func NewService(store Store, classifier Classifier, opts Options, metrics *prometheus.AppMetrics, logger logging.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.InvalidParam("store is required")
	}
	if classifier == nil {
		return nil, errors.InvalidParam("classifier is required")
	}
	if opts.BatchSize < 1 {
		return nil, errors.New(errors.CodeConfigInvalid, "invalid configuration").
			WithDetail(fmt.Sprintf("batch size must be positive, got %d", opts.BatchSize))
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.DryRunOut == nil {
		opts.DryRunOut = io.Discard
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		store:      store,
		classifier: classifier,
		opts:       opts,
		metrics:    metrics,
		logger:     logger.Named("auxfill"),
	}, nil
}

// Run fills field for every year, at most Concurrency years at a time. The
// first failing year cancels the others; batches already committed stay.
func (s *Service) Run(ctx context.Context, field Field, years []int) (*RunSummary, error) {
	h, err := handlerFor(field)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, errors.New(errors.CodeInvalidYear, "at least one year is required")
	}

	summary := &RunSummary{
		RunID:  uuid.NewString(),
		Field:  field.String(),
		DryRun: s.opts.DryRun,
		Years:  make([]YearSummary, len(years)),
	}
	log := s.logger.With(
		logging.String(logging.FieldRunID, summary.RunID),
		logging.String(logging.FieldField, field.String()),
	)
	start := time.Now()
	log.Info("fill started", logging.Int("years", len(years)), logging.Bool("dry_run", s.opts.DryRun))

	if s.opts.DryRun {
		stmt := s.store.Statement(field)
		for i, y := range years {
			fmt.Fprintf(s.opts.DryRunOut, "year %d: executing %s\n", y, stmt)
			summary.Years[i] = YearSummary{Year: y}
		}
		summary.Duration = time.Since(start)
		return summary, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, y := range years {
		i, y := i, y
		g.Go(func() error {
			ys, err := s.runYear(gctx, log.With(logging.Int(logging.FieldYear, y)), h, field, y)
			summary.Years[i] = ys
			return err
		})
	}
	err = g.Wait()
	summary.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.AuxRunDuration.WithLabelValues(field.String()).Observe(summary.Duration.Seconds())
	}
	if err != nil {
		log.WithError(err).Error("fill aborted", logging.Int("records", summary.Records()))
		prometheus.RecordError(s.metrics, "auxfill", errors.GetCode(err).String())
		return summary, errors.Wrap(err, errors.CodeBatchAborted, "batch run aborted")
	}
	log.Info("fill finished",
		logging.Int("records", summary.Records()),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (s *Service) runYear(ctx context.Context, log logging.Logger, h fieldHandler, field Field, year int) (YearSummary, error) {
	ys := YearSummary{Year: year}
	start := time.Now()
	if s.metrics != nil {
		s.metrics.AuxActiveWorkers.WithLabelValues(field.String()).Inc()
		defer s.metrics.AuxActiveWorkers.WithLabelValues(field.String()).Dec()
	}
	log.Info("processing patents")

	err := s.store.StreamField(ctx, field, year, s.opts.BatchSize, func(batch []SourceRecord) error {
		recs := make([]AuxRecord, 0, len(batch))
		skipped := 0
		for _, src := range batch {
			if strings.TrimSpace(src.AppNo) == "" {
				skipped++
				continue
			}
			src.Year = year
			rec, outcome := h.transform(s.classifier, src)
			recs = append(recs, rec)
			prometheus.RecordClassification(s.metrics, field.String(), outcome)
		}
		ys.Skipped += skipped
		prometheus.RecordSkipped(s.metrics, field.String(), year, skipped)
		if len(recs) == 0 {
			return nil
		}

		t := time.Now()
		err := s.store.WriteBatch(ctx, field, recs)
		prometheus.RecordBatch(s.metrics, field.String(), year, len(recs), time.Since(t), err)
		if err != nil {
			return err
		}
		ys.Batches++
		ys.Records += len(recs)
		log.Debug("batch committed", logging.Int("batch", ys.Batches), logging.Int("records", len(recs)))
		return nil
	})
	ys.Duration = time.Since(start)
	if err != nil {
		if errors.GetCode(err) == errors.CodeUnknown {
			err = errors.Wrap(err, errors.CodeDatabaseError, "unexpected database error")
		}
		log.WithError(err).Error("year failed", logging.Int("records", ys.Records))
		return ys, err
	}
	log.Info("year finished",
		logging.Int("records", ys.Records),
		logging.Int("skipped", ys.Skipped),
		logging.Int("batches", ys.Batches),
		logging.Duration("duration", ys.Duration),
	)
	return ys, nil
}

//Personal.AI order the ending
