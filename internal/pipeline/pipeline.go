// Package pipeline provides the execution engine for a deidentification
// run, streaming rows from a delimited input through the ZIP transform
// to a delimited output.
//
// # Architecture
//
// Three stages connected by buffered channels:
//   - Reader: streams raw rows from the input file
//   - Transformer: rewrites resolved ZIP fields, leaving every other
//     field untouched
//   - Writer: appends rows to the output file
//
// The transform stage is a single worker, so output row order always
// equals input row order. Column selectors are resolved exactly once —
// against the header, or against the first row's width for header-less
// input — and the resolved positions are reused for every row.
package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/safeharbor-io/zipdeid/pkg/columns"
	"github.com/safeharbor-io/zipdeid/pkg/config"
	"github.com/safeharbor-io/zipdeid/pkg/delimited"
	"github.com/safeharbor-io/zipdeid/pkg/errors"
	"github.com/safeharbor-io/zipdeid/pkg/metrics"
	"github.com/safeharbor-io/zipdeid/pkg/zipcode"
)

// Pipeline orchestrates one deidentification run. Create it with New and
// execute it once with Run.
type Pipeline struct {
	cfg         *config.Config
	transformer *zipcode.Transformer
	specs       []columns.Spec
	delimiter   rune
	logger      *zap.Logger

	// Resolved column state, set once before the first data row
	resolution *columns.Resolution

	// Metrics
	rowsProcessed     int64
	fieldsTransformed int64
	redactions        int64
	startTime         time.Time

	mu       sync.Mutex
	wg       sync.WaitGroup
	firstErr error
	cancel   context.CancelFunc
}

// New creates a pipeline from a validated configuration. The
// transformation policy is resolved here; column selectors are resolved
// later against the actual input.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	precision, err := zipcode.ParsePrecision(cfg.Deidentify.Precision)
	if err != nil {
		return nil, err
	}
	fill, err := zipcode.ParseFill(cfg.Deidentify.Fill)
	if err != nil {
		return nil, err
	}
	delimiter, err := delimited.ParseDelimiter(cfg.IO.Delimiter)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:         cfg,
		transformer: zipcode.NewTransformer(precision, fill, cfg.Deidentify.Redaction),
		specs:       columns.ParseSpecs(cfg.Deidentify.Columns),
		delimiter:   delimiter,
		logger:      logger,
	}, nil
}

// Run executes the pipeline until the input is exhausted or a fatal
// error occurs. Unresolvable column selectors are logged as warnings;
// a configuration that resolves to zero usable columns aborts before
// any row is written.
func (p *Pipeline) Run(ctx context.Context) error {
	p.startTime = time.Now()
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	defer cancel()

	p.logger.Info("starting run",
		zap.String("input", p.cfg.IO.Input),
		zap.String("output", p.cfg.OutputPath()),
		zap.String("precision", string(p.transformer.Precision())),
		zap.Int("selectors", len(p.specs)))

	reader, err := delimited.OpenReader(p.cfg.IO.Input, p.delimiter)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			p.logger.Warn("failed to close input", zap.Error(cerr))
		}
	}()

	// Resolve columns against the header before the output file is
	// created, so a configuration that resolves nothing aborts cleanly.
	header, err := p.resolveHeader(reader)
	if err != nil {
		return err
	}

	writer, err := delimited.CreateWriter(p.cfg.OutputPath(), p.delimiter)
	if err != nil {
		return err
	}

	if header != nil {
		if err := writer.Write(header); err != nil {
			_ = writer.Close()
			return err
		}
	}

	rowChan := make(chan []string, p.cfg.Performance.BufferSize)
	outChan := make(chan []string, p.cfg.Performance.BufferSize)
	errorChan := make(chan error, 16)

	p.wg.Add(1)
	go p.readRows(ctx, reader, rowChan, errorChan)

	p.wg.Add(1)
	go p.transformRows(ctx, rowChan, outChan, errorChan)

	p.wg.Add(1)
	go p.writeRows(ctx, writer, outChan, errorChan)

	errorHandlerDone := make(chan struct{})
	go func() {
		p.errorHandler(errorChan)
		close(errorHandlerDone)
	}()

	p.wg.Wait()
	close(errorChan)
	<-errorHandlerDone

	if err := writer.Close(); err != nil {
		p.recordError(err)
	}

	duration := time.Since(p.startTime)
	p.mu.Lock()
	processed := p.rowsProcessed
	transformed := p.fieldsTransformed
	redacted := p.redactions
	runErr := p.firstErr
	p.mu.Unlock()

	p.logger.Info("run completed",
		zap.Int64("rows_processed", processed),
		zap.Int64("fields_transformed", transformed),
		zap.Int64("redactions", redacted),
		zap.Duration("duration", duration),
		zap.Float64("rows_per_second", float64(processed)/duration.Seconds()))

	return runErr
}

// resolveHeader reads the header row (unless the input is header-less)
// and resolves column selectors against it, returning the header for
// pass-through. For header-less input it returns nil and resolution is
// deferred until the first data row reveals the row width.
func (p *Pipeline) resolveHeader(reader *delimited.Reader) ([]string, error) {
	if p.cfg.IO.NoHeader {
		return nil, nil
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrorTypeData, "input file is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read header row")
	}

	if err := p.acceptResolution(columns.Resolve(header, p.specs)); err != nil {
		return nil, err
	}
	return header, nil
}

// acceptResolution records a resolution, surfaces unresolved selectors
// as warnings and fails when nothing resolved at all.
func (p *Pipeline) acceptResolution(res columns.Resolution) error {
	for _, spec := range res.Unresolved {
		metrics.UnresolvedColumns.Inc()
		p.logger.Warn("column not found, skipping selector",
			zap.String("selector", spec.String()))
	}

	if len(res.Positions) == 0 {
		return errors.New(errors.ErrorTypeConfig, "no zip columns could be resolved, nothing to transform")
	}

	p.resolution = &res
	p.logger.Info("columns resolved", zap.Ints("positions", res.Positions))
	return nil
}

// readRows streams rows from the input into the pipeline.
func (p *Pipeline) readRows(ctx context.Context, reader *delimited.Reader, out chan<- []string, errorChan chan<- error) {
	defer p.wg.Done()
	defer close(out)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			errorChan <- err
			p.cancel()
			return
		}

		select {
		case out <- row:
		case <-ctx.Done():
			return
		}
	}
}

// transformRows rewrites the resolved ZIP positions of every row. A
// single worker keeps output order identical to input order; each row is
// an independent pure computation.
func (p *Pipeline) transformRows(ctx context.Context, in <-chan []string, out chan<- []string, errorChan chan<- error) {
	defer p.wg.Done()
	defer close(out)

	precision := string(p.transformer.Precision())
	redaction := p.transformer.Redaction()

	for {
		select {
		case row, ok := <-in:
			if !ok {
				return
			}

			// Header-less input: the first row reveals the width.
			if p.resolution == nil {
				if err := p.acceptResolution(columns.ResolveWidth(len(row), p.specs)); err != nil {
					errorChan <- err
					p.cancel()
					return
				}
			}

			start := time.Now()
			for _, pos := range p.resolution.Positions {
				if pos >= len(row) {
					// Short row: the position does not exist, leave the row alone.
					continue
				}
				raw := row[pos]
				value := p.transformer.Transform(raw)
				if value == raw {
					continue
				}
				row[pos] = value

				redacted := value == redaction
				metrics.FieldsTransformed.WithLabelValues(precision).Inc()
				if redacted {
					metrics.RedactionsTotal.Inc()
				}
				p.mu.Lock()
				p.fieldsTransformed++
				if redacted {
					p.redactions++
				}
				p.mu.Unlock()
			}
			metrics.TransformLatency.Observe(float64(time.Since(start).Nanoseconds()))

			select {
			case out <- row:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// writeRows appends transformed rows to the output in arrival order.
func (p *Pipeline) writeRows(ctx context.Context, writer *delimited.Writer, in <-chan []string, errorChan chan<- error) {
	defer p.wg.Done()

	logInterval := int64(p.cfg.Performance.LogInterval)

	for {
		select {
		case row, ok := <-in:
			if !ok {
				return
			}

			if err := writer.Write(row); err != nil {
				errorChan <- err
				p.cancel()
				return
			}

			metrics.RowsProcessed.WithLabelValues("success").Inc()
			p.mu.Lock()
			p.rowsProcessed++
			processed := p.rowsProcessed
			p.mu.Unlock()

			if logInterval > 0 && processed%logInterval == 0 {
				p.logger.Info("progress", zap.Int64("rows_processed", processed))
			}

		case <-ctx.Done():
			return
		}
	}
}

// errorHandler drains the error channel, logging every error and
// retaining the first one as the run result.
func (p *Pipeline) errorHandler(errorChan <-chan error) {
	for err := range errorChan {
		if err == nil {
			continue
		}
		metrics.RowsProcessed.WithLabelValues("failure").Inc()
		p.logger.Error("pipeline error", zap.Error(err))
		p.recordError(err)
	}
}

func (p *Pipeline) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.firstErr == nil {
		p.firstErr = err
	}
}

// Metrics returns a snapshot of run metrics.
func (p *Pipeline) Metrics() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	duration := time.Since(p.startTime)
	return map[string]interface{}{
		"rows_processed":     p.rowsProcessed,
		"fields_transformed": p.fieldsTransformed,
		"redactions":         p.redactions,
		"duration":           duration.String(),
		"rows_per_second":    float64(p.rowsProcessed) / duration.Seconds(),
	}
}
