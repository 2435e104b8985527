package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/events"
	"mercator-hq/tabula/pkg/tabular"
	"mercator-hq/tabula/pkg/tabular/canonical"
	"mercator-hq/tabula/pkg/tabular/render"
	"mercator-hq/tabula/pkg/telemetry/logging"
	"mercator-hq/tabula/pkg/telemetry/metrics"
	"mercator-hq/tabula/pkg/telemetry/tracing"
)

// DefaultStoreTimeout bounds each store call unless WithStoreTimeout is used.
const DefaultStoreTimeout = 30 * time.Second

// Request is one export call.
type Request struct {
	// Data is the query result: JSON text (string, []byte, json.RawMessage)
	// or an already decoded value.
	Data any

	// Filename is the artifact name. The format's extension is appended
	// when missing.
	Filename string

	// Format selects the encoding. Empty uses the exporter's default.
	Format tabular.Format

	// SheetName overrides the XLSX sheet name for this call.
	SheetName string
}

// Result is the outcome of an export. It is always non-nil.
type Result struct {
	Success   bool             `json:"success"`
	ExportID  string           `json:"export_id"`
	Filename  string           `json:"filename,omitempty"`
	Version   artifact.Version `json:"version,omitempty"`
	Format    tabular.Format   `json:"format,omitempty"`
	MimeType  string           `json:"mime,omitempty"`
	Rows      int              `json:"rows"`
	Columns   int              `json:"columns"`
	SizeBytes int              `json:"size_bytes"`
	Message   string           `json:"message,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorKind ErrorKind        `json:"error_kind,omitempty"`
}

// FileInfo describes the latest version of a saved artifact.
type FileInfo struct {
	Name      string           `json:"name"`
	Version   artifact.Version `json:"version"`
	Size      int64            `json:"size"`
	MimeType  string           `json:"mime"`
	CreatedAt time.Time        `json:"created_at"`
}

// ListResult is the outcome of ListArtifacts. It is always non-nil.
type ListResult struct {
	Success   bool       `json:"success"`
	Files     []FileInfo `json:"files"`
	Count     int        `json:"count"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
	ErrorKind ErrorKind  `json:"error_kind,omitempty"`
}

// Exporter canonicalizes, renders, and saves query results. It holds no
// per-call state and is safe for concurrent use.
type Exporter struct {
	store         artifact.Store
	backend       string
	defaultFormat tabular.Format
	renderOptions render.Options
	storeTimeout  time.Duration
	messages      *messages
	metrics       *metrics.Collector
	tracer        *tracing.Tracer
	publisher     events.Publisher
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithDefaultFormat sets the format used when a request names none.
func WithDefaultFormat(format tabular.Format) Option {
	return func(e *Exporter) { e.defaultFormat = format }
}

// WithRenderOptions sets sheet name, delimiter, and column width defaults.
func WithRenderOptions(opts render.Options) Option {
	return func(e *Exporter) { e.renderOptions = opts }
}

// WithStoreTimeout bounds each store call. Non-positive values are ignored.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(e *Exporter) {
		if timeout > 0 {
			e.storeTimeout = timeout
		}
	}
}

// WithLocale selects the message language ("en" or "ja").
func WithLocale(locale string) Option {
	return func(e *Exporter) { e.messages = newMessages(locale) }
}

// WithBackend names the store backend in errors, metrics, and spans.
func WithBackend(backend string) Option {
	return func(e *Exporter) { e.backend = backend }
}

// WithMetrics records export and store metrics.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Exporter) { e.metrics = collector }
}

// WithTracer records a span per export.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(e *Exporter) { e.tracer = tracer }
}

// WithPublisher publishes an artifact.saved event after each save.
func WithPublisher(publisher events.Publisher) Option {
	return func(e *Exporter) { e.publisher = publisher }
}

// WithLogger sets the logger. It is tagged with component=export.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logger.With("component", "export") }
}

// NewExporter creates an exporter writing to store.
func NewExporter(store artifact.Store, opts ...Option) *Exporter {
	e := &Exporter{
		store:         store,
		backend:       "store",
		defaultFormat: tabular.FormatXLSX,
		renderOptions: *render.DefaultOptions(),
		storeTimeout:  DefaultStoreTimeout,
		messages:      newMessages("en"),
		publisher:     events.NopPublisher{},
		logger:        slog.Default().With("component", "export"),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export runs one export. Failures are reported in the result; nothing is
// written unless canonicalization and rendering both succeed.
func (e *Exporter) Export(ctx context.Context, req Request) (result *Result) {
	start := e.now()

	format := req.Format
	if format == "" {
		format = e.defaultFormat
	}

	result = &Result{ExportID: e.newID(), Format: format}
	ctx = logging.WithExportID(ctx, result.ExportID)
	ctx = logging.WithFormat(ctx, string(format))

	ctx, span := e.tracer.Start(ctx, "export.Export")
	span.SetAttributes(
		attribute.String(tracing.AttrExportID, result.ExportID),
		attribute.String(tracing.AttrFormat, string(format)),
	)
	defer span.End()

	fail := func(err error) {
		kind := KindOf(err)
		result.Success = false
		result.Error = e.messages.failure(err, format)
		result.ErrorKind = kind

		span.SetAttributes(attribute.String(tracing.AttrKind, string(kind)))
		tracing.SetStatus(span, err)
		e.recordFailure(format, kind, e.now().Sub(start))
		e.logger.WarnContext(ctx, "export failed",
			"error_kind", kind,
			"error", err,
			"filename", result.Filename,
		)
	}

	defer func() {
		if r := recover(); r != nil {
			result.Version = ""
			fail(fmt.Errorf("export panicked: %v", r))
		}
	}()

	if err := e.validate(req, format); err != nil {
		fail(err)
		return result
	}

	ds, err := canonical.Canonicalize(req.Data)
	if err != nil {
		fail(err)
		return result
	}
	result.Rows = ds.Len()
	result.Columns = len(ds.Schema())
	tracing.SetDatasetAttributes(span, result.Rows, result.Columns)

	opts := e.renderOptions
	if req.SheetName != "" {
		opts.SheetName = req.SheetName
	}
	data, mimeType, err := render.Render(ds, format, &opts)
	if err != nil {
		fail(err)
		return result
	}

	result.Filename = NormalizeFilename(req.Filename, format)
	result.MimeType = mimeType
	ctx = logging.WithArtifact(ctx, result.Filename)

	version, err := e.save(ctx, result.Filename, data, mimeType)
	if err != nil {
		fail(err)
		return result
	}

	result.Success = true
	result.Version = version
	result.SizeBytes = len(data)
	result.Message = e.messages.saved(result)

	duration := e.now().Sub(start)
	tracing.SetArtifactAttributes(span, result.Filename, version.String())
	span.SetAttributes(attribute.Int(tracing.AttrSize, result.SizeBytes))
	tracing.SetStatus(span, nil)
	if e.metrics != nil {
		e.metrics.RecordExport(string(format), metrics.StatusSuccess, duration, result.Rows, result.SizeBytes)
	}
	e.logger.InfoContext(ctx, "export saved",
		"version", version.String(),
		"rows", result.Rows,
		"columns", result.Columns,
		"size_bytes", result.SizeBytes,
		"duration", duration,
	)

	e.publish(ctx, result)
	return result
}

// ListArtifacts returns the latest version of every saved artifact.
func (e *Exporter) ListArtifacts(ctx context.Context) (result *ListResult) {
	result = &ListResult{Files: []FileInfo{}}

	ctx, span := e.tracer.Start(ctx, "export.ListArtifacts")
	defer span.End()

	descriptors, err := e.list(ctx)
	if err != nil {
		result.Error = e.messages.listFailed(storeCause(err))
		result.ErrorKind = KindOf(err)
		tracing.SetStatus(span, err)
		e.logger.WarnContext(ctx, "list artifacts failed", "error", err)
		return result
	}

	for _, d := range descriptors {
		result.Files = append(result.Files, FileInfo{
			Name:      d.Name,
			Version:   d.Version,
			Size:      d.Size,
			MimeType:  d.MimeType,
			CreatedAt: d.CreatedAt,
		})
	}
	result.Success = true
	result.Count = len(result.Files)
	result.Message = e.messages.listed(result.Count)
	tracing.SetStatus(span, nil)
	return result
}

func (e *Exporter) validate(req Request, format tabular.Format) error {
	if e.store == nil {
		return NewInvalidRequestError("store", "no artifact store configured")
	}
	if strings.TrimSpace(req.Filename) == "" {
		return NewInvalidRequestError("filename", "filename is required")
	}
	if strings.ContainsAny(req.Filename, "/\\") {
		return NewInvalidRequestError("filename", "filename cannot contain path separators")
	}
	if !format.Valid() {
		return NewInvalidRequestError("format", fmt.Sprintf("unsupported format %q", format))
	}
	return nil
}

func (e *Exporter) save(ctx context.Context, name string, data []byte, mimeType string) (artifact.Version, error) {
	return callStore(ctx, e, "save", func(ctx context.Context) (artifact.Version, error) {
		return e.store.Save(ctx, name, data, mimeType)
	})
}

func (e *Exporter) list(ctx context.Context) ([]artifact.Descriptor, error) {
	if e.store == nil {
		return nil, NewInvalidRequestError("store", "no artifact store configured")
	}
	return callStore(ctx, e, "list", e.store.List)
}

type storeOutcome[T any] struct {
	value T
	err   error
}

// callStore runs one store call under the store timeout. The call runs in
// its own goroutine so a store that ignores its context still times out.
// Errors come back as *artifact.TimeoutError or *artifact.StoreError, and
// panics are recovered into a StoreError.
func callStore[T any](ctx context.Context, e *Exporter, op string, call func(context.Context) (T, error)) (T, error) {
	start := e.now()
	ctx, span := e.tracer.Start(ctx, "store."+op)
	span.SetAttributes(attribute.String(tracing.AttrBackend, e.backend))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	done := make(chan storeOutcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- storeOutcome[T]{err: fmt.Errorf("store panicked: %v", r)}
			}
		}()
		v, err := call(ctx)
		done <- storeOutcome[T]{value: v, err: err}
	}()

	var out storeOutcome[T]
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	switch err := out.err; {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == context.DeadlineExceeded:
		out.err = artifact.NewTimeoutError(op, e.storeTimeout, err)
	default:
		var storeErr *artifact.StoreError
		if !errors.As(err, &storeErr) {
			out.err = artifact.NewStoreError(e.backend, op, err)
		}
	}

	if e.metrics != nil {
		status := metrics.StatusSuccess
		if out.err != nil {
			status = metrics.StatusError
		}
		e.metrics.RecordStoreOperation(op, status, e.now().Sub(start))
	}
	tracing.SetStatus(span, out.err)
	return out.value, out.err
}

func (e *Exporter) recordFailure(format tabular.Format, kind ErrorKind, duration time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordExport(string(format), metrics.StatusError, duration, 0, 0)
	e.metrics.RecordExportFailure(string(format), string(kind))
}

// publish announces a saved artifact. Failures are logged only.
func (e *Exporter) publish(ctx context.Context, r *Result) {
	if e.publisher == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			e.logger.ErrorContext(ctx, "artifact event publisher panicked", "panic", p)
		}
	}()

	event := events.ArtifactSaved{
		Type:       events.TypeArtifactSaved,
		ExportID:   r.ExportID,
		Name:       r.Filename,
		Version:    r.Version.String(),
		Format:     string(r.Format),
		MimeType:   r.MimeType,
		Rows:       r.Rows,
		Columns:    r.Columns,
		SizeBytes:  r.SizeBytes,
		OccurredAt: e.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "failed to publish artifact event", "error", err)
	}
}

// storeCause strips the StoreError envelope for user-facing messages.
func storeCause(err error) error {
	var storeErr *artifact.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Cause
	}
	return err
}
