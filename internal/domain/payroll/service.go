package payroll

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"ems/internal/platform/apperr"
	"ems/internal/platform/metrics"
	"ems/internal/platform/storage"
)

const (
	DocumentDir = "Payslips"
	ContentType = "application/pdf"

	fileStampLayout = "20060102_150405"
)

type Service struct {
	store    StoreAPI
	docs     storage.Store
	renderer *Renderer
	metrics  *metrics.Collector
	now      func() time.Time
}

type Option func(*Service)

// WithClock fixes the generation time, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store StoreAPI, docs storage.Store, renderer *Renderer, opts ...Option) *Service {
	s := &Service{store: store, docs: docs, renderer: renderer, metrics: metrics.New(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Renderer() *Renderer {
	return s.renderer
}

// ResolvePayslipView gathers the employee, department and salary figures
// for one document. It does not write anything.
func (s *Service) ResolvePayslipView(ctx context.Context, employeeID int64, source SalarySource) (PayslipView, error) {
	if employeeID <= 0 {
		return PayslipView{}, apperr.Invalid("employeeId", "must be a positive integer")
	}

	var (
		components Components
		payslipID  int64
	)
	switch src := source.(type) {
	case Explicit:
		components = normalize(src.Components)
		if err := ValidateComponents(components); err != nil {
			return PayslipView{}, err
		}
		payslipID = src.PayslipID
	case LatestStored, ByPayslip:
	default:
		return PayslipView{}, apperr.Internal("unknown salary source", fmt.Errorf("%T", source))
	}

	emp, err := s.store.EmployeeSummary(ctx, employeeID)
	if err != nil {
		return PayslipView{}, err
	}

	switch src := source.(type) {
	case LatestStored:
		p, err := s.store.LatestForEmployee(ctx, employeeID)
		if err != nil {
			return PayslipView{}, err
		}
		components, payslipID = p.Components(), p.ID
	case ByPayslip:
		p, err := s.store.Get(ctx, src.PayslipID)
		if err != nil {
			return PayslipView{}, err
		}
		if p.EmployeeID != employeeID {
			return PayslipView{}, ErrPayslipNotFound
		}
		components, payslipID = p.Components(), p.ID
	}

	view := buildView(emp, payslipID, components)
	view.GeneratedAt = s.now()
	return view, nil
}

func FileName(view PayslipView) string {
	return fmt.Sprintf("Payslip_%d_%d_%s.pdf", view.EmployeeID, view.PayslipID, view.GeneratedAt.Format(fileStampLayout))
}

// RenderAndStore renders the view, writes it under Payslips/ and records
// the relative path on the payslip. The record is only touched after the
// write succeeded.
func (s *Service) RenderAndStore(ctx context.Context, view PayslipView, actorID int64) (StoredDocument, error) {
	if view.PayslipID <= 0 {
		return StoredDocument{}, apperr.Invalid("payslipId", "a stored payslip is required")
	}
	data, err := s.renderer.Render(view)
	if err != nil {
		s.metrics.RenderFailed()
		return StoredDocument{}, err
	}

	name := FileName(view)
	key := storage.Key(DocumentDir, name)
	if err := s.docs.Put(ctx, key, data); err != nil {
		s.metrics.StorageFailed()
		return StoredDocument{}, apperr.Storage("document could not be saved", err)
	}
	if err := s.store.SetPDFPath(ctx, view.PayslipID, key, actorID); err != nil {
		return StoredDocument{}, err
	}
	s.metrics.PayslipRendered()

	return StoredDocument{
		PayslipID:   view.PayslipID,
		EmployeeID:  view.EmployeeID,
		FileName:    name,
		Path:        key,
		Size:        len(data),
		GeneratedAt: view.GeneratedAt,
	}, nil
}

// CreateAndRender inserts a payslip from explicit figures and generates
// its document.
func (s *Service) CreateAndRender(ctx context.Context, employeeID int64, c Components, actorID int64) (Payslip, StoredDocument, error) {
	p, err := s.Create(ctx, employeeID, c, actorID)
	if err != nil {
		return Payslip{}, StoredDocument{}, err
	}
	view, err := s.ResolvePayslipView(ctx, employeeID, ByPayslip{PayslipID: p.ID})
	if err != nil {
		return p, StoredDocument{}, err
	}
	doc, err := s.RenderAndStore(ctx, view, actorID)
	if err != nil {
		return p, StoredDocument{}, err
	}
	p.PDFPath = &doc.Path
	return p, doc, nil
}

// UpdateAuditAndRender regenerates the document of a stored payslip. Only
// the audit columns change, and only once the document is written.
func (s *Service) UpdateAuditAndRender(ctx context.Context, payslipID, actorID int64) (StoredDocument, error) {
	p, err := s.store.Get(ctx, payslipID)
	if err != nil {
		return StoredDocument{}, err
	}
	view, err := s.ResolvePayslipView(ctx, p.EmployeeID, ByPayslip{PayslipID: p.ID})
	if err != nil {
		return StoredDocument{}, err
	}
	return s.RenderAndStore(ctx, view, actorID)
}

// ValidateFileName accepts bare document names only.
func ValidateFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return apperr.Invalid("fileName", "is required")
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."), path.Base(name) != name:
		return apperr.Invalid("fileName", "must be a bare file name")
	}
	return nil
}

func (s *Service) FetchByFileName(ctx context.Context, name string) (Document, error) {
	if err := ValidateFileName(name); err != nil {
		return Document{}, err
	}
	return s.fetch(ctx, storage.Key(DocumentDir, name))
}

func (s *Service) FetchLatestForEmployee(ctx context.Context, employeeID int64) (Document, error) {
	if employeeID <= 0 {
		return Document{}, apperr.Invalid("employeeId", "must be a positive integer")
	}
	p, err := s.store.LatestForEmployee(ctx, employeeID)
	if err != nil {
		return Document{}, err
	}
	if p.PDFPath == nil || *p.PDFPath == "" {
		return Document{}, ErrDocumentNotFound
	}
	return s.fetch(ctx, *p.PDFPath)
}

func (s *Service) fetch(ctx context.Context, key string) (Document, error) {
	data, err := s.docs.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, apperr.Storage("document could not be read", err)
	}
	return Document{Name: path.Base(key), ContentType: ContentType, Data: data}, nil
}

func (s *Service) Create(ctx context.Context, employeeID int64, c Components, actorID int64) (Payslip, error) {
	if employeeID <= 0 {
		return Payslip{}, apperr.Invalid("employeeId", "must be a positive integer")
	}
	c = normalize(c)
	if err := ValidateComponents(c); err != nil {
		return Payslip{}, err
	}
	return s.store.Create(ctx, employeeID, c, actorID)
}

func (s *Service) Get(ctx context.Context, id int64) (Payslip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Payslip, int, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id int64, c Components, actorID int64) (Payslip, error) {
	c = normalize(c)
	if err := ValidateComponents(c); err != nil {
		return Payslip{}, err
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Payslip{}, err
	}
	if current.PDFPath != nil {
		return Payslip{}, ErrPayslipLocked
	}
	if err := s.store.UpdateComponents(ctx, id, c, actorID); err != nil {
		return Payslip{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	return s.store.Deactivate(ctx, id, actorID)
}
