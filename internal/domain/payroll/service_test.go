package payroll

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/core"
	"ems/internal/platform/apperr"
	"ems/internal/platform/metrics"
	"ems/internal/platform/storage"
)

var fixedNow = time.Date(2025, 1, 31, 10, 15, 0, 0, time.UTC)

type fakeStore struct {
	StoreAPI
	employees map[int64]EmployeeSummary
	payslips  map[int64]Payslip
	paths     map[int64]string
	touched   []int64
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: map[int64]EmployeeSummary{
			7: {ID: 7, Name: "Asha Rao", Code: "EMP0007", Email: "asha@example.com", Department: "Engineering"},
			8: {ID: 8, Name: "Ravi Kumar", Code: "EMP0008", Email: "ravi@example.com"},
		},
		payslips: map[int64]Payslip{},
		paths:    map[int64]string{},
		nextID:   12,
	}
}

func (f *fakeStore) EmployeeSummary(_ context.Context, id int64) (EmployeeSummary, error) {
	e, ok := f.employees[id]
	if !ok {
		return EmployeeSummary{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeStore) Create(_ context.Context, employeeID int64, c Components, actorID int64) (Payslip, error) {
	p := Payslip{
		ID: f.nextID, EmployeeID: employeeID,
		BaseSalary: c.Base, Allowances: c.Allowances, Deductions: c.Deductions,
		Salary: c.Base.Add(c.Allowances), NetSalary: c.Net(), Month: c.Month, Active: true,
		Audit: core.Audit{CreatedBy: actorID, CreatedAt: fixedNow},
	}
	f.nextID++
	f.payslips[p.ID] = p
	return p, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (Payslip, error) {
	p, ok := f.payslips[id]
	if !ok {
		return Payslip{}, ErrPayslipNotFound
	}
	return p, nil
}

func (f *fakeStore) LatestForEmployee(_ context.Context, employeeID int64) (Payslip, error) {
	var (
		latest Payslip
		found  bool
	)
	for _, p := range f.payslips {
		if p.EmployeeID != employeeID {
			continue
		}
		if !found || p.CreatedAt.After(latest.CreatedAt) || (p.CreatedAt.Equal(latest.CreatedAt) && p.ID > latest.ID) {
			latest, found = p, true
		}
	}
	if !found {
		return Payslip{}, ErrPayslipNotFound
	}
	return latest, nil
}

func (f *fakeStore) List(context.Context, Filter) ([]Payslip, int, error) {
	out := make([]Payslip, 0, len(f.payslips))
	for id := int64(0); id < f.nextID; id++ {
		if p, ok := f.payslips[id]; ok {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateComponents(_ context.Context, id int64, c Components, _ int64) error {
	p := f.payslips[id]
	p.BaseSalary, p.Allowances, p.Deductions, p.Month = c.Base, c.Allowances, c.Deductions, c.Month
	p.NetSalary = c.Net()
	f.payslips[id] = p
	return nil
}

func (f *fakeStore) SetPDFPath(_ context.Context, id int64, path string, _ int64) error {
	f.paths[id] = path
	f.touched = append(f.touched, id)
	p := f.payslips[id]
	p.PDFPath = &path
	f.payslips[id] = p
	return nil
}

type failingStorage struct {
	storage.Store
}

func (failingStorage) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newTestService(t *testing.T, store StoreAPI, docs storage.Store) *Service {
	t.Helper()
	m, err := NewMoney("en-US")
	require.NoError(t, err)
	return NewService(store, docs, NewRenderer(m), WithClock(func() time.Time { return fixedNow }))
}

func localDocs(t *testing.T) *storage.Local {
	t.Helper()
	docs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return docs
}

func TestResolveExplicitComputesNet(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)

	view, err := svc.ResolvePayslipView(context.Background(), 7, Explicit{
		Components: Components{Base: money(50000), Allowances: money(5000), Deductions: money(2000), Month: "January 2025"},
	})
	require.NoError(t, err)
	assert.True(t, view.Net.Equal(money(53000)), view.Net.String())
	assert.Equal(t, "Engineering", view.Department)
	assert.Equal(t, "EMP0007", view.Code)
	assert.Equal(t, fixedNow, view.GeneratedAt)
}

func TestResolveValidation(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)
	tests := []struct {
		name       string
		employeeID int64
		source     SalarySource
		field      string
	}{
		{"zero employee", 0, LatestStored{}, "employeeId"},
		{"negative employee", -3, LatestStored{}, "employeeId"},
		{"zero base", 7, Explicit{Components: Components{Base: money(0)}}, "baseSalary"},
		{"negative allowances", 7, Explicit{Components: Components{Base: money(10), Allowances: money(-1)}}, "allowances"},
		{"negative deductions", 7, Explicit{Components: Components{Base: money(10), Deductions: money(-1)}}, "deductions"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ResolvePayslipView(context.Background(), tc.employeeID, tc.source)
			appErr, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tc.field, appErr.Fields[0].Field)
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)

	_, err := svc.ResolvePayslipView(context.Background(), 99, LatestStored{})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = svc.ResolvePayslipView(context.Background(), 7, LatestStored{})
	assert.ErrorIs(t, err, ErrPayslipNotFound)
}

func TestResolveLatestStoredPicksNewest(t *testing.T) {
	store := newFakeStore()
	store.payslips[1] = Payslip{ID: 1, EmployeeID: 7, BaseSalary: money(40000), Month: "January 2025",
		Audit: core.Audit{CreatedAt: fixedNow.AddDate(0, -1, 0)}}
	store.payslips[2] = Payslip{ID: 2, EmployeeID: 7, BaseSalary: money(42000), Month: "February 2025",
		Audit: core.Audit{CreatedAt: fixedNow}}
	svc := newTestService(t, store, nil)

	view, err := svc.ResolvePayslipView(context.Background(), 7, LatestStored{})
	require.NoError(t, err)
	assert.Equal(t, "February 2025", view.Month)
	assert.Equal(t, int64(2), view.PayslipID)
}

func TestCreateAndRenderStoresDocument(t *testing.T) {
	store := newFakeStore()
	docs := localDocs(t)
	collector := metrics.New()
	m, err := NewMoney("en-US")
	require.NoError(t, err)
	svc := NewService(store, docs, NewRenderer(m), WithClock(func() time.Time { return fixedNow }), WithMetrics(collector))

	p, doc, err := svc.CreateAndRender(context.Background(), 7, Components{
		Base: money(50000), Allowances: money(5000), Deductions: money(2000), Month: "January 2025",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.ID)
	assert.Equal(t, "Payslip_7_12_20250131_101500.pdf", doc.FileName)
	assert.Equal(t, "Payslips/Payslip_7_12_20250131_101500.pdf", doc.Path)
	assert.Equal(t, doc.Path, store.paths[12])
	assert.Equal(t, uint64(1), collector.Snapshot().PayslipsRendered)

	data, err := docs.Get(context.Background(), doc.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.True(t, bytes.Contains(data, []byte("53,000.00")))
	assert.True(t, bytes.Contains(data, []byte("Employee Payslip - January 2025")))
}

func TestRenderAndStoreWriteFailureLeavesRecord(t *testing.T) {
	store := newFakeStore()
	store.payslips[12] = Payslip{ID: 12, EmployeeID: 7, BaseSalary: money(100)}
	svc := newTestService(t, store, failingStorage{})

	view, err := svc.ResolvePayslipView(context.Background(), 7, ByPayslip{PayslipID: 12})
	require.NoError(t, err)
	_, err = svc.RenderAndStore(context.Background(), view, 1)
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.Empty(t, store.paths)
}

func TestRenderAndStoreNeedsPayslip(t *testing.T) {
	svc := newTestService(t, newFakeStore(), localDocs(t))
	view, err := svc.ResolvePayslipView(context.Background(), 7, Explicit{Components: Components{Base: money(10)}})
	require.NoError(t, err)

	_, err = svc.RenderAndStore(context.Background(), view, 1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateAuditAndRenderKeepsFigures(t *testing.T) {
	store := newFakeStore()
	store.payslips[12] = Payslip{ID: 12, EmployeeID: 7, BaseSalary: money(50000), Allowances: money(5000),
		Deductions: money(2000), NetSalary: money(53000), Month: "January 2025"}
	svc := newTestService(t, store, localDocs(t))

	doc, err := svc.UpdateAuditAndRender(context.Background(), 12, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{12}, store.touched)
	assert.Equal(t, doc.Path, store.paths[12])
	assert.True(t, store.payslips[12].NetSalary.Equal(money(53000)))
	assert.True(t, store.payslips[12].BaseSalary.Equal(money(50000)))
}

func TestUpdateAuditAndRenderWriteFailureLeavesAudit(t *testing.T) {
	store := newFakeStore()
	store.payslips[12] = Payslip{ID: 12, EmployeeID: 7, BaseSalary: money(100), NetSalary: money(100)}
	svc := newTestService(t, store, failingStorage{})

	_, err := svc.UpdateAuditAndRender(context.Background(), 12, 4)
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.Empty(t, store.touched)
	assert.Empty(t, store.paths)
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"Payslip_7_12_20250131_101500.pdf", true},
		{"", false},
		{"  ", false},
		{"../secret.pdf", false},
		{"Payslips/x.pdf", false},
		{`Payslips\x.pdf`, false},
		{"a..b.pdf", false},
		{"/etc/passwd", false},
	}
	for _, tc := range tests {
		err := ValidateFileName(tc.name)
		assert.Equal(t, tc.ok, err == nil, tc.name)
		if err != nil {
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		}
	}
}

func TestFetchByFileName(t *testing.T) {
	docs := localDocs(t)
	require.NoError(t, docs.Put(context.Background(), "Payslips/Payslip_7_12_20250131_101500.pdf", []byte("%PDF-1.3")))
	svc := newTestService(t, newFakeStore(), docs)

	doc, err := svc.FetchByFileName(context.Background(), "Payslip_7_12_20250131_101500.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, []byte("%PDF-1.3"), doc.Data)

	_, err = svc.FetchByFileName(context.Background(), "Payslip_missing.pdf")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = svc.FetchByFileName(context.Background(), "../../etc/passwd")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFetchLatestForEmployee(t *testing.T) {
	store := newFakeStore()
	docs := localDocs(t)
	svc := newTestService(t, store, docs)

	_, err := svc.FetchLatestForEmployee(context.Background(), 7)
	assert.ErrorIs(t, err, ErrPayslipNotFound)

	store.payslips[12] = Payslip{ID: 12, EmployeeID: 7, BaseSalary: money(100), Audit: core.Audit{CreatedAt: fixedNow}}
	_, err = svc.FetchLatestForEmployee(context.Background(), 7)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	stored, err := svc.UpdateAuditAndRender(context.Background(), 12, 1)
	require.NoError(t, err)
	doc, err := svc.FetchLatestForEmployee(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, stored.FileName, doc.Name)
	assert.Equal(t, stored.Size, len(doc.Data))

	require.NoError(t, docs.Delete(context.Background(), stored.Path))
	_, err = svc.FetchLatestForEmployee(context.Background(), 7)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestUpdateLockedAfterRender(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, localDocs(t))

	p, err := svc.Create(context.Background(), 7, Components{Base: money(1000)}, 1)
	require.NoError(t, err)
	updated, err := svc.Update(context.Background(), p.ID, Components{Base: money(1200), Deductions: money(200)}, 1)
	require.NoError(t, err)
	assert.True(t, updated.NetSalary.Equal(money(1000)))

	_, err = svc.UpdateAuditAndRender(context.Background(), p.ID, 1)
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), p.ID, Components{Base: money(5)}, 1)
	assert.ErrorIs(t, err, ErrPayslipLocked)
}

func TestCreateRoundsToCents(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, nil)

	p, err := svc.Create(context.Background(), 7, Components{Base: decimal.RequireFromString("100.005"), Month: " March "}, 1)
	require.NoError(t, err)
	assert.Equal(t, "100.01", p.BaseSalary.StringFixed(2))
	assert.Equal(t, "March", p.Month)
}
