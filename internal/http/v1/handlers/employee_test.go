package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
	"taskwell/internal/domain/employee"
)

// --- in-memory fakes ---

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEmployeeRepo struct {
	employees map[id.ID]*employee.Employee
	tenants   map[id.ID][]id.ID
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		employees: make(map[id.ID]*employee.Employee),
		tenants:   make(map[id.ID][]id.ID),
	}
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error {
	cp := *e
	r.employees[e.ID] = &cp
	return nil
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, employeeID id.ID) (*employee.Employee, error) {
	if e, ok := r.employees[employeeID]; ok && !e.DeletionMark {
		cp := *e
		return &cp, nil
	}
	return nil, apperror.NewNotFound("employee", employeeID)
}

func (r *fakeEmployeeRepo) GetByAccount(ctx context.Context, accountID id.ID) (*employee.Employee, error) {
	for _, e := range r.employees {
		if e.AccountID == accountID && !e.DeletionMark {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("employee", accountID)
}

func (r *fakeEmployeeRepo) Update(ctx context.Context, e *employee.Employee) error {
	cp := *e
	r.employees[e.ID] = &cp
	return nil
}

func (r *fakeEmployeeRepo) SetDeletionMark(ctx context.Context, employeeID id.ID, marked bool) error {
	if e, ok := r.employees[employeeID]; ok {
		e.DeletionMark = marked
		return nil
	}
	return apperror.NewNotFound("employee", employeeID)
}

func (r *fakeEmployeeRepo) ListByTenant(ctx context.Context, tenantID id.ID) ([]employee.Employee, error) {
	var out []employee.Employee
	for eid, e := range r.employees {
		if !e.IsActive || e.DeletionMark {
			continue
		}
		for _, t := range r.tenants[eid] {
			if t == tenantID {
				out = append(out, *e)
			}
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) LoadTenants(ctx context.Context, employeeID id.ID) ([]id.ID, error) {
	return r.tenants[employeeID], nil
}

func (r *fakeEmployeeRepo) AddToTenant(ctx context.Context, employeeID, tenantID id.ID) error {
	r.tenants[employeeID] = append(r.tenants[employeeID], tenantID)
	return nil
}

func (r *fakeEmployeeRepo) RemoveFromTenant(ctx context.Context, employeeID, tenantID id.ID) error {
	kept := r.tenants[employeeID][:0]
	for _, t := range r.tenants[employeeID] {
		if t != tenantID {
			kept = append(kept, t)
		}
	}
	r.tenants[employeeID] = kept
	return nil
}

func (r *fakeEmployeeRepo) CountActiveByTenant(ctx context.Context, tenantID id.ID) (int, error) {
	out, _ := r.ListByTenant(ctx, tenantID)
	return len(out), nil
}

type fakeCodes struct {
	next int
}

func (c *fakeCodes) NextCode(ctx context.Context, prefix string) (string, error) {
	c.next++
	return fmt.Sprintf("%s-%06d", prefix, c.next), nil
}

type fakeSeats struct{}

func (fakeSeats) EnsureSeatAvailable(ctx context.Context, tenantID id.ID) error { return nil }

// --- tests ---

func TestEmployeeHandler_ListByTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := employee.NewService(newFakeEmployeeRepo(), &fakeCodes{}, fakeSeats{}, nopTxManager{})
	handler := NewEmployeeHandler(NewBaseHandler(), svc)
	tenantID := id.New()

	_, err := svc.Create(context.Background(), id.New(), tenantID, auth.PositionEmployee)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), id.New(), tenantID, auth.PositionManager)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("GET", "/api/v1/employees", nil)
	c.Request = req.WithContext(appctx.WithPrincipal(req.Context(), &appctx.Principal{
		AccountID: id.New(),
		TenantID:  &tenantID,
	}))

	handler.ListByTenant(c)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
	assert.Contains(t, w.Body.String(), "EMP-000001")
}

func TestEmployeeHandler_ListByTenant_NoTenantSelected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := employee.NewService(newFakeEmployeeRepo(), &fakeCodes{}, fakeSeats{}, nopTxManager{})
	handler := NewEmployeeHandler(NewBaseHandler(), svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("GET", "/api/v1/employees", nil)
	c.Request = req.WithContext(appctx.WithPrincipal(req.Context(), &appctx.Principal{
		AccountID: id.New(),
	}))

	handler.ListByTenant(c)

	require.True(t, c.IsAborted())
	require.Len(t, c.Errors, 1)
	assert.True(t, apperror.IsUnauthorized(c.Errors[0].Err))
}
