package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"busline/pkg/auth"
	apperrors "busline/pkg/errors"
	"busline/pkg/logger"
	"busline/pkg/middleware"
	"busline/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	testSecret    = "payment-handler-test-secret"
	testPaymentID = "64f200000000000000000001"
	ownerUserID   = "64f000000000000000000001"
	otherUserID   = "64f000000000000000000002"
)

type mockPaymentService struct {
	reserveFunc   func(ctx context.Context, userID string, req *model.ReservationRequest) (*model.ReservationResult, error)
	getByIDFunc   func(ctx context.Context, id string) (*model.Payment, error)
	getByUserFunc func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Payment, int64, error)
}

func (m *mockPaymentService) Reserve(ctx context.Context, userID string, req *model.ReservationRequest) (*model.ReservationResult, error) {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, userID, req)
	}
	return nil, apperrors.Internal("not implemented", nil)
}

func (m *mockPaymentService) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.Internal("not implemented", nil)
}

func (m *mockPaymentService) GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Payment, int64, error) {
	if m.getByUserFunc != nil {
		return m.getByUserFunc(ctx, userID, limit, offset)
	}
	return nil, 0, apperrors.Internal("not implemented", nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func newPaymentRouter(t *testing.T, service *mockPaymentService) *httprouter.Router {
	t.Helper()

	log := testLogger()
	authn := middleware.NewAuthenticator(testSecret, log)
	handler := NewPaymentHandler(service, authn, log)

	router := httprouter.New()
	handler.RegisterRoutes(router)
	return router
}

func bearerFor(t *testing.T, userID, role string) string {
	t.Helper()

	token, err := auth.NewAccessToken(testSecret, userID, role, time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}
	return "Bearer " + token.Token
}

func ledgerService() *mockPaymentService {
	return &mockPaymentService{
		getByIDFunc: func(_ context.Context, id string) (*model.Payment, error) {
			if id != testPaymentID {
				return nil, apperrors.NotFoundWithID("Payment", id)
			}
			return &model.Payment{
				ID:       testPaymentID,
				UserID:   ownerUserID,
				BusID:    "64f100000000000000000001",
				Amount:   99.0,
				Quantity: 2,
				Success:  true,
			}, nil
		},
	}
}

func TestGetByID_OwnerSeesPayment(t *testing.T) {
	router := newPaymentRouter(t, ledgerService())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/id/"+testPaymentID, nil)
	req.Header.Set("Authorization", bearerFor(t, ownerUserID, "user"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGetByID_AdminSeesAnyPayment(t *testing.T) {
	router := newPaymentRouter(t, ledgerService())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/id/"+testPaymentID, nil)
	req.Header.Set("Authorization", bearerFor(t, otherUserID, "admin"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGetByID_ForeignAndAbsentIDsAreIndistinguishable(t *testing.T) {
	router := newPaymentRouter(t, ledgerService())

	foreign := httptest.NewRequest(http.MethodGet, "/api/v1/payments/id/"+testPaymentID, nil)
	foreign.Header.Set("Authorization", bearerFor(t, otherUserID, "user"))
	foreignRec := httptest.NewRecorder()
	router.ServeHTTP(foreignRec, foreign)

	absent := httptest.NewRequest(http.MethodGet, "/api/v1/payments/id/64f2ffffffffffffffffffff", nil)
	absent.Header.Set("Authorization", bearerFor(t, otherUserID, "user"))
	absentRec := httptest.NewRecorder()
	router.ServeHTTP(absentRec, absent)

	if foreignRec.Code != http.StatusNotFound {
		t.Errorf("foreign payment status = %d, want %d", foreignRec.Code, http.StatusNotFound)
	}
	if absentRec.Code != http.StatusNotFound {
		t.Errorf("absent payment status = %d, want %d", absentRec.Code, http.StatusNotFound)
	}
	if foreignRec.Code != absentRec.Code {
		t.Errorf("foreign (%d) and absent (%d) ids must be indistinguishable", foreignRec.Code, absentRec.Code)
	}
}

func TestGetByUser_ForeignLedgerIsForbidden(t *testing.T) {
	router := newPaymentRouter(t, &mockPaymentService{
		getByUserFunc: func(_ context.Context, _ string, _ int, _ int64) ([]*model.Payment, int64, error) {
			t.Error("service should not be reached for a foreign ledger")
			return nil, 0, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/user/"+ownerUserID, nil)
	req.Header.Set("Authorization", bearerFor(t, otherUserID, "user"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
