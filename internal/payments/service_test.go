package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haulport/logistics-backend/internal/orders"
	"github.com/haulport/logistics-backend/pkg/common"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateIntent(ctx context.Context, i *Intent) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockRepository) GetIntentByReference(ctx context.Context, reference string) (*Intent, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Intent), args.Error(1)
}

func (m *MockRepository) SettleIntent(ctx context.Context, intentID, orderID uuid.UUID, status IntentStatus, orderPaymentStatus string) error {
	args := m.Called(ctx, intentID, orderID, status, orderPaymentStatus)
	return args.Error(0)
}

func (m *MockRepository) MarkOrderPaymentPending(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) GetByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func unpaidOrder(customerID uuid.UUID) *orders.Order {
	return &orders.Order{
		ID:            uuid.New(),
		Code:          "DP-2026-0042",
		CustomerID:    customerID,
		Amount:        2500.00,
		TipAmount:     150.00,
		Currency:      "NGN",
		PaymentStatus: orders.PaymentStatusUnpaid,
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestInitializeRejectsForeignOrder(t *testing.T) {
	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	svc := NewService(repo, orderReader, nil, NewRedirectProvider("http://gateway.invalid", "secret"))

	order := unpaidOrder(uuid.New())
	orderReader.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Initialize(context.Background(), uuid.New(), &InitializeRequest{
		OrderID: order.ID,
		Method:  MethodRedirect,
	})

	assertAppErrorCode(t, err, common.CodeNotFound)
	repo.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestInitializeRejectsPaidOrder(t *testing.T) {
	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	svc := NewService(repo, orderReader, nil, NewRedirectProvider("http://gateway.invalid", "secret"))

	customerID := uuid.New()
	order := unpaidOrder(customerID)
	order.PaymentStatus = orders.PaymentStatusPaid
	orderReader.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Initialize(context.Background(), customerID, &InitializeRequest{
		OrderID: order.ID,
		Method:  MethodRedirect,
	})

	assertAppErrorCode(t, err, common.CodeInvalidStateTransition)
}

func TestInitializeChargesOrderPlusTip(t *testing.T) {
	var got redirectInitPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(redirectInitResponse{
			Reference:  got.Reference,
			PaymentURL: "https://pay.example.com/" + got.Reference,
		})
	}))
	defer server.Close()

	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	svc := NewService(repo, orderReader, nil, NewRedirectProvider(server.URL, "secret"))

	customerID := uuid.New()
	order := unpaidOrder(customerID)
	orderReader.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	repo.On("CreateIntent", mock.Anything, mock.AnythingOfType("*payments.Intent")).Return(nil)
	repo.On("MarkOrderPaymentPending", mock.Anything, order.ID).Return(nil)

	intent, err := svc.Initialize(context.Background(), customerID, &InitializeRequest{
		OrderID: order.ID,
		Method:  MethodRedirect,
	})

	require.NoError(t, err)
	assert.Equal(t, 2650.00, got.Amount)
	assert.Equal(t, "NGN", got.Currency)
	assert.Equal(t, order.Code, got.Metadata["order_code"])
	assert.Equal(t, 2650.00, intent.Amount)
	assert.Equal(t, IntentPending, intent.Status)
	assert.NotEmpty(t, intent.RedirectURL)
	repo.AssertExpectations(t)
}

func TestInitializeUnconfiguredProviderIsUnsupported(t *testing.T) {
	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	svc := NewService(repo, orderReader, nil, NewRedirectProvider("http://gateway.invalid", "secret"))

	customerID := uuid.New()
	order := unpaidOrder(customerID)
	orderReader.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Initialize(context.Background(), customerID, &InitializeRequest{
		OrderID: order.ID,
		Method:  MethodCard,
	})

	assertAppErrorCode(t, err, common.CodeBadRequest)
	repo.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestCardWebhookWithoutCardProvider(t *testing.T) {
	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	svc := NewService(repo, orderReader, nil, NewRedirectProvider("http://gateway.invalid", "secret"))

	err := svc.HandleCardWebhook(context.Background(), []byte(`{}`), "t=1,v1=deadbeef")

	assertAppErrorCode(t, err, common.CodeBadRequest)
}

func TestInitializeGatewayRejectionSurfacesUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	svc := NewService(repo, orderReader, nil, NewRedirectProvider(server.URL, "secret"))

	customerID := uuid.New()
	order := unpaidOrder(customerID)
	orderReader.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Initialize(context.Background(), customerID, &InitializeRequest{
		OrderID: order.ID,
		Method:  MethodRedirect,
	})

	assertAppErrorCode(t, err, common.CodeServiceUnavailable)
	repo.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestVerifySettlesSuccessfulCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(redirectStatusResponse{
			Reference: "ref-123",
			Status:    "success",
		})
	}))
	defer server.Close()

	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	svc := NewService(repo, orderReader, nil, NewRedirectProvider(server.URL, "secret"))

	intent := &Intent{
		ID:        uuid.New(),
		OrderID:   uuid.New(),
		Provider:  "redirect",
		Reference: "ref-123",
		Status:    IntentPending,
	}
	repo.On("GetIntentByReference", mock.Anything, "ref-123").Return(intent, nil)
	repo.On("SettleIntent", mock.Anything, intent.ID, intent.OrderID, IntentSucceeded, string(orders.PaymentStatusPaid)).Return(nil)

	settled, err := svc.Verify(context.Background(), "ref-123")

	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, settled.Status)
	repo.AssertExpectations(t)
}

func TestVerifyUnknownReference(t *testing.T) {
	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	svc := NewService(repo, orderReader, nil, NewRedirectProvider("http://gateway.invalid", "secret"))

	repo.On("GetIntentByReference", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.Verify(context.Background(), "missing")

	assertAppErrorCode(t, err, common.CodeNotFound)
}

func TestCardWebhookRejectsBadSignature(t *testing.T) {
	repo := new(MockRepository)
	orderReader := new(MockOrderReader)
	card := NewCardProvider("sk_test_xxx", "whsec_testsecret")
	svc := NewService(repo, orderReader, card, NewRedirectProvider("http://gateway.invalid", "secret"))

	err := svc.HandleCardWebhook(context.Background(), []byte(`{"type":"payment_intent.succeeded"}`), "t=1,v1=deadbeef")

	assertAppErrorCode(t, err, common.CodeUnauthorized)
	repo.AssertNotCalled(t, "GetIntentByReference", mock.Anything, mock.Anything)
}
