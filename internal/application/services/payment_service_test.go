package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

type MockPaymentProvider struct {
	mock.Mock
	name string
}

func (m *MockPaymentProvider) Name() string {
	return m.name
}

func (m *MockPaymentProvider) CreateSession(ctx context.Context, req providers.CheckoutRequest) (*providers.PaymentSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PaymentSession), args.Error(1)
}

func (m *MockPaymentProvider) VerifyCapture(ctx context.Context, ref string) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

type stubRegistry struct {
	provider providers.PaymentProvider
}

func (r *stubRegistry) Get(name string) (providers.PaymentProvider, error) {
	if r.provider == nil || r.provider.Name() != name {
		return nil, apperrors.NewValidationError("unknown payment provider")
	}
	return r.provider, nil
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) PublishPaymentEvent(ctx context.Context, event *entities.PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventBus) SubscribePaymentEvents(ctx context.Context) (<-chan *entities.PaymentEvent, error) {
	args := m.Called(ctx)
	return args.Get(0).(<-chan *entities.PaymentEvent), args.Error(1)
}

func (m *MockEventBus) Close() error {
	return nil
}

func unpaidAppointment() *entities.Appointment {
	return &entities.Appointment{
		ID:         "appt-1",
		UserID:     "user-1",
		UserEmail:  "jane@example.test",
		DoctorName: "Dr. Richard James",
		SlotTime:   "10:30 AM",
		Amount:     5000,
		Currency:   "USD",
	}
}

func TestPaymentService_InitiateCheckout(t *testing.T) {
	t.Run("creates session and stores reference", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		provider := &MockPaymentProvider{name: "stripe"}
		service := services.NewPaymentService(repo, &stubRegistry{provider: provider}, nil, nil)

		repo.On("GetByID", mock.Anything, "appt-1").Return(unpaidAppointment(), nil)
		provider.On("CreateSession", mock.Anything, mock.MatchedBy(func(req providers.CheckoutRequest) bool {
			return req.AppointmentID == "appt-1" && req.Amount == 5000 && req.Currency == "USD"
		})).Return(&providers.PaymentSession{Ref: "cs_123", RedirectURL: "https://pay.test/cs_123"}, nil)
		repo.On("SetPaymentRef", mock.Anything, "appt-1", "stripe", "cs_123").Return(nil)

		session, err := service.InitiateCheckout(context.Background(), "user-1", "stripe", services.CheckoutInput{
			AppointmentID: "appt-1",
		})

		assert.NoError(t, err)
		assert.Equal(t, "cs_123", session.Ref)
		repo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("rejects already paid appointment", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		provider := &MockPaymentProvider{name: "stripe"}
		service := services.NewPaymentService(repo, &stubRegistry{provider: provider}, nil, nil)

		appointment := unpaidAppointment()
		appointment.Paid = true
		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)

		_, err := service.InitiateCheckout(context.Background(), "user-1", "stripe", services.CheckoutInput{
			AppointmentID: "appt-1",
		})

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAlreadyPaid))
		provider.AssertNotCalled(t, "CreateSession")
	})

	t.Run("rejects cancelled appointment", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := services.NewPaymentService(repo, &stubRegistry{}, nil, nil)

		appointment := unpaidAppointment()
		appointment.Cancelled = true
		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)

		_, err := service.InitiateCheckout(context.Background(), "user-1", "stripe", services.CheckoutInput{
			AppointmentID: "appt-1",
		})

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAlreadyCancelled))
	})

	t.Run("rejects foreign appointment", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := services.NewPaymentService(repo, &stubRegistry{}, nil, nil)

		repo.On("GetByID", mock.Anything, "appt-1").Return(unpaidAppointment(), nil)

		_, err := service.InitiateCheckout(context.Background(), "other-user", "stripe", services.CheckoutInput{
			AppointmentID: "appt-1",
		})

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}

func TestPaymentService_Reconcile(t *testing.T) {
	t.Run("confirms verified capture and publishes event", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		provider := &MockPaymentProvider{name: "stripe"}
		eventBus := new(MockEventBus)
		service := services.NewPaymentService(repo, &stubRegistry{provider: provider}, eventBus, nil)

		appointment := unpaidAppointment()
		appointment.PaymentProvider = "stripe"
		appointment.PaymentRef = "cs_123"

		paid := unpaidAppointment()
		paid.PaymentProvider = "stripe"
		paid.PaymentRef = "cs_123"
		paid.Paid = true

		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil).Once()
		provider.On("VerifyCapture", mock.Anything, "cs_123").Return(true, nil)
		repo.On("ConfirmPayment", mock.Anything, "appt-1", "jane@example.test").Return(true, nil)
		eventBus.On("PublishPaymentEvent", mock.Anything, mock.MatchedBy(func(e *entities.PaymentEvent) bool {
			return e.Type == entities.PaymentEventConfirmed && e.AppointmentID == "appt-1"
		})).Return(nil)
		repo.On("GetByID", mock.Anything, "appt-1").Return(paid, nil).Once()

		result, err := service.Reconcile(context.Background(), "user-1", "stripe", "appt-1")

		assert.NoError(t, err)
		assert.True(t, result.Paid)
		repo.AssertExpectations(t)
		eventBus.AssertExpectations(t)
	})

	t.Run("repeat reconcile is idempotent and skips provider", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		provider := &MockPaymentProvider{name: "stripe"}
		service := services.NewPaymentService(repo, &stubRegistry{provider: provider}, nil, nil)

		appointment := unpaidAppointment()
		appointment.Paid = true
		appointment.PaymentProvider = "stripe"
		appointment.PaymentRef = "cs_123"
		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)

		result, err := service.Reconcile(context.Background(), "user-1", "stripe", "appt-1")

		assert.NoError(t, err)
		assert.True(t, result.Paid)
		provider.AssertNotCalled(t, "VerifyCapture")
		repo.AssertNotCalled(t, "ConfirmPayment")
	})

	t.Run("never trusts client when provider says unpaid", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		provider := &MockPaymentProvider{name: "stripe"}
		service := services.NewPaymentService(repo, &stubRegistry{provider: provider}, nil, nil)

		appointment := unpaidAppointment()
		appointment.PaymentProvider = "stripe"
		appointment.PaymentRef = "cs_123"
		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)
		provider.On("VerifyCapture", mock.Anything, "cs_123").Return(false, nil)

		_, err := service.Reconcile(context.Background(), "user-1", "stripe", "appt-1")

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		repo.AssertNotCalled(t, "ConfirmPayment")
	})

	t.Run("rejects reconcile with a different provider", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		provider := &MockPaymentProvider{name: "paypal"}
		service := services.NewPaymentService(repo, &stubRegistry{provider: provider}, nil, nil)

		appointment := unpaidAppointment()
		appointment.PaymentProvider = "stripe"
		appointment.PaymentRef = "cs_123"
		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)

		_, err := service.Reconcile(context.Background(), "user-1", "paypal", "appt-1")

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects reconcile without a checkout session", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := services.NewPaymentService(repo, &stubRegistry{}, nil, nil)

		repo.On("GetByID", mock.Anything, "appt-1").Return(unpaidAppointment(), nil)

		_, err := service.Reconcile(context.Background(), "user-1", "stripe", "appt-1")

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}
