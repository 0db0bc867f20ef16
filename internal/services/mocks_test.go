package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/taxmint/backend/internal/gateway"
)

// MockPaymentGateway is a testify mock for the PaymentGateway interface
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Initialize(ctx context.Context, amount int64, email, callbackURL string) (*gateway.InitResult, error) {
	args := m.Called(ctx, amount, email, callbackURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitResult), args.Error(1)
}

func (m *MockPaymentGateway) Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.VerifyResult), args.Error(1)
}
