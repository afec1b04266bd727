package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

type MockLedgerEngine struct {
	mock.Mock
}

func (m *MockLedgerEngine) Transfer(ctx context.Context, sender models.Identity, req ledger.TransferRequest) (*models.Transaction, error) {
	args := m.Called(ctx, sender, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerEngine) Purchase(ctx context.Context, buyer models.Identity, productID string) (*models.Transaction, error) {
	args := m.Called(ctx, buyer, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerEngine) Mint(ctx context.Context, admin models.Identity, amount decimal.Decimal, c models.Currency) (*models.Transaction, error) {
	args := m.Called(ctx, admin, amount, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerEngine) CreditAccount(ctx context.Context, admin models.Identity, targetEmail string, amount decimal.Decimal, c models.Currency) (*models.Transaction, error) {
	args := m.Called(ctx, admin, targetEmail, amount, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyAll(ctx context.Context) (*ledger.VerifyReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.VerifyReport), args.Error(1)
}
