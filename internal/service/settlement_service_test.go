package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/repository"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/helpers"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/logger"
)

var errNotImplemented = errors.New("not implemented")

type mockTransactionRepository struct {
	createFunc              func(ctx context.Context, txn *models.Transaction) error
	findByIDFunc            func(ctx context.Context, id string) (*models.Transaction, error)
	findByUserIDFunc        func(ctx context.Context, userID uint64) ([]*models.Transaction, error)
	hasVerifiedPurchaseFunc func(ctx context.Context, buyerID, listingID uint64) (bool, error)
	setPaymentReferenceFunc func(ctx context.Context, id, reference string) error
	verifyFunc              func(ctx context.Context, id string, verifiedAt time.Time) error
	verifyWithTransferFunc  func(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error
	rejectFunc              func(ctx context.Context, id string, rejectedAt time.Time) error
	findVerifiedBuyersFunc  func(ctx context.Context, sellerID uint64) ([]*models.BuyerDTO, error)
}

func (m *mockTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, txn)
	}
	return errNotImplemented
}

func (m *mockTransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockTransactionRepository) FindByUserID(ctx context.Context, userID uint64) ([]*models.Transaction, error) {
	if m.findByUserIDFunc != nil {
		return m.findByUserIDFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockTransactionRepository) HasVerifiedPurchase(ctx context.Context, buyerID, listingID uint64) (bool, error) {
	if m.hasVerifiedPurchaseFunc != nil {
		return m.hasVerifiedPurchaseFunc(ctx, buyerID, listingID)
	}
	return false, nil
}

func (m *mockTransactionRepository) SetPaymentReference(ctx context.Context, id, reference string) error {
	if m.setPaymentReferenceFunc != nil {
		return m.setPaymentReferenceFunc(ctx, id, reference)
	}
	return errNotImplemented
}

func (m *mockTransactionRepository) Verify(ctx context.Context, id string, verifiedAt time.Time) error {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, id, verifiedAt)
	}
	return errNotImplemented
}

func (m *mockTransactionRepository) VerifyWithTransfer(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error {
	if m.verifyWithTransferFunc != nil {
		return m.verifyWithTransferFunc(ctx, id, buyerID, sellerID, amount, verifiedAt)
	}
	return errNotImplemented
}

func (m *mockTransactionRepository) Reject(ctx context.Context, id string, rejectedAt time.Time) error {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, id, rejectedAt)
	}
	return errNotImplemented
}

func (m *mockTransactionRepository) FindVerifiedBuyers(ctx context.Context, sellerID uint64) ([]*models.BuyerDTO, error) {
	if m.findVerifiedBuyersFunc != nil {
		return m.findVerifiedBuyersFunc(ctx, sellerID)
	}
	return nil, errNotImplemented
}

type mockAccountRepository struct {
	getBalanceFunc func(ctx context.Context, userID uint64) (decimal.Decimal, error)
	transferFunc   func(ctx context.Context, fromID, toID uint64, amount decimal.Decimal) error
}

func (m *mockAccountRepository) GetBalance(ctx context.Context, userID uint64) (decimal.Decimal, error) {
	if m.getBalanceFunc != nil {
		return m.getBalanceFunc(ctx, userID)
	}
	return decimal.Zero, errNotImplemented
}

func (m *mockAccountRepository) Transfer(ctx context.Context, fromID, toID uint64, amount decimal.Decimal) error {
	if m.transferFunc != nil {
		return m.transferFunc(ctx, fromID, toID, amount)
	}
	return errNotImplemented
}

type mockListingRepository struct {
	createFunc   func(ctx context.Context, listing *models.SkillListing) error
	findByIDFunc func(ctx context.Context, id uint64) (*models.SkillListing, error)
	findAllFunc  func(ctx context.Context) ([]*models.SkillListing, error)
}

func (m *mockListingRepository) Create(ctx context.Context, listing *models.SkillListing) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, listing)
	}
	return errNotImplemented
}

func (m *mockListingRepository) FindByID(ctx context.Context, id uint64) (*models.SkillListing, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockListingRepository) FindAll(ctx context.Context) ([]*models.SkillListing, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return nil, errNotImplemented
}

type mockNotifier struct {
	events chan string
}

func (m *mockNotifier) TransactionEvent(ctx context.Context, txn *models.Transaction, event string) error {
	if m.events != nil {
		m.events <- event
	}
	return nil
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func testListing() *models.SkillListing {
	return &models.SkillListing{
		ID:               7,
		ProviderID:       2,
		Title:            "Guitar lessons",
		PriceRupees:      decPtr("500"),
		PriceTimeCredits: decPtr("40"),
	}
}

func newSettlementTestService(txnRepo *mockTransactionRepository, accountRepo *mockAccountRepository, listingRepo *mockListingRepository, notifier Notifier) SettlementService {
	return NewSettlementService(
		txnRepo,
		accountRepo,
		listingRepo,
		NewTradePolicy(txnRepo),
		notifier,
		helpers.NewIDGenerator(),
		logger.NewLogger("settlement-test"),
	)
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("TC purchase snapshots the price", func(t *testing.T) {
		var created *models.Transaction
		txnRepo := &mockTransactionRepository{
			createFunc: func(ctx context.Context, txn *models.Transaction) error {
				created = txn
				return nil
			},
		}
		listingRepo := &mockListingRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.SkillListing, error) {
				return testListing(), nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, listingRepo, nil)

		txn, err := svc.CreateTransaction(ctx, 1, 7, models.MethodTimeCredit)
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.True(t, strings.HasPrefix(txn.ID, "TRX-"))
		assert.Equal(t, uint64(1), txn.BuyerID)
		assert.Equal(t, uint64(2), txn.SellerID)
		assert.Equal(t, models.StatusPending, txn.Status)
		require.NotNil(t, txn.TCAmount)
		assert.Equal(t, "40", txn.TCAmount.String())
	})

	t.Run("no balance moves at creation", func(t *testing.T) {
		transferCalled := false
		txnRepo := &mockTransactionRepository{
			createFunc: func(ctx context.Context, txn *models.Transaction) error { return nil },
		}
		accountRepo := &mockAccountRepository{
			transferFunc: func(ctx context.Context, fromID, toID uint64, amount decimal.Decimal) error {
				transferCalled = true
				return nil
			},
		}
		listingRepo := &mockListingRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.SkillListing, error) {
				return testListing(), nil
			},
		}
		svc := newSettlementTestService(txnRepo, accountRepo, listingRepo, nil)

		_, err := svc.CreateTransaction(ctx, 1, 7, models.MethodTimeCredit)
		require.NoError(t, err)
		assert.False(t, transferCalled)
	})

	t.Run("UPI purchase carries no TC amount", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			createFunc: func(ctx context.Context, txn *models.Transaction) error { return nil },
		}
		listingRepo := &mockListingRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.SkillListing, error) {
				return testListing(), nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, listingRepo, nil)

		txn, err := svc.CreateTransaction(ctx, 1, 7, models.MethodUPI)
		require.NoError(t, err)
		assert.Nil(t, txn.TCAmount)
	})

	t.Run("buyer cannot buy own listing", func(t *testing.T) {
		listingRepo := &mockListingRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.SkillListing, error) {
				return testListing(), nil
			},
		}
		svc := newSettlementTestService(&mockTransactionRepository{}, &mockAccountRepository{}, listingRepo, nil)

		_, err := svc.CreateTransaction(ctx, 2, 7, models.MethodTimeCredit)
		assert.ErrorIs(t, err, models.ErrSelfTrade)
	})

	t.Run("verified purchase blocks a repeat buy", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			hasVerifiedPurchaseFunc: func(ctx context.Context, buyerID, listingID uint64) (bool, error) {
				return true, nil
			},
		}
		listingRepo := &mockListingRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.SkillListing, error) {
				return testListing(), nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, listingRepo, nil)

		_, err := svc.CreateTransaction(ctx, 1, 7, models.MethodTimeCredit)
		assert.ErrorIs(t, err, models.ErrDuplicatePurchase)
	})

	t.Run("TC needs a time-credit price on the listing", func(t *testing.T) {
		listingRepo := &mockListingRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.SkillListing, error) {
				listing := testListing()
				listing.PriceTimeCredits = nil
				return listing, nil
			},
		}
		svc := newSettlementTestService(&mockTransactionRepository{}, &mockAccountRepository{}, listingRepo, nil)

		_, err := svc.CreateTransaction(ctx, 1, 7, models.MethodTimeCredit)
		assert.ErrorIs(t, err, models.ErrUnsupportedMethod)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		svc := newSettlementTestService(&mockTransactionRepository{}, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.CreateTransaction(ctx, 1, 7, models.PaymentMethod("CASH"))
		assert.ErrorIs(t, err, models.ErrUnsupportedMethod)
	})
}

func pendingTransaction(method models.PaymentMethod) *models.Transaction {
	txn := &models.Transaction{
		ID:            "TRX-20260830-A1B2C3",
		BuyerID:       1,
		SellerID:      2,
		ListingID:     7,
		PaymentMethod: method,
		Status:        models.StatusPending,
		CreatedAt:     time.Now(),
	}
	if method == models.MethodTimeCredit {
		txn.TCAmount = decPtr("40")
	}
	return txn
}

func TestSubmitPaymentReference(t *testing.T) {
	ctx := context.Background()

	t.Run("buyer attaches the reference once", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodUPI), nil
			},
			setPaymentReferenceFunc: func(ctx context.Context, id, reference string) error {
				return nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		txn, err := svc.SubmitPaymentReference(ctx, "TRX-20260830-A1B2C3", 1, "pay_8x1")
		require.NoError(t, err)
		require.NotNil(t, txn.BuyerTxnID)
		assert.Equal(t, "pay_8x1", *txn.BuyerTxnID)
	})

	t.Run("only the buyer may submit", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodUPI), nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.SubmitPaymentReference(ctx, "TRX-20260830-A1B2C3", 2, "pay_8x1")
		assert.ErrorIs(t, err, models.ErrNotAuthorized)
	})

	t.Run("TC transactions take no reference", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodTimeCredit), nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.SubmitPaymentReference(ctx, "TRX-20260830-A1B2C3", 1, "pay_8x1")
		assert.ErrorIs(t, err, models.ErrInapplicableMethod)
	})

	t.Run("second submission fails", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				txn := pendingTransaction(models.MethodUPI)
				txn.BuyerTxnID = strPtr("pay_8x1")
				return txn, nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.SubmitPaymentReference(ctx, "TRX-20260830-A1B2C3", 1, "pay_9y2")
		assert.ErrorIs(t, err, models.ErrReferenceAlreadySet)
	})

	t.Run("write-once race surfaces from the repository", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodUPI), nil
			},
			setPaymentReferenceFunc: func(ctx context.Context, id, reference string) error {
				return models.ErrReferenceAlreadySet
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.SubmitPaymentReference(ctx, "TRX-20260830-A1B2C3", 1, "pay_9y2")
		assert.ErrorIs(t, err, models.ErrReferenceAlreadySet)
	})
}

func TestVerifyTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("TC verify runs the atomic transfer with the snapshot amount", func(t *testing.T) {
		var gotBuyer, gotSeller uint64
		var gotAmount decimal.Decimal
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodTimeCredit), nil
			},
			verifyWithTransferFunc: func(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error {
				gotBuyer, gotSeller, gotAmount = buyerID, sellerID, amount
				return nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		txn, err := svc.Verify(ctx, "TRX-20260830-A1B2C3", 2)
		require.NoError(t, err)

		assert.Equal(t, models.StatusVerified, txn.Status)
		assert.NotNil(t, txn.VerifiedAt)
		assert.Equal(t, uint64(1), gotBuyer)
		assert.Equal(t, uint64(2), gotSeller)
		assert.Equal(t, "40", gotAmount.String())
	})

	t.Run("UPI verify moves no credits", func(t *testing.T) {
		verified := false
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				txn := pendingTransaction(models.MethodUPI)
				txn.BuyerTxnID = strPtr("pay_8x1")
				return txn, nil
			},
			verifyFunc: func(ctx context.Context, id string, verifiedAt time.Time) error {
				verified = true
				return nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		txn, err := svc.Verify(ctx, "TRX-20260830-A1B2C3", 2)
		require.NoError(t, err)
		assert.True(t, verified)
		assert.Equal(t, models.StatusVerified, txn.Status)
	})

	t.Run("only the seller may verify", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodTimeCredit), nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.Verify(ctx, "TRX-20260830-A1B2C3", 1)
		assert.ErrorIs(t, err, models.ErrNotAuthorized)
	})

	t.Run("UPI verify requires the buyer reference", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodUPI), nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.Verify(ctx, "TRX-20260830-A1B2C3", 2)
		assert.ErrorIs(t, err, models.ErrMissingReference)
	})

	t.Run("verified transaction stays verified", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				txn := pendingTransaction(models.MethodTimeCredit)
				txn.Status = models.StatusVerified
				return txn, nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.Verify(ctx, "TRX-20260830-A1B2C3", 2)
		assert.ErrorIs(t, err, models.ErrAlreadyVerified)
	})

	t.Run("insufficient balance leaves the transaction pending", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodTimeCredit), nil
			},
			verifyWithTransferFunc: func(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error {
				return models.ErrInsufficientBalance
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.Verify(ctx, "TRX-20260830-A1B2C3", 2)
		assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	})

	t.Run("race loser learns which terminal state won", func(t *testing.T) {
		calls := 0
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				calls++
				txn := pendingTransaction(models.MethodTimeCredit)
				if calls > 1 {
					txn.Status = models.StatusRejected
				}
				return txn, nil
			},
			verifyWithTransferFunc: func(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error {
				return repository.ErrNotPending
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.Verify(ctx, "TRX-20260830-A1B2C3", 2)
		assert.ErrorIs(t, err, models.ErrAlreadyRejected)
	})
}

func TestRejectTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("seller rejects a pending transaction", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodTimeCredit), nil
			},
			rejectFunc: func(ctx context.Context, id string, rejectedAt time.Time) error {
				return nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		txn, err := svc.Reject(ctx, "TRX-20260830-A1B2C3", 2)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, txn.Status)
		assert.NotNil(t, txn.RejectedAt)
	})

	t.Run("reject after verify fails", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				txn := pendingTransaction(models.MethodTimeCredit)
				txn.Status = models.StatusVerified
				return txn, nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.Reject(ctx, "TRX-20260830-A1B2C3", 2)
		assert.ErrorIs(t, err, models.ErrAlreadyVerified)
	})

	t.Run("only the seller may reject", func(t *testing.T) {
		txnRepo := &mockTransactionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
				return pendingTransaction(models.MethodTimeCredit), nil
			},
		}
		svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

		_, err := svc.Reject(ctx, "TRX-20260830-A1B2C3", 1)
		assert.ErrorIs(t, err, models.ErrNotAuthorized)
	})
}

// settlementLedger backs VerifyWithTransfer with real balances so the
// conservation of value across a verify can be asserted end to end.
type settlementLedger struct {
	mu        sync.Mutex
	status    models.SettlementStatus
	balances  map[uint64]decimal.Decimal
	transfers int
}

func (l *settlementLedger) verifyWithTransfer(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != models.StatusPending {
		return repository.ErrNotPending
	}
	if l.balances[buyerID].LessThan(amount) {
		return models.ErrInsufficientBalance
	}

	l.status = models.StatusVerified
	l.balances[buyerID] = l.balances[buyerID].Sub(amount)
	l.balances[sellerID] = l.balances[sellerID].Add(amount)
	l.transfers++
	return nil
}

func (l *settlementLedger) findByID(ctx context.Context, id string) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := pendingTransaction(models.MethodTimeCredit)
	txn.Status = l.status
	return txn, nil
}

func TestVerifyConservesValue(t *testing.T) {
	ledger := &settlementLedger{
		status: models.StatusPending,
		balances: map[uint64]decimal.Decimal{
			1: decimal.NewFromInt(100),
			2: decimal.NewFromInt(100),
		},
	}
	txnRepo := &mockTransactionRepository{
		findByIDFunc:           ledger.findByID,
		verifyWithTransferFunc: ledger.verifyWithTransfer,
	}
	svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

	_, err := svc.Verify(context.Background(), "TRX-20260830-A1B2C3", 2)
	require.NoError(t, err)

	assert.Equal(t, "60", ledger.balances[1].String())
	assert.Equal(t, "140", ledger.balances[2].String())
	assert.Equal(t, "200", ledger.balances[1].Add(ledger.balances[2]).String())
}

func TestConcurrentVerifyTransfersOnce(t *testing.T) {
	ledger := &settlementLedger{
		status: models.StatusPending,
		balances: map[uint64]decimal.Decimal{
			1: decimal.NewFromInt(100),
			2: decimal.NewFromInt(100),
		},
	}
	txnRepo := &mockTransactionRepository{
		findByIDFunc:           ledger.findByID,
		verifyWithTransferFunc: ledger.verifyWithTransfer,
	}
	svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, nil)

	const attempts = 8
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Verify(context.Background(), "TRX-20260830-A1B2C3", 2)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, models.ErrAlreadyVerified)
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, ledger.transfers)
	assert.Equal(t, "60", ledger.balances[1].String())
	assert.Equal(t, "140", ledger.balances[2].String())
}

func TestSettlementEventsReachTheNotifier(t *testing.T) {
	notifier := &mockNotifier{events: make(chan string, 1)}
	txnRepo := &mockTransactionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*models.Transaction, error) {
			return pendingTransaction(models.MethodTimeCredit), nil
		},
		verifyWithTransferFunc: func(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error {
			return nil
		},
	}
	svc := newSettlementTestService(txnRepo, &mockAccountRepository{}, &mockListingRepository{}, notifier)

	_, err := svc.Verify(context.Background(), "TRX-20260830-A1B2C3", 2)
	require.NoError(t, err)

	select {
	case event := <-notifier.events:
		assert.Equal(t, "verified", event)
	case <-time.After(time.Second):
		t.Fatal("expected a settlement event")
	}
}
