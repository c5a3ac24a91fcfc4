package booking

import (
	"io"
	"log/slog"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/kallbadhuset/bastubokning/internal/mailer"
	"github.com/kallbadhuset/bastubokning/internal/mocks"
)

type testDeps struct {
	slots        *mocks.MockSlotRepo
	bookings     *mocks.MockBookingRepo
	coupons      *mocks.MockCouponRepo
	transactions *mocks.MockTransactionRepo
	users        *mocks.MockUserRepo
	accessCodes  *mocks.MockAccessProvider
	locker       *mocks.MockSlotLocker
	idempotency  *mocks.MockIdempotencyGuard
	gateway      *mocks.MockPaymentGateway
	mailer       *mailer.MockMailer
}

func newTestDeps() *testDeps {
	return &testDeps{
		slots:        new(mocks.MockSlotRepo),
		bookings:     new(mocks.MockBookingRepo),
		coupons:      new(mocks.MockCouponRepo),
		transactions: new(mocks.MockTransactionRepo),
		users:        new(mocks.MockUserRepo),
		accessCodes:  new(mocks.MockAccessProvider),
		locker:       new(mocks.MockSlotLocker),
		idempotency:  new(mocks.MockIdempotencyGuard),
		gateway:      new(mocks.MockPaymentGateway),
		mailer:       mailer.NewMockMailer(),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (d *testDeps) newFinalizer() *Finalizer {
	return NewFinalizer(FinalizerOptions{
		Logger:       testLogger(),
		Slots:        d.slots,
		Bookings:     d.bookings,
		Coupons:      d.coupons,
		Transactions: d.transactions,
		Users:        d.users,
		AccessCodes:  d.accessCodes,
		Locker:       d.locker,
		Idempotency:  d.idempotency,
		Mailer:       d.mailer,
	})
}

func (d *testDeps) newCanceller(now func() time.Time) *Canceller {
	return NewCanceller(CancellerOptions{
		Logger:   testLogger(),
		Bookings: d.bookings,
		Slots:    d.slots,
		Coupons:  d.coupons,
		Gateway:  d.gateway,
		Mailer:   d.mailer,
		Now:      now,
	})
}

func testSlot(available int) *domain.Slot {
	start := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
	return &domain.Slot{
		ID:             42,
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
		TotalSeats:     8,
		AvailableSeats: available,
	}
}

func testOrder(seats int) domain.Order {
	return domain.Order{
		SlotID: 42,
		Seats:  seats,
		Email:  "Bather@Example.com",
		Phone:  "0701234567",
	}
}

func testUser() *domain.User {
	return &domain.User{ID: "user-1", Email: "bather@example.com", Phone: "0701234567"}
}

func paidTransaction(id string, order domain.Order) *domain.Transaction {
	return &domain.Transaction{
		ID:     id,
		Order:  order,
		Status: domain.TransactionStatusPaid,
	}
}
