package app

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kallbadhuset/bastubokning/api"
	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/kallbadhuset/bastubokning/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func TestParseCouponProduct(t *testing.T) {
	tests := []struct {
		product  string
		wantType domain.CouponType
		wantUses int
		wantOk   bool
	}{
		{product: "Klippkort 10 bad", wantType: domain.CouponTypePunchCard, wantUses: 10, wantOk: true},
		{product: "Klippkort 5 bad", wantType: domain.CouponTypePunchCard, wantUses: 5, wantOk: true},
		{product: "Årskort", wantType: domain.CouponTypeSeasonPass, wantUses: seasonPassUses, wantOk: true},
		{product: "Periodkort vinter", wantType: domain.CouponTypeSeasonPass, wantUses: seasonPassUses, wantOk: true},
		{product: "Presentkort", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			couponType, uses, ok := parseCouponProduct(tt.product)

			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.wantType, couponType)
				assert.Equal(t, tt.wantUses, uses)
			}
		})
	}
}

func TestNewCouponCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := newCouponCode()
		assert.Len(t, code, 4)
	}
}

type CouponsTestSuite struct {
	suite.Suite
	app             *application
	couponRepo      *mocks.MockCouponRepo
	transactionRepo *mocks.MockTransactionRepo
	userRepo        *mocks.MockUserRepo
}

func (s *CouponsTestSuite) SetupTest() {
	s.couponRepo = new(mocks.MockCouponRepo)
	s.transactionRepo = new(mocks.MockTransactionRepo)
	s.userRepo = new(mocks.MockUserRepo)

	s.app = newTestApplication(func(a *application) {
		a.couponRepo = s.couponRepo
		a.transactionRepo = s.transactionRepo
		a.userRepo = s.userRepo
	})
}

func TestCouponsSuite(t *testing.T) {
	suite.Run(t, new(CouponsTestSuite))
}

func (s *CouponsTestSuite) TestListCouponsHandler() {
	s.Run("should reject a missing email parameter", func() {
		s.SetupTest()

		w, r := executeRequest(s.T(), http.MethodGet, "/coupons", nil)

		s.app.ListCouponsHandler(w, r)

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("should list the holder's active coupons without codes", func() {
		s.SetupTest()

		coupons := []domain.Coupon{
			{ID: 5, Type: domain.CouponTypePunchCard, Code: "1234", RemainingUses: 3, TotalUses: 10},
		}

		s.couponRepo.On("ListActiveByEmail", mock.Anything, "bather@example.com").Return(coupons, nil).Once()

		w, r := executeRequest(s.T(), http.MethodGet, "/coupons?email=Bather@Example.com", nil)

		s.app.ListCouponsHandler(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.CouponsResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Require().Len(resp.Coupons, 1)
		s.Equal(5, resp.Coupons[0].Id)
		s.Equal(3, resp.Coupons[0].RemainingUses)

		s.NotContains(w.Body.String(), "1234")
	})
}

func (s *CouponsTestSuite) TestCreateCouponHandler() {
	request := func(product string) api.CreateCouponRequest {
		return api.CreateCouponRequest{
			Order:            validOrderRequest(),
			PaymentRequestId: testTxID,
			Product:          product,
			StartDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			ExpiryDate:       time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	s.Run("should reject an unknown product", func() {
		s.SetupTest()

		w, r := executeRequest(s.T(), http.MethodPost, "/coupons", request("Presentkort"))

		s.app.CreateCouponHandler(w, r)

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("should report failure while the payment is not confirmed", func() {
		s.SetupTest()

		s.transactionRepo.On("GetByID", mock.Anything, testTxID).
			Return(&domain.Transaction{ID: testTxID, Status: domain.TransactionStatusPending}, nil).Once()

		w, r := executeRequest(s.T(), http.MethodPost, "/coupons", request("Klippkort 10 bad"))

		s.app.CreateCouponHandler(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.CouponResultResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.False(resp.Success)
		s.couponRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	})

	s.Run("should return the coupon already bought with the transaction", func() {
		s.SetupTest()

		existing := &domain.Coupon{ID: 77, Type: domain.CouponTypePunchCard, RemainingUses: 10, TotalUses: 10, TransactionID: testTxID}

		s.transactionRepo.On("GetByID", mock.Anything, testTxID).
			Return(&domain.Transaction{ID: testTxID, Status: domain.TransactionStatusPaid}, nil).Once()
		s.couponRepo.On("GetByTransactionID", mock.Anything, testTxID).Return(existing, nil).Once()

		w, r := executeRequest(s.T(), http.MethodPost, "/coupons", request("Klippkort 10 bad"))

		s.app.CreateCouponHandler(w, r)

		s.Equal(http.StatusCreated, w.Code)

		var resp api.CouponResultResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.True(resp.Success)
		s.Equal(77, resp.Coupon.Id)

		s.couponRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	})

	s.Run("should create a punch card for a paid transaction", func() {
		s.SetupTest()

		s.transactionRepo.On("GetByID", mock.Anything, testTxID).
			Return(&domain.Transaction{ID: testTxID, Status: domain.TransactionStatusPaid}, nil).Once()
		s.couponRepo.On("GetByTransactionID", mock.Anything, testTxID).
			Return(nil, domain.ErrRecordNotFound).Once()
		s.userRepo.On("GetOrCreateByEmail", mock.Anything, "bather@example.com", "0701234567").
			Return(&domain.User{ID: "user-1", Email: "bather@example.com"}, nil).Once()
		s.couponRepo.On("Create", mock.Anything, mock.MatchedBy(func(coupon *domain.Coupon) bool {
			return coupon.Type == domain.CouponTypePunchCard &&
				coupon.RemainingUses == 10 &&
				coupon.TotalUses == 10 &&
				coupon.TransactionID == testTxID &&
				len(coupon.Code) == 4
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Coupon).ID = 78
		}).Return(nil).Once()

		w, r := executeRequest(s.T(), http.MethodPost, "/coupons", request("Klippkort 10 bad"))

		s.app.CreateCouponHandler(w, r)

		s.Equal(http.StatusCreated, w.Code)

		var resp api.CouponResultResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.True(resp.Success)
		s.Equal(78, resp.Coupon.Id)
		s.couponRepo.AssertExpectations(s.T())
	})

	s.Run("should create a season pass with the fixed use budget", func() {
		s.SetupTest()

		s.transactionRepo.On("GetByID", mock.Anything, testTxID).
			Return(&domain.Transaction{ID: testTxID, Status: domain.TransactionStatusPaid}, nil).Once()
		s.couponRepo.On("GetByTransactionID", mock.Anything, testTxID).
			Return(nil, domain.ErrRecordNotFound).Once()
		s.userRepo.On("GetOrCreateByEmail", mock.Anything, "bather@example.com", "0701234567").
			Return(&domain.User{ID: "user-1", Email: "bather@example.com"}, nil).Once()
		s.couponRepo.On("Create", mock.Anything, mock.MatchedBy(func(coupon *domain.Coupon) bool {
			return coupon.Type == domain.CouponTypeSeasonPass && coupon.RemainingUses == seasonPassUses
		})).Return(nil).Once()

		w, r := executeRequest(s.T(), http.MethodPost, "/coupons", request("Årskort"))

		s.app.CreateCouponHandler(w, r)

		s.Equal(http.StatusCreated, w.Code)
		s.couponRepo.AssertExpectations(s.T())
	})
}
