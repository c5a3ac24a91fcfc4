package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceList carries the per-seat prices maintained in the content store.
type PriceList struct {
	SeatPrice       decimal.Decimal
	MemberSeatPrice decimal.Decimal
}

// SeatPriceFor returns the applicable per-seat price.
func (p *PriceList) SeatPriceFor(isMember bool) decimal.Decimal {
	if isMember {
		return p.MemberSeatPrice
	}
	return p.SeatPrice
}

type PriceRepository interface {
	Get(ctx context.Context) (*PriceList, error)
}
