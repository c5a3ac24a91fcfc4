package directus

import (
	"context"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/shopspring/decimal"
)

type PriceRepository struct {
	client *Client
}

func NewPriceRepository(client *Client) *PriceRepository {
	return &PriceRepository{client: client}
}

type priceListRecord struct {
	SeatPrice       decimal.Decimal `json:"seat_price"`
	MemberSeatPrice decimal.Decimal `json:"member_seat_price"`
}

func (r *PriceRepository) Get(ctx context.Context) (*domain.PriceList, error) {
	var record priceListRecord

	if err := r.client.get(ctx, "/items/price_list", nil, &record); err != nil {
		return nil, err
	}

	return &domain.PriceList{
		SeatPrice:       record.SeatPrice,
		MemberSeatPrice: record.MemberSeatPrice,
	}, nil
}
