package app

import (
	"errors"
	"net/http"

	"github.com/kallbadhuset/bastubokning/api"
	"github.com/kallbadhuset/bastubokning/internal/domain"
)

func (app *application) ListSlotsHandler(w http.ResponseWriter, r *http.Request) {
	slots, err := app.slotRepo.ListUpcoming(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.SlotsResponse{Slots: toApiSlots(slots)}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetSlotHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.intURLParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	slot, err := app.slotRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiSlot(slot), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiSlot(slot *domain.Slot) *api.Slot {
	return &api.Slot{
		Id:             slot.ID,
		StartTime:      slot.StartTime,
		EndTime:        slot.EndTime,
		TotalSeats:     slot.TotalSeats,
		AvailableSeats: slot.AvailableSeats,
		Description:    slot.Description,
		Repayable:      slot.Repayable,
	}
}

func toApiSlots(slots []domain.Slot) []api.Slot {
	apiSlots := make([]api.Slot, len(slots))
	for i := range slots {
		apiSlots[i] = *toApiSlot(&slots[i])
	}
	return apiSlots
}
