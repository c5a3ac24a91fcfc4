package app

import (
	"net/http"

	"github.com/kallbadhuset/bastubokning/api"
)

func (app *application) GetTemperatureHandler(w http.ResponseWriter, r *http.Request) {
	temperature, err := app.temperature.Temperature(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.TemperatureResponse{Temperature: temperature}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
