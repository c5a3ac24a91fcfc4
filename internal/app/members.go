package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kallbadhuset/bastubokning/api"
	"github.com/kallbadhuset/bastubokning/internal/domain"
)

func (app *application) CheckMembershipHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))

	err := app.validator.Var(email, "required,email")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("a valid email query parameter is required"))
		return
	}

	isMember, err := app.memberRepo.CheckMembership(r.Context(), email)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.MembershipResponse{Member: isMember}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) CreateMemberHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CreateMemberRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	member := domain.Member{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
	}

	err = app.memberRepo.Create(r.Context(), &member)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.logger.Info("member registered", "memberId", member.ID)

	err = app.writeJSON(w, http.StatusCreated, api.MembershipResponse{Member: true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
