package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/httputil"
	"github.com/AdamBeresnev/tournament-engine/internal/middleware"
	"github.com/AdamBeresnev/tournament-engine/internal/pairing"
	"github.com/AdamBeresnev/tournament-engine/internal/service"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/AdamBeresnev/tournament-engine/views"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.ErrorJSON(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func groupParam(r *http.Request) *string {
	return utils.StringOrNil(r.URL.Query().Get("group"))
}

func (app *application) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(w, r, dst); err != nil {
		httputil.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.ListForOwner(r.Context())
	if err != nil {
		httputil.ServiceError(w, r, "Failed to list tournaments", err)
		return
	}
	if tournaments == nil {
		tournaments = []bracket.Tournament{}
	}
	httputil.WriteJSON(w, http.StatusOK, tournaments)
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var input service.TournamentInput
	if !app.decode(w, r, &input) {
		return
	}

	tournament, err := app.tournaments.CreateTournament(r.Context(), input)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to create tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tournament)
}

func (app *application) getTournamentData(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to get tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) tournamentPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTournamentNotFound) {
			httputil.NotFound(w, "Tournament not found", err)
			return
		}
		httputil.InternalServerError(w, "Failed to get tournament", err)
		return
	}
	views.Render(w, r, views.TournamentPage(data))
}

func (app *application) registerParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input service.ParticipantInput
	if !app.decode(w, r, &input) {
		return
	}

	participant, err := app.tournaments.RegisterParticipant(r.Context(), id, input)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to register participant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, participant)
}

func (app *application) setParticipantStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input struct {
		Status bracket.ParticipantStatus `json:"status"`
	}
	if !app.decode(w, r, &input) {
		return
	}

	participant, err := app.tournaments.SetParticipantStatus(r.Context(), id, input.Status)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to update participant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, participant)
}

type generateResponse struct {
	Matches      []bracket.Match `json:"matches"`
	MatchesCount int             `json:"matches_count"`
}

func (app *application) generateKnockout(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input struct {
		ShuffleSeeds bool   `json:"shuffle_seeds"`
		Layout       string `json:"layout"`
		Replace      bool   `json:"replace"`
	}
	if !app.decode(w, r, &input) {
		return
	}
	layout, err := pairing.ParseLayout(input.Layout)
	if err != nil {
		httputil.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := app.brackets.GenerateKnockout(r.Context(), id, service.KnockoutOptions{
		Shuffle: input.ShuffleSeeds,
		Layout:  layout,
		Replace: input.Replace,
	})
	if err != nil {
		httputil.ServiceError(w, r, "Failed to generate knockout bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, generateResponse{Matches: matches, MatchesCount: len(matches)})
}

func (app *application) generateRoundRobin(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input struct {
		HomeAndAway bool    `json:"home_and_away"`
		GroupName   *string `json:"group_name"`
		Replace     bool    `json:"replace"`
	}
	if !app.decode(w, r, &input) {
		return
	}

	matches, err := app.brackets.GenerateRoundRobin(r.Context(), id, service.RoundRobinOptions{
		HomeAndAway: input.HomeAndAway,
		Group:       utils.TrimmedOrNil(input.GroupName),
		Replace:     input.Replace,
	})
	if err != nil {
		httputil.ServiceError(w, r, "Failed to generate round robin schedule", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, generateResponse{Matches: matches, MatchesCount: len(matches)})
}

func (app *application) getStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	recalculate, _ := strconv.ParseBool(r.URL.Query().Get("recalculate"))
	var (
		table []bracket.Standing
		err   error
	)
	if recalculate {
		if _, signedIn := middleware.GetUserIDFromContext(r.Context()); !signedIn {
			httputil.ErrorJSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		table, err = app.standings.Compute(r.Context(), id, groupParam(r))
	} else {
		table, err = app.standings.Get(r.Context(), id, groupParam(r))
	}
	if err != nil {
		httputil.ServiceError(w, r, "Failed to get standings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, table)
}

func (app *application) recalculateStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	table, err := app.standings.Compute(r.Context(), id, groupParam(r))
	if err != nil {
		httputil.ServiceError(w, r, "Failed to recalculate standings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, table)
}

func matchFilter(r *http.Request) (store.MatchFilter, error) {
	query := r.URL.Query()
	filter := store.MatchFilter{Group: groupParam(r)}

	if v := query.Get("round"); v != "" {
		round, err := strconv.Atoi(v)
		if err != nil || round < 1 {
			return filter, errors.New("round must be a positive integer")
		}
		filter.Round = &round
	}
	if v := strings.TrimSpace(query.Get("status")); v != "" {
		status, err := bracket.ParseMatchStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	return filter, nil
}

func (app *application) listMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	filter, err := matchFilter(r)
	if err != nil {
		httputil.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := app.matches.List(r.Context(), id, filter)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to list matches", err)
		return
	}
	if matches == nil {
		matches = []bracket.Match{}
	}
	httputil.WriteJSON(w, http.StatusOK, matches)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	match, err := app.matches.Get(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) updateMatchStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input service.StatusUpdate
	if !app.decode(w, r, &input) {
		return
	}

	match, err := app.matches.UpdateStatus(r.Context(), id, input)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to update match status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) recordScore(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input service.ScoreUpdate
	if !app.decode(w, r, &input) {
		return
	}

	match, err := app.matches.RecordScore(r.Context(), id, input)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to record score", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) advanceWinner(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	result, err := app.matches.AdvanceWinner(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, r, "Failed to advance winner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
