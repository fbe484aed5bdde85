package handlers

import (
	"net/http"

	"server/internal/middleware"
)

type locationHintDTO struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// LocationHint guesses the client's country and city from its IP. Returns
// an empty hint when no GeoIP database is configured or the IP is unknown.
func (a *App) LocationHint(w http.ResponseWriter, r *http.Request) {
	if a.Geo == nil {
		a.json(w, http.StatusOK, locationHintDTO{})
		return
	}
	hint, err := a.Geo.Lookup(middleware.ClientIP(r))
	if err != nil {
		a.Logger.Debug().Err(err).Msg("geoip lookup failed")
		a.json(w, http.StatusOK, locationHintDTO{})
		return
	}
	a.json(w, http.StatusOK, locationHintDTO{Country: hint.Country, City: hint.City})
}
