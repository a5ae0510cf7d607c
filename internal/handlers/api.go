package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// statsRequest is the POST body for the aggregate report endpoints. Zero
// values count as missing, matching how the original API treated falsy
// parameters.
type statsRequest struct {
	CustID int `json:"custId"`
	Year   int `json:"year"`
	Season int `json:"season"`
}

// searchRequest is the POST body for driver search
type searchRequest struct {
	SearchTerm string `json:"searchTerm"`
}

// subsessionRequest is the POST body for the subsession result endpoint
type subsessionRequest struct {
	SubsessionID int `json:"subsessionId"`
}

// handleGetCategories serves GET /api/get-categories
func (h *Handlers) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Category.List(r.Context())
	if err != nil {
		h.respondServiceError(w, "get-categories", err)
		return
	}
	respondOK(w, categories)
}

// handleSearchDrivers serves POST /api/search-drivers
func (h *Handlers) handleSearchDrivers(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SearchTerm == "" {
		respondText(w, http.StatusBadRequest, "Missing searchTerm parameter")
		return
	}

	drivers, err := h.Driver.Search(r.Context(), req.SearchTerm)
	if err != nil {
		h.respondServiceError(w, "search-drivers", err)
		return
	}
	respondOK(w, drivers)
}

// handleGetSeasons serves GET /api/get-seasons?custId=N
func (h *Handlers) handleGetSeasons(w http.ResponseWriter, r *http.Request) {
	custID, err := strconv.Atoi(r.URL.Query().Get("custId"))
	if err != nil || custID == 0 {
		respondText(w, http.StatusBadRequest, "Missing custId parameter")
		return
	}

	seasons, svcErr := h.Season.ListSeasons(r.Context(), custID)
	if svcErr != nil {
		h.respondServiceError(w, "get-seasons", svcErr)
		return
	}
	respondOK(w, seasons)
}

// handleGetStats serves POST /api/get-stats and POST /api/get-driver-data
func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	var req statsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.CustID == 0 || req.Year == 0 || req.Season == 0 {
		respondText(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	report, err := h.Report.BuildReport(r.Context(), req.CustID, req.Year, req.Season)
	if err != nil {
		h.respondServiceError(w, "get-stats", err)
		return
	}
	respondOK(w, report)
}

// handleGetSubsessionResult serves POST /api/get-subsession-result
func (h *Handlers) handleGetSubsessionResult(w http.ResponseWriter, r *http.Request) {
	var req subsessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubsessionID == 0 {
		respondText(w, http.StatusBadRequest, "Missing subsessionId parameter")
		return
	}

	result, err := h.Driver.SubsessionResult(r.Context(), req.SubsessionID)
	if err != nil {
		h.respondServiceError(w, "get-subsession-result", err)
		return
	}
	respondRawJSON(w, result)
}

// handleRecentDrivers serves GET /api/recent-drivers
func (h *Handlers) handleRecentDrivers(w http.ResponseWriter, r *http.Request) {
	if h.Recent == nil {
		respondOK(w, []struct{}{})
		return
	}
	drivers, err := h.Recent.RecentDrivers(r.Context(), 10)
	if err != nil {
		h.respondServiceError(w, "recent-drivers", err)
		return
	}
	respondOK(w, drivers)
}

// handleShareQR serves GET /api/share-qr?custId=N&year=Y&season=S with a PNG
// QR code deep-linking to the dashboard for that driver and season.
func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	custID, err := strconv.Atoi(r.URL.Query().Get("custId"))
	if err != nil || custID == 0 {
		respondText(w, http.StatusBadRequest, "Missing custId parameter")
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	link := fmt.Sprintf("%s://%s/?custId=%d", scheme, r.Host, custID)
	if year := r.URL.Query().Get("year"); year != "" {
		link += "&year=" + year
	}
	if season := r.URL.Query().Get("season"); season != "" {
		link += "&season=" + season
	}

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		h.respondServiceError(w, "share-qr", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
