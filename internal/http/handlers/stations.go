package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/station-marker/internal/http/response"
	"github.com/yungbote/station-marker/internal/modules/marking"
	"github.com/yungbote/station-marker/internal/stations"
)

type StationLister interface {
	List() []stations.Station
	DefaultStation() string
	Version() int
}

type StationHandler struct {
	catalog StationLister
}

func NewStationHandler(catalog StationLister) *StationHandler {
	return &StationHandler{catalog: catalog}
}

type stationsResponse struct {
	Version        int                   `json:"version"`
	DefaultStation string                `json:"default_station"`
	Stations       []marking.StationInfo `json:"stations"`
}

// GET /api/stations
// Reference answers stay server-side until a submission is marked.
func (h *StationHandler) ListStations(c *gin.Context) {
	out := stationsResponse{
		Version:        h.catalog.Version(),
		DefaultStation: h.catalog.DefaultStation(),
		Stations:       []marking.StationInfo{},
	}
	for _, st := range h.catalog.List() {
		info := marking.StationInfo{
			ID:          st.ID,
			Title:       st.Title,
			Description: st.Description,
			Timings:     st.Timings,
		}
		for _, q := range st.Questions {
			info.Questions = append(info.Questions, marking.QuestionInfo{ID: q.ID, Prompt: q.Prompt})
		}
		out.Stations = append(out.Stations, info)
	}
	response.RespondOK(c, out)
}
