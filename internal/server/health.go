package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/httpapi"
)

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type HealthController struct{}

func NewHealthController() application.Controller {
	return &HealthController{}
}

func (c *HealthController) Key() string {
	return "HealthController"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/healthz", c.check).Methods(http.MethodGet)
}

func (c *HealthController) check(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteJSON(w, http.StatusOK, &healthResponse{
		Status:    "ok",
		Message:   "storefix backend is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
