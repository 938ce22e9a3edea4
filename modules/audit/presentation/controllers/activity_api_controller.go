package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/storefixhq/storefix/modules/audit/domain/entities/activitylog"
	"github.com/storefixhq/storefix/modules/audit/presentation/controllers/dtos"
	"github.com/storefixhq/storefix/modules/audit/services"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/httpapi"
)

type ActivityAPIControllerConfig struct {
	BasePath string
	App      application.Application
}

// ActivityAPIController exposes the audit trail as a read-only listing.
type ActivityAPIController struct {
	basePath string
	app      application.Application
}

func NewActivityAPIController(cfg ActivityAPIControllerConfig) application.Controller {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api/v1"
	}
	return &ActivityAPIController{
		basePath: basePath,
		app:      cfg.App,
	}
}

func (c *ActivityAPIController) Key() string {
	return "ActivityAPIController"
}

func (c *ActivityAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/activity", c.list).Methods(http.MethodGet)
}

func (c *ActivityAPIController) service() *services.ActivityLogService {
	return application.Use[*services.ActivityLogService](c.app)
}

func (c *ActivityAPIController) list(w http.ResponseWriter, r *http.Request) {
	params := &activitylog.FindParams{
		Kind:      r.URL.Query().Get("kind"),
		Reference: r.URL.Query().Get("reference"),
		Limit:     50,
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= 200 {
			params.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			params.Offset = n
		}
	}

	entries, err := c.service().List(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list activity", nil)
		return
	}
	total, err := c.service().Count(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to count activity", nil)
		return
	}

	views := make([]dtos.ActivityEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, dtos.ActivityEntryView{
			ID:        entry.ID.String(),
			Kind:      entry.Kind,
			Reference: entry.Reference,
			Actor:     entry.Actor,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.ActivityListResponse{Entries: views, Total: total})
}
