package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/modules/workflow/presentation/controllers/dtos"
	"github.com/storefixhq/storefix/modules/workflow/services"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/httpapi"
	"github.com/storefixhq/storefix/pkg/serrors"
)

type JobsAPIControllerConfig struct {
	BasePath string
	App      application.Application
}

type JobsAPIController struct {
	basePath string
	app      application.Application
}

func NewJobsAPIController(cfg JobsAPIControllerConfig) application.Controller {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api/v1"
	}
	return &JobsAPIController{
		basePath: basePath,
		app:      cfg.App,
	}
}

func (c *JobsAPIController) Key() string {
	return "JobsAPIController"
}

func (c *JobsAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/jobs", c.create).Methods(http.MethodPost)
	router.HandleFunc("/jobs", c.list).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}/quote/draft", c.prepareQuote).Methods(http.MethodPost)
	router.HandleFunc("/jobs/{id}/quote", c.sendQuote).Methods(http.MethodPost)
	router.HandleFunc("/jobs/{id}/accept", c.action((*services.JobService).AcceptQuote)).Methods(http.MethodPost)
	router.HandleFunc("/jobs/{id}/start", c.action((*services.JobService).StartWork)).Methods(http.MethodPost)
	router.HandleFunc("/jobs/{id}/hold", c.action((*services.JobService).Hold)).Methods(http.MethodPost)
	router.HandleFunc("/jobs/{id}/resume", c.action((*services.JobService).Resume)).Methods(http.MethodPost)
	router.HandleFunc("/jobs/{id}/complete", c.action((*services.JobService).Complete)).Methods(http.MethodPost)
	router.HandleFunc("/jobs/{id}/decline", c.action((*services.JobService).Decline)).Methods(http.MethodPost)
}

func (c *JobsAPIController) service() *services.JobService {
	return application.Use[*services.JobService](c.app)
}

func (c *JobsAPIController) create(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
		return
	}
	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "submissionId must be a UUID", nil)
		return
	}

	created, err := c.service().CreateJob(r.Context(), services.CreateJobDTO{
		SubmissionID: submissionID,
		Category:     req.Category,
		Description:  req.Description,
		Actor:        req.Actor,
	})
	if err != nil {
		writeJobError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, c.toView(created))
}

func (c *JobsAPIController) prepareQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "job id must be a UUID", nil)
		return
	}
	var req dtos.SendQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
		return
	}

	updated, err := c.service().PrepareQuote(r.Context(), id, req.AmountMinor, req.Actor)
	if err != nil {
		writeJobError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, c.toView(updated))
}

func (c *JobsAPIController) sendQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "job id must be a UUID", nil)
		return
	}
	var req dtos.SendQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
		return
	}

	updated, err := c.service().SendQuote(r.Context(), id, req.AmountMinor, req.Actor)
	if err != nil {
		writeJobError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, c.toView(updated))
}

// action adapts the single-argument transition commands into handlers so
// each route does not repeat the same decode and error plumbing.
func (c *JobsAPIController) action(
	command func(*services.JobService, context.Context, uuid.UUID, string) (job.Job, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "job id must be a UUID", nil)
			return
		}
		var req dtos.ActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
			return
		}

		updated, err := command(c.service(), r.Context(), id, req.Actor)
		if err != nil {
			writeJobError(w, err)
			return
		}
		_ = httpapi.WriteJSON(w, http.StatusOK, c.toView(updated))
	}
}

func (c *JobsAPIController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "job id must be a UUID", nil)
		return
	}
	found, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		writeJobError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, c.toView(found))
}

func (c *JobsAPIController) list(w http.ResponseWriter, r *http.Request) {
	params := &job.FindParams{
		State:  job.State(r.URL.Query().Get("state")),
		Bucket: job.SLABucket(r.URL.Query().Get("bucket")),
		Limit:  50,
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

	jobs, err := c.service().List(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list jobs", nil)
		return
	}
	total, err := c.service().Count(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to count jobs", nil)
		return
	}

	views := make([]dtos.JobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, c.toView(j))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.JobListResponse{Jobs: views, Total: total})
}

func writeJobError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	message := "something went wrong"

	var base *serrors.Base
	if errors.As(err, &base) {
		code = base.Code
		message = base.UserMessage()
		switch {
		case errors.Is(err, job.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, job.ErrInvalidTransition), errors.Is(err, job.ErrInvalidQuote):
			status = http.StatusConflict
		case errors.Is(err, job.ErrSubmissionConsumed):
			status = http.StatusConflict
		default:
			status = http.StatusBadRequest
		}
	}
	_ = httpapi.WriteError(w, status, code, message, nil)
}

func (c *JobsAPIController) toView(j job.Job) dtos.JobView {
	view := dtos.JobView{
		ID:           j.ID().String(),
		Reference:    j.Reference(),
		SubmissionID: j.SubmissionID().String(),
		Customer:     j.CustomerName(),
		Email:        j.CustomerEmail(),
		StoreURL:     j.StoreURL(),
		Category:     j.Category(),
		Description:  j.Description(),
		State:        string(j.State()),
		SLABucket:    string(c.service().Bucket(j)),
		CreatedAt:    j.CreatedAt().Format(time.RFC3339),
	}
	if quote := j.Quote(); quote != nil {
		view.Quote = quote.Display()
	}
	if !j.QuotedAt().IsZero() {
		view.QuotedAt = j.QuotedAt().Format(time.RFC3339)
	}
	if !j.AcceptedAt().IsZero() {
		view.AcceptedAt = j.AcceptedAt().Format(time.RFC3339)
	}
	if !j.DueAt().IsZero() {
		view.DueAt = j.DueAt().Format(time.RFC3339)
	}
	if !j.CompletedAt().IsZero() {
		view.CompletedAt = j.CompletedAt().Format(time.RFC3339)
	}
	return view
}
