package controllers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	"github.com/storefixhq/storefix/modules/intake/presentation/controllers/dtos"
	"github.com/storefixhq/storefix/modules/intake/services"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/httpapi"
	"github.com/storefixhq/storefix/pkg/serrors"
)

type SubmissionsAPIControllerConfig struct {
	BasePath string
	App      application.Application

	// Debug exposes error details in responses. Never enable in
	// production.
	Debug bool
}

type SubmissionsAPIController struct {
	basePath string
	app      application.Application
	debug    bool
}

func NewSubmissionsAPIController(cfg SubmissionsAPIControllerConfig) application.Controller {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api/v1"
	}
	return &SubmissionsAPIController{
		basePath: basePath,
		app:      cfg.App,
		debug:    cfg.Debug,
	}
}

func (c *SubmissionsAPIController) Key() string {
	return "SubmissionsAPIController"
}

func (c *SubmissionsAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/submissions", c.create).Methods(http.MethodPost)
	router.HandleFunc("/submissions", c.list).Methods(http.MethodGet)
	router.HandleFunc("/submissions/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/submissions/{id}/status", c.updateStatus).Methods(http.MethodPatch)
	router.HandleFunc("/submissions", c.reset).Methods(http.MethodDelete)
}

func (c *SubmissionsAPIController) service() *services.SubmissionService {
	return application.Use[*services.SubmissionService](c.app)
}

// decodeCreate accepts JSON or classic form encoding and rejects anything
// else with 415 before reading the body.
func (c *SubmissionsAPIController) decodeCreate(r *http.Request) (*submission.CreateDTO, int, error) {
	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, http.StatusUnsupportedMediaType, errors.New("missing or malformed Content-Type")
	}

	dto := &submission.CreateDTO{}
	switch contentType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
			return nil, http.StatusBadRequest, err
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, http.StatusBadRequest, err
		}
		dto.Reference = r.PostFormValue("submissionNumber")
		dto.Name = r.PostFormValue("name")
		dto.Email = r.PostFormValue("email")
		dto.StoreURL = r.PostFormValue("storeUrl")
		dto.Message = r.PostFormValue("message")
		dto.HasVoiceNote = r.PostFormValue("hasVoiceNote") == "true"
		dto.VoiceNoteData = r.PostFormValue("voiceNoteData")
		if secs := r.PostFormValue("voiceNoteSeconds"); secs != "" {
			dto.VoiceNoteLength, _ = strconv.Atoi(secs)
		}
	default:
		return nil, http.StatusUnsupportedMediaType, errors.New("unsupported Content-Type: " + contentType)
	}
	return dto, 0, nil
}

func (c *SubmissionsAPIController) create(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())
	svc := c.service()

	if err := svc.CheckOrigin(r.Header.Get("Origin")); err != nil {
		c.writeFailure(w, http.StatusForbidden, err)
		return
	}

	dto, status, err := c.decodeCreate(r)
	if err != nil {
		logger.WithError(err).Warn("rejected submission payload")
		c.writeFailure(w, status, err)
		return
	}

	created, err := svc.Create(r.Context(), dto)
	if err != nil {
		c.writeCreateError(w, r, err)
		return
	}

	logger.WithField("reference", created.Reference()).Info("submission received")
	_ = httpapi.WriteJSON(w, http.StatusCreated, &dtos.SubmissionResponse{
		Success:          true,
		Message:          "Thanks! We received your request and will be in touch within one working day.",
		SubmissionNumber: created.Reference(),
	})
}

func (c *SubmissionsAPIController) writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	logger := composables.UseLogger(r.Context())
	logger.WithError(err).Warn("submission rejected")

	var validationErrs serrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		resp := &dtos.SubmissionResponse{
			Success: false,
			Message: "Please correct the highlighted fields and try again.",
			Fields:  validationErrs.Fields(),
		}
		c.debugDetail(resp, err)
		_ = httpapi.WriteJSON(w, http.StatusBadRequest, resp)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, submission.ErrRateLimited):
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", "3600")
	case errors.Is(err, submission.ErrIncomplete),
		errors.Is(err, submission.ErrSuspiciousInput),
		errors.Is(err, submission.ErrInvalidReference),
		errors.Is(err, submission.ErrUnsupportedAudio),
		errors.Is(err, submission.ErrVoiceNoteTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, submission.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, submission.ErrOriginNotAllowed):
		status = http.StatusForbidden
	}

	c.writeFailure(w, status, err)
}

// writeFailure renders the {success,message} envelope the form expects. The
// user-facing message comes from the structured error when there is one.
func (c *SubmissionsAPIController) writeFailure(w http.ResponseWriter, status int, err error) {
	message := "Something went wrong on our side. Please try again."
	var base *serrors.Base
	if errors.As(err, &base) {
		message = base.UserMessage()
	} else if status != http.StatusInternalServerError {
		message = err.Error()
	}

	resp := &dtos.SubmissionResponse{
		Success: false,
		Message: message,
	}
	c.debugDetail(resp, err)
	_ = httpapi.WriteJSON(w, status, resp)
}

func (c *SubmissionsAPIController) debugDetail(resp *dtos.SubmissionResponse, err error) {
	if !c.debug || err == nil {
		return
	}
	resp.Error = err.Error()
	var base *serrors.Base
	if errors.As(err, &base) {
		resp.ErrorType = base.Code
	}
}

func (c *SubmissionsAPIController) list(w http.ResponseWriter, r *http.Request) {
	svc := c.service()

	params := &submission.FindParams{
		Status: submission.Status(r.URL.Query().Get("status")),
		Email:  r.URL.Query().Get("email"),
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

	subs, err := svc.List(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list submissions", nil)
		return
	}
	total, err := svc.Count(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to count submissions", nil)
		return
	}

	views := make([]dtos.SubmissionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, toView(sub))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.SubmissionListResponse{
		Submissions: views,
		Total:       total,
	})
}

func (c *SubmissionsAPIController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "submission id must be a UUID", nil)
		return
	}

	sub, err := c.service().GetByID(r.Context(), id)
	if errors.Is(err, submission.ErrNotFound) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "SUBMISSION_NOT_FOUND", "submission not found", nil)
		return
	}
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load submission", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toView(sub))
}

func (c *SubmissionsAPIController) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "submission id must be a UUID", nil)
		return
	}

	var req dtos.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
		return
	}

	updated, err := c.service().UpdateStatus(r.Context(), id, submission.Status(req.Status), req.Actor)
	switch {
	case errors.Is(err, submission.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "SUBMISSION_NOT_FOUND", "submission not found", nil)
	case errors.Is(err, submission.ErrInvalidStatus):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown submission status", nil)
	case err != nil:
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to update submission", nil)
	default:
		_ = httpapi.WriteJSON(w, http.StatusOK, toView(updated))
	}
}

func (c *SubmissionsAPIController) reset(w http.ResponseWriter, r *http.Request) {
	err := c.service().ResetAll(r.Context())
	if errors.Is(err, submission.ErrResetDisabled) {
		_ = httpapi.WriteError(w, http.StatusForbidden, "RESET_DISABLED", "bulk reset is disabled in this environment", nil)
		return
	}
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to reset submissions", nil)
		return
	}
	composables.UseLogger(r.Context()).Warn("all submissions deleted")
	w.WriteHeader(http.StatusNoContent)
}

func toView(sub submission.Submission) dtos.SubmissionView {
	return dtos.SubmissionView{
		ID:               sub.ID().String(),
		SubmissionNumber: sub.Reference(),
		Name:             sub.Name(),
		Email:            sub.Email(),
		StoreURL:         sub.StoreURL(),
		Message:          sub.Message(),
		HasVoiceNote:     sub.HasVoiceNote(),
		VoiceNoteLink:    sub.VoiceNoteLink(),
		Status:           string(sub.Status()),
		CreatedAt:        sub.CreatedAt().Format(time.RFC3339),
	}
}
