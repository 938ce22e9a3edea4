package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
	"github.com/storefixhq/storefix/modules/billing/presentation/controllers/dtos"
	"github.com/storefixhq/storefix/modules/billing/services"
	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/httpapi"
	"github.com/storefixhq/storefix/pkg/serrors"
)

type InvoicesAPIControllerConfig struct {
	BasePath string
	App      application.Application
}

type InvoicesAPIController struct {
	basePath string
	app      application.Application
}

func NewInvoicesAPIController(cfg InvoicesAPIControllerConfig) application.Controller {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api/v1"
	}
	return &InvoicesAPIController{
		basePath: basePath,
		app:      cfg.App,
	}
}

func (c *InvoicesAPIController) Key() string {
	return "InvoicesAPIController"
}

func (c *InvoicesAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/invoices", c.generate).Methods(http.MethodPost)
	router.HandleFunc("/invoices", c.list).Methods(http.MethodGet)
	router.HandleFunc("/invoices/reminders", c.sweep).Methods(http.MethodPost)
	router.HandleFunc("/invoices/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/invoices/{id}/send", c.send).Methods(http.MethodPost)
	router.HandleFunc("/invoices/{id}/pay", c.pay).Methods(http.MethodPost)
}

func (c *InvoicesAPIController) service() *services.InvoiceService {
	return application.Use[*services.InvoiceService](c.app)
}

func (c *InvoicesAPIController) generate(w http.ResponseWriter, r *http.Request) {
	var req dtos.GenerateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
		return
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "jobId must be a UUID", nil)
		return
	}

	created, err := c.service().Generate(r.Context(), services.GenerateInvoiceDTO{
		JobID:       jobID,
		Kind:        invoice.Kind(req.Kind),
		AmountMinor: req.AmountMinor,
		Actor:       req.Actor,
	})
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toView(created))
}

func (c *InvoicesAPIController) send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invoice id must be a UUID", nil)
		return
	}
	var req dtos.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
		return
	}

	updated, err := c.service().MarkSent(r.Context(), id, req.Actor)
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toView(updated))
}

func (c *InvoicesAPIController) pay(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invoice id must be a UUID", nil)
		return
	}
	var req dtos.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
		return
	}

	updated, err := c.service().RecordPayment(r.Context(), id, req.Method, req.Reference, req.Actor)
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toView(updated))
}

func (c *InvoicesAPIController) sweep(w http.ResponseWriter, r *http.Request) {
	reminded, err := c.service().ReminderSweep(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "reminder sweep failed", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.SweepResponse{Reminded: reminded})
}

func (c *InvoicesAPIController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invoice id must be a UUID", nil)
		return
	}
	found, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toView(found))
}

func (c *InvoicesAPIController) list(w http.ResponseWriter, r *http.Request) {
	params := &invoice.FindParams{
		Status: invoice.Status(r.URL.Query().Get("status")),
		Limit:  50,
	}
	if jobID := r.URL.Query().Get("jobId"); jobID != "" {
		parsed, err := uuid.Parse(jobID)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "jobId must be a UUID", nil)
			return
		}
		params.JobID = parsed
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

	invoices, err := c.service().List(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list invoices", nil)
		return
	}
	total, err := c.service().Count(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to count invoices", nil)
		return
	}

	views := make([]dtos.InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, toView(inv))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.InvoiceListResponse{Invoices: views, Total: total})
}

func writeInvoiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	message := "something went wrong"

	var base *serrors.Base
	if errors.As(err, &base) {
		code = base.Code
		message = base.UserMessage()
		switch {
		case errors.Is(err, invoice.ErrNotFound), errors.Is(err, job.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, invoice.ErrInvalidTransition):
			status = http.StatusConflict
		case errors.Is(err, invoice.ErrJobNotCompleted), errors.Is(err, invoice.ErrJobNotQuoted):
			status = http.StatusConflict
		default:
			status = http.StatusBadRequest
		}
	}
	_ = httpapi.WriteError(w, status, code, message, nil)
}

func toView(inv invoice.Invoice) dtos.InvoiceView {
	view := dtos.InvoiceView{
		ID:               inv.ID().String(),
		Number:           inv.Number(),
		JobID:            inv.JobID().String(),
		Kind:             string(inv.Kind()),
		Status:           string(inv.Status()),
		Net:              inv.Net().Display(),
		Tax:              inv.Tax().Display(),
		Total:            inv.Total().Display(),
		TaxRate:          inv.TaxRate().String(),
		IssuedAt:         inv.IssuedAt().Format(time.RFC3339),
		PaymentMethod:    inv.PaymentMethod(),
		PaymentReference: inv.PaymentReference(),
	}
	if !inv.SentAt().IsZero() {
		view.SentAt = inv.SentAt().Format(time.RFC3339)
	}
	if !inv.PaidAt().IsZero() {
		view.PaidAt = inv.PaidAt().Format(time.RFC3339)
	}
	return view
}
