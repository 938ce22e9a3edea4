package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/intake/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/intake/infrastructure/voicestore"
	"github.com/storefixhq/storefix/modules/intake/presentation/controllers"
	"github.com/storefixhq/storefix/modules/intake/services"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/eventbus"
	"github.com/storefixhq/storefix/pkg/ratelimit"
)

func setupRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	service := services.NewSubmissionService(services.SubmissionServiceConfig{
		Repo:       persistence.NewInmemSubmissionRepository(),
		Publisher:  eventbus.NewEventPublisher(logger),
		Notifier:   notify.NewInMemoryNotifier(),
		VoiceStore: voicestore.NewInMemoryStore(),
		Limiter:    ratelimit.New(5, time.Hour),
		Options: configuration.IntakeOptions{
			MaxNameLength:       100,
			MaxEmailLength:      254,
			MaxURLLength:        2048,
			MaxMessageLength:    5000,
			MaxVoiceNoteBytes:   10 << 20,
			MaxVoiceNoteSeconds: 180,
			AllowedAudioTypes:   []string{"audio/wav"},
		},
	})

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterServices(service)

	router := mux.NewRouter()
	controllers.NewSubmissionsAPIController(controllers.SubmissionsAPIControllerConfig{
		App: app,
	}).Register(router)
	return router
}

func TestSubmissionsAPIController_CreateAcceptsJSON(t *testing.T) {
	t.Parallel()

	router := setupRouter(t)
	body := `{"name":"Priya Shah","email":"priya@corniche-bakery.co.uk","message":"The checkout button does nothing on mobile."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "submissionNumber")
}

func TestSubmissionsAPIController_CreateAcceptsFormEncoding(t *testing.T) {
	t.Parallel()

	router := setupRouter(t)
	form := url.Values{}
	form.Set("name", "Priya Shah")
	form.Set("email", "priya@corniche-bakery.co.uk")
	form.Set("message", "The checkout button does nothing on mobile.")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSubmissionsAPIController_CreateRejectsOtherContentTypes(t *testing.T) {
	t.Parallel()

	router := setupRouter(t)
	for _, contentType := range []string{
		"multipart/form-data; boundary=xyz",
		"text/plain",
		"",
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader("ignored"))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equalf(t, http.StatusUnsupportedMediaType, rec.Code, "content type %q", contentType)
	}
}
