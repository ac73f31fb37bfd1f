package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/utils/async"
	"github.com/secmon-lab/prnotify/pkg/utils/errutil"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
	"github.com/secmon-lab/prnotify/pkg/utils/safe"
)

// maxPayloadSize caps webhook bodies at 5MB
const maxPayloadSize = 5 * 1024 * 1024

// Dispatcher runs one event through the notification pipeline
type Dispatcher interface {
	Dispatch(ctx context.Context, kind types.EventKind, p *model.Payload) error
}

// Server receives GitHub webhook deliveries and hands them to the pipeline
type Server struct {
	router     *chi.Mux
	dispatcher Dispatcher
}

// New creates the webhook server
func New(dispatcher Dispatcher) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:     r,
		dispatcher: dispatcher,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Post("/hooks/github", s.handleGitHubEvent)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleGitHubEvent accepts a webhook delivery, maps it to an event kind and
// dispatches it asynchronously. Deliveries with no matching kind are
// acknowledged and ignored so GitHub does not retry them.
func (s *Server) handleGitHubEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	event := r.Header.Get("X-GitHub-Event")
	if event == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("missing X-GitHub-Event header"), http.StatusBadRequest)
		return
	}

	delivery := r.Header.Get("X-GitHub-Delivery")
	if delivery == "" {
		delivery = uuid.NewString()
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read webhook body"), http.StatusInternalServerError)
		return
	}

	var payload model.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode webhook body"), http.StatusBadRequest)
		return
	}

	logger := logging.From(ctx).With("event", event, "delivery", delivery)
	ctx = logging.With(ctx, logger)

	kind, err := model.EventKindOf(event, &payload)
	if err != nil {
		logger.Info("ignoring webhook delivery without matching event kind", "action", payload.Action)
		w.WriteHeader(http.StatusOK)
		safe.Write(ctx, w, []byte("ignored"))
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return s.dispatcher.Dispatch(ctx, kind, &payload)
	})

	w.WriteHeader(http.StatusAccepted)
	safe.Write(ctx, w, []byte("accepted"))
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
