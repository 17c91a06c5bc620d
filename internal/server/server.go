package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/riskbrief/internal/collector"
	"github.com/nao1215/riskbrief/internal/config"
	"github.com/nao1215/riskbrief/internal/model"
	"github.com/nao1215/riskbrief/internal/report"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// maxFormBytes bounds the size of a submitted form.
	maxFormBytes = 64 << 10

	// readHeaderTimeout bounds how long a client may take to send headers.
	readHeaderTimeout = 10 * time.Second

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second

	// writeSlack is added to the provider timeouts to get the response
	// write deadline.
	writeSlack = 30 * time.Second
)

// Runner executes one research cycle and presents it with the given writer.
// *pipeline.Runner satisfies this interface.
type Runner interface {
	Run(ctx context.Context, in collector.Input, w report.Writer) (*model.Run, error)
}

// Options configures a Server.
type Options struct {
	// Config supplies the listen address, form catalog and defaults.
	Config *config.Config

	// Runner executes submissions.
	Runner Runner

	// Logger receives request logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// Server serves the research form over HTTP.
type Server struct {
	cfg    *config.Config
	runner Runner
	log    *slog.Logger

	// runs admits one research run at a time.
	runs *semaphore.Weighted

	// writeSlack is added to the provider timeouts to get the response
	// write deadline of one run.
	writeSlack time.Duration

	handler http.Handler
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("missing Config")
	}
	if opts.Runner == nil {
		return nil, errors.New("missing Runner")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    opts.Config,
		runner: opts.Runner,
		log:    logger,
		runs:       semaphore.NewWeighted(1),
		writeSlack: writeSlack,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/research", s.handleResearch)
	mux.HandleFunc("/healthz", s.handleHealth)
	s.handler = mux

	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves until ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or the server fails. In-flight runs
// get shutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      s.runBudget(),
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("research form listening", "address", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down research form")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// runBudget is the longest a single run may keep its response open.
func (s *Server) runBudget() time.Duration {
	return s.cfg.SearchTimeout + s.cfg.CompletionTimeout + s.writeSlack
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	if _, err := report.NewHTMLWriter(&buf, report.NewFormState(s.cfg), report.NewSetup(s.cfg)).WriteForm(); err != nil {
		s.log.Error("render form failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	in := inputFromForm(r.PostForm)
	form := s.formFromValues(r.PostForm)

	if err := s.runs.Acquire(r.Context(), 1); err != nil {
		s.log.Info("client went away while waiting for a previous run", "error", err)
		return
	}
	defer s.runs.Release(1)

	// The write deadline started with the request; time spent queued behind
	// another run must not count against this one.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(s.runBudget())); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.log.Warn("extend write deadline failed", "error", err)
	}

	var buf bytes.Buffer
	run, err := s.runner.Run(r.Context(), in, report.NewHTMLWriter(&buf, form, report.NewSetup(s.cfg)))
	if err != nil {
		s.log.Error("present run failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.log.Info("research run finished",
		"failed", run.Failed(),
		"evidence", len(run.Evidence),
		"elapsed", run.Elapsed.String(),
	)
	writeHTML(w, statusFor(run), buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// inputFromForm maps the form fields to a collector input. The domain list
// is never nil, so an empty selection means an unrestricted search.
func inputFromForm(v url.Values) collector.Input {
	domains := make([]string, 0, len(v["domain"])+1)
	domains = append(domains, v["domain"]...)
	if extra := strings.TrimSpace(v.Get("extra_domains")); extra != "" {
		domains = append(domains, extra)
	}
	return collector.Input{
		Query:          v.Get("query"),
		TrustedDomains: domains,
		FocusArea:      v.Get("focus_area"),
		MaxResults:     v.Get("max_results"),
		ReportStyle:    v.Get("report_style"),
		SearchDepth:    v.Get("search_depth"),
	}
}

// formFromValues echoes a submission back into the form.
func (s *Server) formFromValues(v url.Values) report.FormState {
	f := report.NewFormState(s.cfg)
	f.Query = v.Get("query")
	f.SetDomains(s.cfg.TrustedSources, v["domain"])
	f.ExtraDomains = v.Get("extra_domains")
	if fa := v.Get("focus_area"); fa != "" {
		f.FocusArea = fa
	}
	if mr := v.Get("max_results"); mr != "" {
		f.MaxResults = mr
	}
	if rs := v.Get("report_style"); rs != "" {
		f.ReportStyle = rs
	}
	if sd := v.Get("search_depth"); sd != "" {
		f.SearchDepth = sd
	}
	return f
}

// statusFor picks the HTTP status of a presented run.
func statusFor(run *model.Run) int {
	switch {
	case !run.Failed():
		return http.StatusOK
	case errors.Is(run.Err, model.ErrConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
