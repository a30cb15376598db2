package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pvmviz/pkg/buildinfo"
	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/observability"
	"github.com/matzehuels/pvmviz/pkg/overlay"
	"github.com/matzehuels/pvmviz/pkg/pipeline"
	"github.com/matzehuels/pvmviz/pkg/render"
	"github.com/matzehuels/pvmviz/pkg/style"
)

const (
	defaultAddr     = ":8080"
	maxBodySize     = 10 << 20
	shutdownTimeout = 10 * time.Second
	requestIDHeader = "X-Request-Id"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		cfgFlags Config
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagram rendering over HTTP",
		Long: `Serve starts an HTTP server with two routes:

  POST /render   render a process; the JSON body carries process, tokens,
                 mode, formats, show_exceptions and url_template
  GET  /healthz  liveness and version

Add ?raw=1 to /render with a single format to receive the artifact itself
instead of the JSON envelope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			overrideString(cmd, "styles", &cfg.Styles)
			overrideString(cmd, "mode", &cfg.Mode)
			overrideString(cmd, "redis-addr", &cfg.RedisAddr)
			overrideString(cmd, "url-template", &cfg.URLTemplate)
			overrideBoolPtr(cmd, "exceptions", &cfg.Exceptions)
			if err := errors.ValidateURLTemplate(cfg.URLTemplate); err != nil {
				return err
			}
			if _, err := style.ParseMode(cfg.Mode); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidMode, err, "invalid --mode")
			}
			return c.runServe(cmd.Context(), addr, cfg, noCache)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&cfgFlags.Styles, "styles", "", "style source (file:, redis://, mongodb://, libsql:)")
	cmd.Flags().StringVarP(&cfgFlags.Mode, "mode", "m", "", "default color mode for requests that name none")
	cmd.Flags().StringVar(&cfgFlags.RedisAddr, "redis-addr", "", "Redis address for a shared artifact cache")
	cmd.Flags().StringVar(&cfgFlags.URLTemplate, "url-template", "", "default link template for requests that name none")
	cmd.Flags().Bool("exceptions", true, "highlight exception paths when a request sets no show_exceptions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, cfg Config, noCache bool) error {
	runner, closeRunner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(runner, cfg, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// HTTP Server
// =============================================================================

type server struct {
	runner   *pipeline.Runner
	defaults Config
	logger   *log.Logger
	maxBody  int64
}

func newServer(runner *pipeline.Runner, defaults Config, logger *log.Logger) *server {
	return &server{runner: runner, defaults: defaults, logger: logger, maxBody: maxBodySize}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(bodyLimit(s.maxBody))

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	return r
}

type ctxRequestID struct{}

// requestID propagates the X-Request-Id header, generating one when absent.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxRequestID{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID{}).(string)
	return id
}

// observe logs every request and reports it to the HTTP hooks. Health
// checks are logged at debug level.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := requestIDFrom(ctx)
		start := time.Now()
		observability.HTTP().OnRequest(ctx, id, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(ctx, id, r.Method, r.URL.Path, status, dur)

		logf := s.logger.Info
		switch {
		case status >= 500:
			logf = s.logger.Error
		case status >= 400:
			logf = s.logger.Warn
		case r.URL.Path == "/healthz":
			logf = s.logger.Debug
		}
		logf("request", "id", id, "method", r.Method, "path", r.URL.Path, "status", status, "duration", dur)
	})
}

func bodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// renderRequest is the body of POST /render. show_exceptions is tri-state
// so an absent field takes the server default.
type renderRequest struct {
	pipeline.Request
	ShowExceptions *bool `json:"show_exceptions"`
}

// renderResponse is the JSON envelope returned by POST /render. SVG and PNG
// artifacts are data URIs ready for an <img src>; DOT is plain text.
type renderResponse struct {
	RequestID string            `json:"request_id"`
	DOTHash   string            `json:"dot_hash"`
	Cached    bool              `json:"cached"`
	Artifacts map[string]string `json:"artifacts"`
	Overlay   overlay.Stats     `json:"overlay"`
	Vertices  int               `json:"vertices"`
	Edges     int               `json:"edges"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := requestIDFrom(ctx)

	var body renderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, id, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	req := body.Request
	req.ShowExceptions = s.defaults.ShowExceptions()
	if body.ShowExceptions != nil {
		req.ShowExceptions = *body.ShowExceptions
	}
	if req.Mode == "" {
		req.Mode = style.Mode(s.defaults.Mode)
	}
	if req.URLTemplate == "" {
		req.URLTemplate = s.defaults.URLTemplate
	}

	result, err := s.runner.Run(ctx, req)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = []string{pipeline.DefaultFormat}
	}
	if r.URL.Query().Get("raw") == "1" && len(formats) == 1 {
		f := render.Format(formats[0])
		w.Header().Set("Content-Type", render.MIMEType(f))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[formats[0]])
		return
	}

	resp := renderResponse{
		RequestID: id,
		DOTHash:   result.DOTHash,
		Cached:    result.CacheInfo.RenderHit,
		Artifacts: make(map[string]string, len(result.Artifacts)),
		Overlay:   result.Overlay,
		Vertices:  result.Stats.VertexCount,
		Edges:     result.Stats.EdgeCount,
	}
	for name, data := range result.Artifacts {
		f := render.Format(name)
		if f == render.FormatDOT {
			resp.Artifacts[name] = string(data)
			continue
		}
		src, err := render.ImageSrc(f, data)
		if err != nil {
			s.writeError(w, id, err)
			return
		}
		resp.Artifacts[name] = src
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) writeError(w http.ResponseWriter, id string, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("render failed", "id", id, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: id,
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidProcess, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidMode:
		return http.StatusBadRequest
	case errors.ErrCodeTransitionNotFound:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
