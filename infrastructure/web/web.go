// Package web contains a small web framework extension over the standard
// library mux: Encoder-based responses, middleware chains, and route groups.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jrazmi/taskhub/sdk/environment"
)

// Encoder defines behavior that can encode a data model and provide the
// content type for that encoding.
type Encoder interface {
	Encode() (data []byte, contentType string, err error)
}

// HandlerFunc represents a function that handles a http request and returns
// something to encode.
type HandlerFunc func(ctx context.Context, r *http.Request) Encoder

// Middleware wraps a HandlerFunc.
type Middleware func(HandlerFunc) HandlerFunc

// Telemetry represents a type that manages trace identifiers.
type Telemetry interface {
	SetTraceID(ctx context.Context) context.Context
	GetTraceID(ctx context.Context) string
}

// WebHandler is the entrypoint into our application and what configures the
// context object for each of our http handlers.
type WebHandler struct {
	mux       *http.ServeMux
	log       *slog.Logger
	telemetry Telemetry

	corsOrigins    []string
	defaultHeaders map[string]string

	globalMiddleware []Middleware
}

// HandlerOptions is the exportable configuration struct.
type HandlerOptions struct {
	CORSOrigins    []string `env:"CORS_ORIGINS" default:"*" separator:","`
	DefaultHeaders map[string]string
}

// HandlerOption configures a WebHandler at construction time.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	log              *slog.Logger
	telemetry        Telemetry
	corsOrigins      []string
	defaultHeaders   map[string]string
	globalMiddleware []Middleware
}

// WithLogging sets the logger.
func WithLogging(log *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.log = log
	}
}

// WithTelemetry sets the telemetry provider.
func WithTelemetry(tel Telemetry) HandlerOption {
	return func(o *handlerOptions) {
		o.telemetry = tel
	}
}

// WithCORS sets CORS origins.
func WithCORS(origins []string) HandlerOption {
	return func(o *handlerOptions) {
		o.corsOrigins = origins
	}
}

// WithDefaultHeaders sets headers applied to every response.
func WithDefaultHeaders(headers map[string]string) HandlerOption {
	return func(o *handlerOptions) {
		if o.defaultHeaders == nil {
			o.defaultHeaders = make(map[string]string)
		}
		for k, v := range headers {
			o.defaultHeaders[k] = v
		}
	}
}

// WithGlobalMiddleware adds middleware applied to every route.
func WithGlobalMiddleware(middleware ...Middleware) HandlerOption {
	return func(o *handlerOptions) {
		o.globalMiddleware = append(o.globalMiddleware, middleware...)
	}
}

// NewWebHandlerFromEnv creates a new WebHandler from environment variables.
func NewWebHandlerFromEnv(prefix string, opts ...HandlerOption) (*WebHandler, error) {
	var options HandlerOptions
	if err := environment.ParseEnvTags(prefix, &options); err != nil {
		return nil, fmt.Errorf("parsing webhandler config: %w", err)
	}
	return newWebHandler(options, opts...), nil
}

// NewWebHandler creates a new WebHandler with the given config.
func NewWebHandler(cfg HandlerOptions, opts ...HandlerOption) *WebHandler {
	return newWebHandler(cfg, opts...)
}

func newWebHandler(cfg HandlerOptions, opts ...HandlerOption) *WebHandler {
	internalOpts := &handlerOptions{
		corsOrigins:      cfg.CORSOrigins,
		defaultHeaders:   cfg.DefaultHeaders,
		globalMiddleware: make([]Middleware, 0),
	}

	if internalOpts.defaultHeaders == nil {
		internalOpts.defaultHeaders = make(map[string]string)
	}

	for _, opt := range opts {
		opt(internalOpts)
	}

	handler := &WebHandler{
		mux:              http.NewServeMux(),
		log:              internalOpts.log,
		telemetry:        internalOpts.telemetry,
		corsOrigins:      internalOpts.corsOrigins,
		defaultHeaders:   internalOpts.defaultHeaders,
		globalMiddleware: internalOpts.globalMiddleware,
	}

	// CORS runs first (before Logger, Errors, etc.), so prepend it once all
	// other options are applied.
	if len(handler.corsOrigins) > 0 {
		corsMiddleware := handler.corsMiddleware()
		handler.globalMiddleware = append([]Middleware{corsMiddleware}, handler.globalMiddleware...)
	}

	return handler
}

// Handle registers a handler for the method and path with the global
// middleware plus any route-specific middleware applied.
func (wh *WebHandler) Handle(method, path string, handler HandlerFunc, middleware ...Middleware) {
	finalHandler := wh.buildHandlerChain(handler, middleware...)

	httpHandler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if wh.telemetry != nil {
			ctx = wh.telemetry.SetTraceID(ctx)
		}
		ctx = setWriter(ctx, w)

		for k, v := range wh.defaultHeaders {
			w.Header().Set(k, v)
		}

		resp := finalHandler(ctx, r)

		if err := Respond(ctx, w, resp); err != nil && wh.log != nil {
			wh.log.ErrorContext(ctx, "respond error", "error", err)
		}
	}

	pattern := fmt.Sprintf("%s %s", strings.ToUpper(method), path)
	wh.mux.HandleFunc(pattern, httpHandler)
}

// HandleRaw registers an http.Handler directly, bypassing global middleware.
func (wh *WebHandler) HandleRaw(pattern string, handler http.Handler) {
	wh.mux.Handle(pattern, handler)
}

// ServeHTTP implements the http.Handler interface.
func (wh *WebHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wh.mux.ServeHTTP(w, r)
}
