package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"

	"github.com/hanpama/gqlhello/internal/engine"
	"github.com/hanpama/gqlhello/internal/eventbus"
	"github.com/hanpama/gqlhello/internal/events"
	"github.com/hanpama/gqlhello/internal/executor"
	"github.com/hanpama/gqlhello/internal/reqid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

// Handler is an http.Handler that serves a GraphQL endpoint.
// It parses requests, runs the engine, and formats JSON responses.
type Handler struct {
	eng     *engine.Engine
	opt     Options
	console http.Handler
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// GraphiQL enables the in-browser IDE when true.
	GraphiQL bool

	// Endpoint is the path the console sends queries to.
	Endpoint string
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithGraphiQL(enable bool) Option    { return func(o *Options) { o.GraphiQL = enable } }
func WithEndpoint(path string) Option    { return func(o *Options) { o.Endpoint = path } }
func WithCORS(origins ...string) Option  { return func(o *Options) { o.CORS.AllowedOrigins = origins } }

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// NewHandler creates a GraphQL HTTP handler executing through eng.
func NewHandler(eng *engine.Engine, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second, GraphiQL: true, Endpoint: Path}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{
		eng:     eng,
		opt:     op,
		console: playground.Handler("gqlhello", op.Endpoint),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	var rid string
	if rid = r.Header.Get(RequestIDHeader); rid != "" {
		ctx = reqid.WithID(ctx, rid)
	} else {
		ctx, rid = reqid.NewContext(ctx)
	}
	w.Header().Set(RequestIDHeader, rid)

	status, operations := http.StatusOK, 0
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Method: r.Method, Path: r.URL.Path, RequestID: rid})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{
			Method:     r.Method,
			Path:       r.URL.Path,
			RequestID:  rid,
			Status:     status,
			Operations: operations,
			Duration:   time.Since(start),
		})
	}()

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if r.Method == http.MethodOptions {
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeJSON(w, status, errorResponse("method not allowed"), h.opt.Pretty)
		return
	}

	// Serve GraphiQL IDE when enabled and the client expects HTML.
	if r.Method == http.MethodGet && h.opt.GraphiQL && acceptsHTML(r.Header.Get("Accept")) && r.URL.Query().Get("query") == "" {
		h.console.ServeHTTP(w, r.WithContext(ctx))
		return
	}

	req, batch, rerr := parseRequest(r, h.opt.MaxBodyBytes)
	if rerr != nil {
		status = rerr.status
		writeJSON(w, status, errorResponse(rerr.message), h.opt.Pretty)
		return
	}

	if batch != nil {
		operations = len(batch)
		// Request errors stay inside their own entry; the batch itself succeeds.
		out := make([]any, len(batch))
		for i := range batch {
			out[i], _ = h.executeOne(ctx, batch[i])
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	operations = 1
	res, ok := h.executeOne(ctx, req)
	if !ok {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res, h.opt.Pretty)
}

// executeOne runs req and reports false when the query was rejected before
// execution.
func (h *Handler) executeOne(ctx context.Context, req engine.Request) (any, bool) {
	res, err := h.eng.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidQuery) {
			return response{Errors: engine.RequestErrors(err)}, false
		}
		return response{Errors: engine.RequestErrors(err)}, true
	}
	return res, true
}

// ------------------ Request parsing ------------------

type requestError struct {
	status  int
	message string
}

func badRequest(msg string) *requestError { return &requestError{status: http.StatusBadRequest, message: msg} }

func parseRequest(r *http.Request, maxBody int64) (engine.Request, []engine.Request, *requestError) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return engine.Request{}, nil, badRequest("missing 'query'")
		}
		var vars map[string]any
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return engine.Request{}, nil, badRequest("invalid 'variables' JSON")
			}
		}
		op := r.URL.Query().Get("operationName")
		return engine.Request{Query: q, Variables: vars, OperationName: op}, nil, nil
	}

	// POST
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return engine.Request{}, nil, &requestError{status: http.StatusUnsupportedMediaType, message: "unsupported Content-Type"}
	}

	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return engine.Request{}, nil, badRequest("failed to read body")
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return engine.Request{}, nil, &requestError{status: http.StatusRequestEntityTooLarge, message: "body too large"}
	}

	// Try array (batch)
	if len(body) > 0 && body[0] == '[' {
		var arr []engine.Request
		if err := json.Unmarshal(body, &arr); err != nil {
			return engine.Request{}, nil, badRequest("invalid JSON")
		}
		if len(arr) == 0 {
			return engine.Request{}, nil, badRequest("empty batch")
		}
		return engine.Request{}, arr, nil
	}
	// Single
	var req engine.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return engine.Request{}, nil, badRequest("invalid JSON")
	}
	if req.Query == "" {
		return engine.Request{}, nil, badRequest("missing 'query'")
	}
	return req, nil, nil
}

// ------------------ Response formatting ------------------

// response is the body of a request that produced no execution result.
type response struct {
	Errors []executor.GraphQLError `json:"errors"`
}

func errorResponse(msg string) response {
	return response{Errors: []executor.GraphQLError{{Message: msg}}}
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	if contains(opts.AllowedOrigins, "*") {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func acceptsHTML(accept string) bool {
	for _, p := range strings.Split(accept, ",") {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "text/html") || p == "*/*" {
			return true
		}
	}
	return false
}
