package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	goStrength "github.com/MrEthical07/goStrength"
	"github.com/MrEthical07/goStrength/compat"
	"github.com/MrEthical07/goStrength/middleware"
)

const (
	maxRequestBytes = 16 << 10
	// MaxPasswordLength bounds the runes scored per request; pattern matching cost grows
	// faster than linearly with length.
	MaxPasswordLength = 256
)

// Options configures the handler.
type Options struct {
	// SiteTitle is added to the disallowed list when a request carries form fields.
	SiteTitle string
	// Limiter guards the scoring routes. Nil disables rate limiting.
	Limiter middleware.Limiter
	// KeyFunc derives the rate limit key. Defaults to the client IP.
	KeyFunc middleware.KeyFunc
}

type meterRequest struct {
	Password   string            `json:"password"`
	Confirm    string            `json:"confirm"`
	Disallowed []string          `json:"disallowed"`
	Fields     map[string]string `json:"fields"`
}

type meterResponse struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

type estimateRequest struct {
	Password   string   `json:"password"`
	UserInputs []string `json:"user_inputs"`
}

type readyResponse struct {
	State   string `json:"state"`
	Ready   bool   `json:"ready"`
	Pending int    `json:"pending"`
}

type errorResponse struct {
	Error string `json:"error"`
	State string `json:"state,omitempty"`
}

type handler struct {
	engine *goStrength.Engine
	opts   Options
}

// NewHandler returns the HTTP surface for engine.
func NewHandler(engine *goStrength.Engine, opts Options) http.Handler {
	h := &handler{engine: engine, opts: opts}

	var onLimited func()
	if engine != nil {
		onLimited = engine.RecordRateLimited
	}
	limit := middleware.RateLimit(opts.Limiter, onLimited, opts.KeyFunc)

	mux := http.NewServeMux()
	mux.Handle("POST /meter", limit(http.HandlerFunc(h.meter)))
	mux.Handle("POST /estimate", limit(http.HandlerFunc(h.estimate)))
	mux.HandleFunc("GET /ready", h.ready)
	mux.HandleFunc("GET /report", h.report)
	return middleware.RequestID(mux)
}

func (h *handler) meter(w http.ResponseWriter, r *http.Request) {
	var body meterRequest
	if !decode(w, r, &body) || !checkLength(w, body.Password, body.Confirm) {
		return
	}

	disallowed := body.Disallowed
	if disallowed == nil && len(body.Fields) > 0 {
		disallowed = h.engine.UserInputDisallowedList(h.fieldSource(r, body.Fields))
	}

	score := h.engine.Meter(body.Password, disallowed, body.Confirm)
	writeJSON(w, http.StatusOK, meterResponse{Score: score, Label: compat.Label(score)})
}

func (h *handler) estimate(w http.ResponseWriter, r *http.Request) {
	var body estimateRequest
	if !decode(w, r, &body) || !checkLength(w, body.Password) {
		return
	}

	res, err := h.engine.Estimate(body.Password, body.UserInputs)
	switch {
	case errors.Is(err, goStrength.ErrEngineNotReady):
		// Starts the load, or retries a failed one, without queueing a callback per request.
		_ = h.engine.RequestLoad()
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "engine not ready",
			State: h.engine.State().String(),
		})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "estimation failed"})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *handler) ready(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, readyResponse{
		State:   h.engine.State().String(),
		Ready:   h.engine.Ready(),
		Pending: h.engine.Pending(),
	})
}

func (h *handler) report(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Report())
}

func (h *handler) fieldSource(r *http.Request, fields map[string]string) compat.MapFields {
	src := compat.MapFields{
		PageTitle: h.opts.SiteTitle,
		PageURL:   pageURL(r),
		Fields:    make(map[string]compat.Field, len(fields)),
	}
	for id, v := range fields {
		src.Fields[id] = compat.Field{Value: v}
	}
	return src
}

// pageURL prefers the Referer, which names the page hosting the form.
func pageURL(r *http.Request) string {
	if ref := strings.TrimSpace(r.Referer()); ref != "" {
		return ref
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request"})
		return false
	}
	return true
}

func checkLength(w http.ResponseWriter, values ...string) bool {
	for _, v := range values {
		if utf8.RuneCountInString(v) > MaxPasswordLength {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "password too long"})
			return false
		}
	}
	return true
}

// writeJSON encodes before writing the header so an unencodable value becomes a 500
// instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encoding failed"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
