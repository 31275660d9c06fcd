package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	reqctx "logitrack/tracker/internal/context"
	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/models/dtos/responses"
	"logitrack/tracker/internal/services"
)

// ImportOptionsFromQuery reads dryrun, batch, strict and parallel. Flags
// accept strconv.ParseBool forms; an unparseable flag reads as false.
func ImportOptionsFromQuery(r *http.Request, defaultBatch int) services.ImportOptions {
	q := r.URL.Query()
	opts := services.DefaultImportOptions(defaultBatch)
	opts.DryRun = queryFlag(q.Get("dryrun"), false)
	opts.Strict = queryFlag(q.Get("strict"), true)
	opts.Parallel = queryFlag(q.Get("parallel"), true)
	if n, err := strconv.Atoi(q.Get("batch")); err == nil && n > 0 {
		opts.Batch = n
	}
	return opts
}

func queryFlag(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return b
}

// Import handles POST /api/v1/import. With stream=1 the body is plain-text
// progress lines ending in "RESULT {json}" or "ERROR message".
func (h *Handlers) Import() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := ImportOptionsFromQuery(r, h.deps.BatchSize)
		runID := uuid.NewString()
		w.Header().Set(constants.ImportRunHeader, runID)
		ctx := r.Context()
		stream := queryFlag(r.URL.Query().Get("stream"), false)

		logging.Info("Import requested",
			"request_id", reqctx.GetRequestID(ctx),
			"import_run_id", runID,
			"stream", stream,
			"dryrun", opts.DryRun,
		)

		if stream {
			h.streamImport(ctx, w, runID, opts)
			return
		}

		res, err := h.deps.Services.Import.RunWithID(ctx, runID, opts, nil)
		if err != nil {
			status, body := importFailure(err)
			common.WriteJSON(w, status, body)
			return
		}
		common.WriteJSON(w, http.StatusOK, res)
	}
}

func (h *Handlers) streamImport(ctx context.Context, w http.ResponseWriter, runID string, opts services.ImportOptions) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sw := &lineWriter{w: w, cancel: cancel}
	res, err := h.deps.Services.Import.RunWithID(ctx, runID, opts, sw.line)

	if err != nil {
		status, body := importFailure(err)
		// a run refused before its first line still gets a real status code
		if !sw.started && status != http.StatusInternalServerError {
			common.WriteJSON(w, status, body)
			return
		}
		sw.line("ERROR " + body.Error)
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		sw.line("ERROR " + err.Error())
		return
	}
	sw.line("RESULT " + string(payload))
}

// lineWriter streams progress lines. The first failed write cancels the run
// and silences every later line.
type lineWriter struct {
	w       http.ResponseWriter
	cancel  context.CancelFunc
	started bool
	broken  bool
}

func (lw *lineWriter) line(s string) {
	if lw.broken {
		return
	}
	if !lw.started {
		lw.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		lw.w.Header().Set("X-Content-Type-Options", "nosniff")
		lw.w.WriteHeader(http.StatusOK)
		lw.started = true
	}
	if _, err := fmt.Fprintln(lw.w, s); err != nil {
		lw.broken = true
		logging.Warn("Import stream closed by client", "error", err)
		lw.cancel()
		return
	}
	if f, ok := lw.w.(http.Flusher); ok {
		f.Flush()
	}
}

func importFailure(err error) (int, responses.ImportFailure) {
	var ie *services.ImportError
	if errors.As(err, &ie) {
		return ie.HTTPStatus(), responses.ImportFailure{OK: false, Error: ie.Error(), Completed: ie.Completed}
	}
	return http.StatusInternalServerError, responses.ImportFailure{OK: false, Error: err.Error()}
}
