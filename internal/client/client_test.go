package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/models/dtos"
)

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": data})
}

func TestSearch_CachesByParams(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		w.Header().Set(constants.SearchTierHeader, "exact")
		writeEnvelope(w, []dtos.SearchRow{{ShipmentID: r.URL.Query().Get("q")}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	res, err := c.Search(ctx, dtos.SearchParams{Q: "S1", Mode: "SEA"})
	require.NoError(t, err)
	assert.Equal(t, "exact", res.Tier)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "S1", res.Rows[0].ShipmentID)

	_, err = c.Search(ctx, dtos.SearchParams{Q: " S1 ", Mode: "SEA"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = c.Search(ctx, dtos.SearchParams{Q: "S1", Mode: "AIR"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	c.ClearCaches()
	_, err = c.Search(ctx, dtos.SearchParams{Q: "S1", Mode: "SEA"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestSearch_NewQuerySupersedesInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "slow" {
			close(started)
			select {
			case <-r.Context().Done():
			case <-release:
			}
			return
		}
		writeEnvelope(w, []dtos.SearchRow{{ShipmentID: "S2"}})
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL)

	var (
		wg      sync.WaitGroup
		slowErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = c.Search(context.Background(), dtos.SearchParams{Q: "slow"})
	}()

	<-started
	res, err := c.Search(context.Background(), dtos.SearchParams{Q: "fast"})
	require.NoError(t, err)
	assert.Equal(t, "S2", res.Rows[0].ShipmentID)

	wg.Wait()
	require.Error(t, slowErr)
	assert.True(t, errors.Is(slowErr, context.Canceled))
}

func TestDetail_CacheAndPrefetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/api/v1/detail/MISSING" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprint(w, `{"ok":false,"error":"Not found"}`)
			return
		}
		d := dtos.ShipmentDetail{Milestone: map[string]*string{}}
		d.Shipment.ShipmentID = r.URL.Path[len("/api/v1/detail/"):]
		writeEnvelope(w, d)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	c.Prefetch(ctx, "S1", "S2", "MISSING")
	assert.Equal(t, int32(3), hits.Load())

	d, err := c.Detail(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "S1", d.Shipment.ShipmentID)
	assert.Equal(t, int32(3), hits.Load())

	_, err = c.Detail(ctx, "MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(4), hits.Load())
}

func TestImport_JSONErrorCarriesCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s3cret", r.Header.Get(constants.AdminTokenHeader))
		assert.Equal(t, "false", r.URL.Query().Get("parallel"))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"ok":false,"error":"input_air: upsert failed","completed":["shipments","input_sea"]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithAdminToken("s3cret"))
	opts := DefaultImportOptions()
	opts.Parallel = false

	_, err := c.Import(context.Background(), opts)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "input_air: upsert failed", apiErr.Message)
	assert.Equal(t, []string{"shipments", "input_sea"}, apiErr.Completed)
}

func TestImport_ClearsCachesAfterWrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/import" {
			dry := r.URL.Query().Get("dryrun") == "true"
			_ = json.NewEncoder(w).Encode(dtos.ImportResult{OK: true, DryRun: dry})
			return
		}
		writeEnvelope(w, []dtos.SearchRow{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	_, err := c.Search(ctx, dtos.SearchParams{Q: "S1"})
	require.NoError(t, err)

	dry := DefaultImportOptions()
	dry.DryRun = true
	_, err = c.Import(ctx, dry)
	require.NoError(t, err)
	assert.Equal(t, 1, c.searches.Len())

	_, err = c.Import(ctx, DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, c.searches.Len())
}

func streamServer(t *testing.T, handler func(w http.ResponseWriter, f http.Flusher, r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("stream"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		handler(w, w.(http.Flusher), r)
	}))
}

func TestImportStream_Result(t *testing.T) {
	srv := streamServer(t, func(w http.ResponseWriter, f http.Flusher, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "START (strict=true, batch=1000, parallel=true, mirror=true, dryrun=false)")
		_, _ = fmt.Fprintln(w, "- shipments: upsert 2 rows (batch=1000)")
		f.Flush()
		_, _ = fmt.Fprintln(w, `RESULT {"ok":true,"strict":true,"summary":{"shipments":2}}`)
	})
	defer srv.Close()

	var lines []string
	res, err := New(srv.URL).ImportStream(context.Background(), DefaultImportOptions(), func(l string) {
		lines = append(lines, l)
	})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 2, res.Summary.Shipments)
	assert.Len(t, lines, 2)
}

func TestImportStream_ErrorLine(t *testing.T) {
	srv := streamServer(t, func(w http.ResponseWriter, _ http.Flusher, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "START (strict=true, batch=1000, parallel=true, mirror=true, dryrun=false)")
		_, _ = fmt.Fprintln(w, "ERROR header mismatch for table shipments: missing [eta_date] | extra []")
	})
	defer srv.Close()

	_, err := New(srv.URL).ImportStream(context.Background(), DefaultImportOptions(), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "header mismatch")
}

func TestImportStream_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = fmt.Fprint(w, `{"ok":false,"error":"Import already running"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ImportStream(context.Background(), DefaultImportOptions(), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Import already running", apiErr.Message)
}

func TestImportStream_Cancel(t *testing.T) {
	release := make(chan struct{})
	srv := streamServer(t, func(w http.ResponseWriter, f http.Flusher, r *http.Request) {
		_, _ = fmt.Fprintln(w, "START (strict=true, batch=1000, parallel=true, mirror=true, dryrun=false)")
		f.Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		case <-time.After(5 * time.Second):
		}
	})
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lines []string
	_, err := New(srv.URL).ImportStream(ctx, DefaultImportOptions(), func(l string) {
		lines = append(lines, l)
		if len(lines) == 1 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, ErrCancelled)
	require.Len(t, lines, 2)
	assert.Equal(t, CancelledLine, lines[1])
}
