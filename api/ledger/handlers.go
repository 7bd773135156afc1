// Package ledger exposes spreadsheet upload and record queries over HTTP.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ContabilidadSaas/api"
	"ContabilidadSaas/api/constants"
	"ContabilidadSaas/api/utils"
	"ContabilidadSaas/internal/ingest"
	"ContabilidadSaas/internal/ledger"
	"ContabilidadSaas/internal/logger"
	"ContabilidadSaas/internal/resource"
	"ContabilidadSaas/internal/workbook"

	"github.com/google/uuid"
)

// Ingester runs one upload.
type Ingester interface {
	Ingest(ctx context.Context, req ingest.Request) (*ingest.Result, error)
}

// Repository reads and bulk-deletes stored records.
type Repository interface {
	ListRecords(ctx context.Context, scope ledger.Scope, f ledger.Filter, offset, limit int) ([]ledger.Record, int, error)
	DeleteRecords(ctx context.Context, scope ledger.Scope, f ledger.Filter) (int, error)
	ListBatches(ctx context.Context, scope ledger.Scope) ([]ledger.Batch, error)
}

// HealthChecker reports resource health.
type HealthChecker interface {
	CheckNow(ctx context.Context) map[string]resource.Status
}

type Deps struct {
	Ingestor    Ingester
	Records     Repository
	Health      HealthChecker
	MaxUploadMB int
}

// recordView renders a record with its date and money as text.
type recordView struct {
	ledger.Record
	Fecha string  `json:"fecha"`
	Monto string  `json:"monto"`
	Saldo *string `json:"saldo"`
}

func newRecordView(r ledger.Record) recordView {
	v := recordView{
		Record: r,
		Fecha:  r.Date.Format(constants.DateFormat),
		Monto:  r.Amount.StringFixed(2),
	}
	if r.Balance != nil {
		s := r.Balance.StringFixed(2)
		v.Saldo = &s
	}
	return v
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		l := logger.Base().With().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
		l.Debug().Dur("elapsed", time.Since(start)).Msg("[LEDGER] request done")
	})
}

func scopeFrom(get func(string) string) (ledger.Scope, bool) {
	s := ledger.Scope{
		OwnerID:   strings.TrimSpace(get("user_id")),
		CompanyID: strings.TrimSpace(get("company_id")),
		VaultID:   strings.TrimSpace(get("vault_id")),
	}
	return s, s.OwnerID != "" && s.CompanyID != "" && s.VaultID != ""
}

func parseBool(name, raw string, def bool) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf(constants.ErrInvalidBool, name, raw)
	}
	return b, nil
}

func parseDay(name, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(constants.DateFormat, raw)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrInvalidDate, name, raw)
	}
	return &t, nil
}

// filterFrom reads category, flow_type, date_from, date_to and search.
func filterFrom(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	f := ledger.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if raw := strings.TrimSpace(q.Get("flow_type")); raw != "" {
		flow, ok := ledger.FlowFromToken(strings.ToLower(raw))
		if !ok {
			return f, fmt.Errorf(constants.ErrInvalidFlow, raw)
		}
		f.Flow = flow
	}
	var err error
	if f.DateFrom, err = parseDay("date_from", q.Get("date_from")); err != nil {
		return f, err
	}
	if f.DateTo, err = parseDay("date_to", q.Get("date_to")); err != nil {
		return f, err
	}
	return f, nil
}

// UploadLedger accepts a multipart spreadsheet and ingests it into the
// scope named by the form.
func UploadLedger(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		maxBytes := int64(deps.MaxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				api.RespondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf(constants.ErrFileTooLarge, deps.MaxUploadMB))
				return
			}
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidMultipart)
			return
		}
		scope, ok := scopeFrom(r.FormValue)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingScope)
			return
		}
		enforce, err := parseBool("enforce_period_check", r.FormValue("enforce_period_check"), true)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		allow, err := parseBool("allow_period_update", r.FormValue("allow_period_update"), false)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFileUploaded)
			return
		}
		defer file.Close()
		if !workbook.Supported(header.Filename) {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrUnsupportedFile)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileRead)
			return
		}
		if int64(len(data)) > maxBytes {
			api.RespondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf(constants.ErrFileTooLarge, deps.MaxUploadMB))
			return
		}

		res, err := deps.Ingestor.Ingest(r.Context(), ingest.Request{
			Workbook:           data,
			Scope:              scope,
			Filename:           header.Filename,
			EnforcePeriodCheck: enforce,
			AllowPeriodUpdate:  allow,
		})
		if err != nil {
			var pce *ingest.PeriodConflictError
			switch {
			case errors.As(err, &pce):
				api.RespondWithError(w, http.StatusConflict, fmt.Sprintf(constants.ErrPeriodConflict, pce.Period))
			case errors.Is(err, ingest.ErrNoValidHeader):
				api.RespondWithError(w, http.StatusUnprocessableEntity, constants.ErrNoValidHeader)
			default:
				log.Error().Err(err).Str("filename", header.Filename).Msg("[LEDGER] upload failed")
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrIngestFailed)
			}
			return
		}
		api.RespondWithFields(w, http.StatusCreated, true, "", nil, map[string]interface{}{"result": res})
	}
}

// ListRecords returns one page of records, newest date first.
func ListRecords(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeFrom(r.URL.Query().Get)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingScope)
			return
		}
		f, err := filterFrom(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		page, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		recs, total, err := repo.ListRecords(r.Context(), scope, f, page.Offset, page.Limit)
		if err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("[LEDGER] list records failed")
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed)
			return
		}
		page.SetPaginationStats(total)

		rows := make([]recordView, 0, len(recs))
		for _, rec := range recs {
			rows = append(rows, newRecordView(rec))
		}
		api.RespondWithFields(w, http.StatusOK, true, "", rows, map[string]interface{}{"pagination": page})
	}
}

// DeleteRecords removes every record in scope matching the filter. An
// empty filter is refused.
func DeleteRecords(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeFrom(r.URL.Query().Get)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingScope)
			return
		}
		f, err := filterFrom(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if f.Empty() {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrDeleteNeedsFilter)
			return
		}

		n, err := repo.DeleteRecords(r.Context(), scope, f)
		if err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("[LEDGER] delete records failed")
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDeleteFailed)
			return
		}
		logger.FromContext(r.Context()).Info().Int("deleted", n).Str("owner_id", scope.OwnerID).Msg("[LEDGER] records deleted")
		api.RespondWithFields(w, http.StatusOK, true, "", nil, map[string]interface{}{"deleted": n})
	}
}

// ListBatches returns the upload history of a scope.
func ListBatches(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeFrom(r.URL.Query().Get)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingScope)
			return
		}
		batches, err := repo.ListBatches(r.Context(), scope)
		if err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("[LEDGER] list batches failed")
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed)
			return
		}
		if batches == nil {
			batches = []ledger.Batch{}
		}
		api.RespondWithPayload(w, true, "", batches)
	}
}

// Health reports the status of every pingable resource; 503 when any is
// down.
func Health(hc HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := map[string]resource.Status{}
		if hc != nil {
			statuses = hc.CheckNow(r.Context())
		}
		healthy := true
		for _, st := range statuses {
			if !st.Healthy {
				healthy = false
			}
		}
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		api.RespondWithFields(w, status, healthy, "", nil, map[string]interface{}{"resources": statuses})
	}
}
