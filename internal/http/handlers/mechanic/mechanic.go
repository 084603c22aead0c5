// Package mechanic contains all HTTP handlers related to the Mechanic resource.
//
// Handlers follow the closure / factory pattern: each exported function
// receives its dependencies once at startup and returns the
// http.HandlerFunc that runs on every request.
//
//	router.HandleFunc("GET /mechanics", mechanic.List(svc, log))
//
// Field-shape validation (non-blank names) happens here. Business rules
// (code present, code exists) are the service's job; this package only
// maps the service's error kinds onto status codes.
package mechanic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/mechanics-api/internal/service"
	"github.com/aanand-mishra/mechanics-api/internal/types"
	"github.com/aanand-mishra/mechanics-api/internal/utils/response"
	"github.com/aanand-mishra/mechanics-api/internal/utils/validate"
)

// Query parameter defaults for GET /mechanics.
const (
	DefaultPage      = 1
	DefaultRPP       = 10
	DefaultSortField = "code"
	DefaultSortOrder = "desc"
)

// Service is the subset of service.Service the handlers need.
type Service interface {
	List(ctx context.Context, p service.ListParams) (types.Page[types.MechanicDTO], error)
	Get(ctx context.Context, code string) (types.MechanicDTO, error)
	Create(ctx context.Context, dto types.MechanicDTO) (types.MechanicDTO, error)
	Update(ctx context.Context, code string, dto types.MechanicDTO) (types.MechanicDTO, error)
	Delete(ctx context.Context, code string) error
}

// Register mounts every mechanic route on mux.
//
//	GET    /mechanics         → list (search, sort, paginate)
//	POST   /mechanics         → create
//	GET    /mechanics/{code}  → get one
//	PUT    /mechanics/{code}  → full replace
//	DELETE /mechanics/{code}  → delete
func Register(mux *http.ServeMux, svc Service, log *slog.Logger) {
	mux.HandleFunc("GET /mechanics", List(svc, log))
	mux.HandleFunc("POST /mechanics", New(svc, log))
	mux.HandleFunc("GET /mechanics/{code}", Get(svc, log))
	mux.HandleFunc("PUT /mechanics/{code}", Update(svc, log))
	mux.HandleFunc("DELETE /mechanics/{code}", Delete(svc, log))
}

// ─────────────────────────────────────────────────────────────────────────────
// List handles GET /mechanics?search&page&rpp&sortField&sortOrder
//
// Success response (200 OK):
//
//	{ "meta": { "message": "Successfully retrieved mechanics.", "pageCount": 3, "resultCount": 25 },
//	  "data": [ { "code": "M100", ... } ] }
//
// Error responses:
//
//	400 Bad Request  page/rpp not integers or < 1, unknown sort field/order
//	500 Internal     database error
//
// ─────────────────────────────────────────────────────────────────────────────
func List(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page, err := intParam(q.Get("page"), DefaultPage)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Message("page must be an integer"))
			return
		}
		rpp, err := intParam(q.Get("rpp"), DefaultRPP)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Message("rpp must be an integer"))
			return
		}

		params := service.ListParams{
			Search:    q.Get("search"),
			SortField: stringParam(q.Get("sortField"), DefaultSortField),
			SortOrder: stringParam(q.Get("sortOrder"), DefaultSortOrder),
			Page:      page,
			RPP:       rpp,
		}

		log.DebugContext(r.Context(), "listing mechanics",
			slog.String("search", params.Search),
			slog.Int("page", params.Page),
			slog.Int("rpp", params.RPP),
		)

		result, err := svc.List(r.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Page(
			"Successfully retrieved mechanics.",
			result.Content,
			result.TotalPages,
			result.TotalElements,
		))
	}
}

// Get handles GET /mechanics/{code}
func Get(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		log.DebugContext(r.Context(), "getting a mechanic", slog.String("code", code))

		dto, err := svc.Get(r.Context(), code)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK,
			response.OK("Successfully retrieved mechanic.", dto))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /mechanics
//
// Request body (JSON):
//
//	{ "code": "M100", "firstName": "Jane", "lastName": "Doe", "specialization": "Brakes" }
//
// Success response (201 Created): the stored mechanic, echoed back.
//
// Error responses:
//
//	400 Bad Request  empty body, malformed JSON, blank field, missing code
//	409 Conflict     code already exists
//	500 Internal     database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, ok := decodeMechanic(w, r)
		if !ok {
			return
		}

		created, err := svc.Create(r.Context(), dto)
		if err != nil {
			writeError(w, err)
			return
		}

		log.InfoContext(r.Context(), "mechanic created", slog.String("code", created.Code))

		response.WriteJSON(w, http.StatusCreated,
			response.OK("Successfully added mechanic", created))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /mechanics/{code}
// Replaces ALL non-key fields. The code in the path wins; any code in the
// body is ignored.
//
// Error responses:
//
//	400 Bad Request  empty body, malformed JSON, blank field
//	404 Not Found    unknown code
//	500 Internal     database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")

		dto, ok := decodeMechanic(w, r)
		if !ok {
			return
		}

		updated, err := svc.Update(r.Context(), code, dto)
		if err != nil {
			writeError(w, err)
			return
		}

		log.InfoContext(r.Context(), "mechanic updated", slog.String("code", code))

		response.WriteJSON(w, http.StatusOK,
			response.OK("Mechanic updated successfully", updated))
	}
}

// Delete handles DELETE /mechanics/{code}
// Returns 404 for an unknown code; deleting twice is an error.
func Delete(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")

		if err := svc.Delete(r.Context(), code); err != nil {
			writeError(w, err)
			return
		}

		log.InfoContext(r.Context(), "mechanic deleted", slog.String("code", code))

		response.WriteJSON(w, http.StatusOK,
			response.Message("Mechanic deleted successfully"))
	}
}

// decodeMechanic reads and validates the request body. On failure it has
// already written the 400 response and returns ok == false.
func decodeMechanic(w http.ResponseWriter, r *http.Request) (types.MechanicDTO, bool) {
	var dto types.MechanicDTO

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&dto)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return dto, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return dto, false
	}

	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body must contain a single JSON object")))
		return dto, false
	}

	if err := validate.Struct(dto); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(err))
		return dto, false
	}

	return dto, true
}

// writeError maps a service error onto a status code. Already-exists and
// invalid-code are INVALID_REQUEST like any other client error, but get
// their own status so clients can tell them apart.
func writeError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		response.WriteJSON(w, http.StatusInternalServerError,
			response.Message("Internal server error"))
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCode):
		status = http.StatusNotFound
	case svcErr.Kind == service.KindInvalidRequest:
		status = http.StatusBadRequest
	}

	response.WriteJSON(w, status, response.Message(svcErr.Message))
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func stringParam(raw, def string) string {
	if raw == "" {
		return def
	}
	return raw
}
