package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"alkozay-factory-api/internal/backup"
	"alkozay-factory-api/internal/ledger"
	"alkozay-factory-api/internal/report"
	"alkozay-factory-api/internal/service"
	"alkozay-factory-api/pkg/apierror"
	"alkozay-factory-api/pkg/response"
)

// maxBodyBytes bounds JSON request bodies, backups included.
const maxBodyBytes = 10 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads and validates a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierror.BadRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return validateStruct(dst)
}

// validateStruct converts validator failures into an API validation error.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierror.BadRequest(err.Error())
	}
	details := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apierror.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return apierror.ValidationError("request validation failed", details...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// readBody reads a raw request body such as an uploaded backup.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apierror.BadRequest("failed to read request body")
	}
	return data, nil
}

// idParam parses the {id} path parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("id must be a positive integer")
	}
	return id, nil
}

// pageParams reads page and limit query parameters.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return page, limit
}

// paginate returns the window of n items selected by page and limit.
func paginate(n, page, limit int) (start, end int) {
	start = (page - 1) * limit
	if start > n {
		start = n
	}
	end = start + limit
	if end > n {
		end = n
	}
	return start, end
}

// writeError maps domain errors onto the API error envelope.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
		response.Error(w, apiErr)
	case ledger.IsValidation(err):
		response.Error(w, apierror.ValidationError(err.Error()))
	case errors.Is(err, backup.ErrInvalidBackup), errors.Is(err, report.ErrInvalidMonth):
		response.Error(w, apierror.BadRequest(err.Error()))
	case ledger.IsNotFound(err):
		response.Error(w, apierror.NotFound(err.Error()))
	case errors.Is(err, ledger.ErrInsufficientStock):
		response.Error(w, apierror.Conflict(err.Error()))
	case errors.Is(err, ledger.ErrNotConfirmed):
		response.Error(w, apierror.PreconditionFailed("this operation replaces all data; resend with confirmation"))
	case errors.Is(err, service.ErrNoSlotWritten):
		response.Error(w, apierror.ServiceUnavailable("the ledger could not be written to any storage slot"))
	default:
		response.Error(w, err)
	}
}
