package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"crowdlog/internal/models"
	"crowdlog/internal/services/dataloader"
	"crowdlog/internal/services/filter"
	"crowdlog/internal/services/savedfilters"
	"crowdlog/internal/services/storage"
	"crowdlog/internal/services/tablesort"
)

// ErrBadRequest marks malformed query parameters and bodies
var ErrBadRequest = errors.New("bad request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// JSON writes v with the given status code
func JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// ErrorResponse sends an error response
func ErrorResponse(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	log.Printf("Error: %s (status %d)", message, statusCode)
	JSON(w, r, statusCode, map[string]string{"error": message})
}

// Error sends err with the status its kind maps to
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(w, r, err.Error(), StatusFor(err))
}

// StatusFor maps domain errors to HTTP status codes
func StatusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, dataloader.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, dataloader.ErrInsufficientRows),
		errors.Is(err, dataloader.ErrNoMonthColumns),
		errors.Is(err, dataloader.ErrNoRecords):
		return http.StatusUnprocessableEntity
	case errors.Is(err, savedfilters.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, storage.ErrIncorrectPassword):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrAlreadyEncrypted),
		errors.Is(err, storage.ErrNotEncrypted):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, savedfilters.ErrNameRequired),
		errors.Is(err, filter.ErrUnknownFacet),
		errors.Is(err, filter.ErrUnknownSortMode),
		errors.Is(err, filter.ErrUnknownMonth),
		errors.Is(err, tablesort.ErrUnknownKey),
		errors.Is(err, storage.ErrPasswordTooShort),
		errors.Is(err, dataloader.ErrUnknownPreference),
		errors.As(err, &verr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DecodeAndValidate reads a JSON body into v and checks its validate tags
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrBadRequest, describe(verr))
		}
		return err
	}
	return nil
}

func describe(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, e.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// ParseMode reads an analysis mode, defaulting to overall
func ParseMode(s string) (models.AnalysisMode, error) {
	if s == "" {
		return models.ModeOverall, nil
	}
	m := models.AnalysisMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown analysis mode %q", ErrBadRequest, s)
	}
	return m, nil
}

// ParseUnit reads a display unit, defaulting to hours
func ParseUnit(s string) (models.DisplayUnit, error) {
	if s == "" {
		return models.UnitHours, nil
	}
	u := models.DisplayUnit(s)
	if !u.Valid() {
		return "", fmt.Errorf("%w: unknown display unit %q", ErrBadRequest, s)
	}
	return u, nil
}

// ParseFacet reads a facet name
func ParseFacet(s string) (models.Facet, error) {
	f := models.Facet(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", filter.ErrUnknownFacet, s)
	}
	return f, nil
}

// ParseBaseline reads an optional reference value
func ParseBaseline(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid baseline %q", ErrBadRequest, s)
	}
	return &v, nil
}
