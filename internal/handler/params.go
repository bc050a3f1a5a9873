package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

var pathParam = runtime.BindStyledParameterOptions{
	ParamLocation: runtime.ParamLocationPath,
	Explode:       false,
	Required:      true,
}

// bindPath binds the chi URL parameter name into dest using the OpenAPI
// "simple" style, as generated server code does.
func bindPath(r *http.Request, name string, dest any) error {
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, pathParam); err != nil {
		return fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return nil
}

func draftIDParam(r *http.Request) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := bindPath(r, "draftId", &id)
	return id, err
}

func stopIDParam(r *http.Request) (int, error) {
	var id int
	err := bindPath(r, "stopId", &id)
	return id, err
}

// listParams are the query parameters shared by the catalog list endpoints.
type listParams struct {
	Q     *string
	Page  *int
	Limit *int
}

func bindListParams(r *http.Request) (listParams, error) {
	var p listParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", q, &p.Q); err != nil {
		return p, fmt.Errorf("invalid format for parameter q: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &p.Page); err != nil {
		return p, fmt.Errorf("invalid format for parameter page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	return p, nil
}

// decodeBody decodes a JSON request body into dst. It writes the error
// response itself and returns false when the body cannot be used.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	badRequest(w, "can't decode JSON body: "+err.Error())
	return false
}
