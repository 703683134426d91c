package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/google/uuid"
)

// maxJSONBody bounds decoded request bodies.
const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object into dst. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("", "Request body is required")
		}
		return domain.Invalid("", fmt.Sprintf("Malformed request body: %v", err))
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Invalid("", "Invalid "+name)
	}
	return id, nil
}

// pageParams reads limit and offset from the query string.
func pageParams(r *http.Request) domain.PageParams {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return domain.PageParams{Limit: int32(limit), Offset: int32(offset)}.Normalize()
}

type idsRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

type listResponse[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
	Limit   int32 `json:"limit"`
	Offset  int32 `json:"offset"`
	HasMore bool  `json:"has_more"`
}

func toList[S, T any](page *domain.Page[S], conv func(*S) T) listResponse[T] {
	out := listResponse[T]{
		Results: make([]T, 0, len(page.Results)),
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(),
	}
	for i := range page.Results {
		out.Results = append(out.Results, conv(&page.Results[i]))
	}
	return out
}
