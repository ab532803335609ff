package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

func TestParsePaginationDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/calls", nil)
	params, err := ParsePagination(req)
	require.NoError(t, err)
	assert.Equal(t, pagination.DefaultLimit, params.Limit)
	assert.Empty(t, params.Cursor)
}

func TestParsePaginationRejectsBadInput(t *testing.T) {
	for _, url := range []string{"/calls?limit=0", "/calls?limit=abc", "/calls?limit=101", "/calls?cursor=%25%25"} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		_, err := ParsePagination(req)
		require.Error(t, err, url)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), url)
	}
}

func TestParseQueryDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	req := httptest.NewRequest(http.MethodGet, "/tasks?from=2026-04-02", nil)
	got, err := ParseQueryDate(req, "from", loc)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2026, 4, 1, 21, 0, 0, 0, time.UTC)))

	missing, err := ParseQueryDate(req, "to", loc)
	require.NoError(t, err)
	assert.Nil(t, missing)

	bad := httptest.NewRequest(http.MethodGet, "/tasks?from=04/02/2026", nil)
	_, err = ParseQueryDate(bad, "from", loc)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseURLUUID(t *testing.T) {
	id := uuid.New()
	rc := chi.NewRouteContext()
	rc.URLParams.Add("leadId", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	got, err := ParseURLUUID(req, "leadId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseURLUUID(req, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type categoryBody struct {
	Category string `json:"category" validate:"required,call_category"`
	Role     string `json:"role" validate:"omitempty,account_role"`
}

func TestCustomValidationTags(t *testing.T) {
	require.NoError(t, ValidateStruct(&categoryBody{Category: "interested", Role: "cc_agent"}))

	err := ValidateStruct(&categoryBody{Category: "bogus", Role: "owner"})
	require.Error(t, err)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "category")
	assert.Contains(t, details, "role")
}
