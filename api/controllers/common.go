package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/callcenter-backend/api/middleware"
	"github.com/angelmondragon/callcenter-backend/api/responses"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
)

// requireActor reads the authenticated actor or writes a 401 and returns false.
func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pkgAuth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return pkgAuth.Actor{}, false
	}
	return actor, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = raw[7:]
	}
	return strings.TrimSpace(raw)
}

func unavailableHandler(logg *logger.Logger, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceUnavailable(w, r, logg, name)
	}
}
