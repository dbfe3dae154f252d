package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/omarhassan/retailops-backend/api/middleware"
	pkgerrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

// actorID resolves the authenticated user from the request context. Every
// document records who created it, so a missing actor is a hard failure.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}
