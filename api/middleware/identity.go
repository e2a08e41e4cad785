package middleware

import (
	"context"

	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/google/uuid"
)

// CustomerUUID returns the authenticated customer or a forbidden error for staff tokens.
func CustomerUUID(ctx context.Context) (uuid.UUID, error) {
	raw := CustomerIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid customer id")
	}
	return id, nil
}

func BusinessUUID(ctx context.Context) (uuid.UUID, error) {
	raw := BusinessIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "business context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid business id")
	}
	return id, nil
}

func SubjectUUID(ctx context.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(SubjectIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid subject id")
	}
	return id, nil
}

// BranchUUID is nil when the token is not bound to a branch.
func BranchUUID(ctx context.Context) (*uuid.UUID, error) {
	raw := BranchIDFromContext(ctx)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid branch id")
	}
	return &id, nil
}
