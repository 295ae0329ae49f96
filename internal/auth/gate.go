package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"studybuddy/internal/domain"
)

// Reason classifies why the gate rejected an operation.
type Reason string

const (
	ReasonMissingIdentity   Reason = "missing_identity"
	ReasonInvalidIdentity   Reason = "invalid_identity"
	ReasonMissingOrBadScope Reason = "missing_or_bad_scope"
	ReasonInvalidScope      Reason = "invalid_scope"
	ReasonOwnershipMismatch Reason = "ownership_mismatch"
	ReasonResourceNotFound  Reason = "resource_not_found"
)

// RejectionError is the terminal outcome of a failed gate pipeline. Its
// message is deliberately generic per reason: validation failures are
// collapsed so a caller cannot probe which check failed, and ownership
// mismatches read the same as missing resources to avoid leaking existence.
type RejectionError struct {
	Reason Reason
	cause  error
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonMissingIdentity:
		return "missing identity credential"
	case ReasonInvalidIdentity:
		return "invalid or expired identity credential"
	case ReasonMissingOrBadScope:
		return "missing or malformed resource scope"
	case ReasonInvalidScope:
		return "invalid or expired resource scope"
	case ReasonOwnershipMismatch:
		return "access to this resource is denied"
	case ReasonResourceNotFound:
		return "resource not found"
	default:
		return "authorization rejected"
	}
}

// Unwrap exposes the underlying cause for logging; the cause never reaches
// the client.
func (e *RejectionError) Unwrap() error {
	return e.cause
}

// StatusCode implements domain.HTTPError.
func (e *RejectionError) StatusCode() int {
	switch e.Reason {
	case ReasonMissingIdentity, ReasonInvalidIdentity, ReasonInvalidScope:
		return http.StatusUnauthorized
	case ReasonMissingOrBadScope:
		return http.StatusBadRequest
	case ReasonOwnershipMismatch:
		return http.StatusForbidden
	case ReasonResourceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}

// Is maps rejections onto the domain sentinels so errors.Is keeps working in
// the generic error handler.
func (e *RejectionError) Is(target error) bool {
	switch e.Reason {
	case ReasonMissingIdentity, ReasonInvalidIdentity, ReasonInvalidScope:
		return target == domain.ErrUnauthorized
	case ReasonMissingOrBadScope:
		return target == domain.ErrValidation
	case ReasonOwnershipMismatch:
		return target == domain.ErrForbidden
	case ReasonResourceNotFound:
		return target == domain.ErrNotFound
	}
	return false
}

func reject(reason Reason, cause error) *RejectionError {
	return &RejectionError{Reason: reason, cause: cause}
}

// Credentials are the raw tokens extracted from a request's carriers. An
// empty string means the credential was absent.
type Credentials struct {
	Identity string
	Scope    string
}

// Grant is the successful outcome of the full pipeline.
type Grant[R any] struct {
	Subject  string
	Scope    *ScopePayload
	Resource R
}

// ResolveFunc looks a named resource up by (name, owner subject). It must
// return domain.ErrNotFound (possibly wrapped) when no such resource exists.
type ResolveFunc[R any] func(ctx context.Context, name, owner string) (R, error)

// Gate runs the per-operation authorization pipeline:
//
//	identity extraction → identity validation → scope extraction →
//	scope validation → ownership check → resource resolution
//
// It holds no mutable state across requests; every decision is a pure
// function of the presented credentials and the resolver's answer.
type Gate struct {
	tokens *TokenService
	scopes *ScopeCodec
}

// NewGate creates a gate over the given token service and scope codec.
func NewGate(tokens *TokenService, scopes *ScopeCodec) *Gate {
	return &Gate{tokens: tokens, scopes: scopes}
}

// Identity runs the identity half of the pipeline and returns the verified
// claims. Operations that target no named resource (identity check, folder
// creation) need nothing more.
func (g *Gate) Identity(creds Credentials) (*Claims, error) {
	if creds.Identity == "" {
		return nil, reject(ReasonMissingIdentity, nil)
	}
	claims, err := g.tokens.Validate(creds.Identity)
	if err != nil {
		// Malformed, bad signature and expired all collapse to one
		// client-visible category.
		return nil, reject(ReasonInvalidIdentity, err)
	}
	return claims, nil
}

// Authorize runs the full pipeline for an operation targeting a named
// resource and returns the resolved resource on success.
func Authorize[R any](ctx context.Context, g *Gate, creds Credentials, resolve ResolveFunc[R]) (*Grant[R], error) {
	claims, err := g.Identity(creds)
	if err != nil {
		return nil, err
	}

	if creds.Scope == "" {
		return nil, reject(ReasonMissingOrBadScope, nil)
	}

	payload, err := g.scopes.Decode(creds.Scope)
	switch {
	case err == nil:
	case errors.Is(err, ErrScopeMalformed):
		return nil, reject(ReasonMissingOrBadScope, err)
	default:
		return nil, reject(ReasonInvalidScope, err)
	}

	// Exact match on the canonicalized email, case-sensitive.
	if payload.Owner != claims.SubjectEmail() {
		return nil, reject(ReasonOwnershipMismatch, nil)
	}

	resource, err := resolve(ctx, payload.Name, payload.Owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, reject(ReasonResourceNotFound, err)
		}
		return nil, fmt.Errorf("resolve resource %q: %w", payload.Name, err)
	}

	return &Grant[R]{
		Subject:  claims.SubjectEmail(),
		Scope:    payload,
		Resource: resource,
	}, nil
}
