package types

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to the rich errors this module reports. Transport
// layers can map them to wire-level error identifiers.
const (
	TextCodeUnknownUser         = "UNKNOWN_USER"
	TextCodeOwnershipConflict   = "OWNERSHIP_CONFLICT"
	TextCodeGroupNotFound       = "PREFERENCE_GROUP_NOT_FOUND"
	TextCodeInvalidRequestShape = "INVALID_REQUEST_SHAPE"
	TextCodeMalformedPreference = "MALFORMED_PREFERENCE"
)

// NewUnknownUserError reports that the referenced owner does not exist in
// the identity graph.
func NewUnknownUserError(login string) error {
	return goerrors.New(fmt.Sprintf("go-prefgraph: user %q does not exist", login), goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeUnknownUser).
		WithMetadata(map[string]any{"login": login})
}

// NewOwnershipConflictError reports a write attempted by a non-owning user
// on an already bound instance.
func NewOwnershipConflictError(instanceName, owner string) error {
	return goerrors.New(fmt.Sprintf("go-prefgraph: preference %q is already claimed by another user", instanceName), goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodeOwnershipConflict).
		WithMetadata(map[string]any{"instance": instanceName, "attempted_by": owner})
}

// NewGroupNotFoundError reports a delete target group that does not exist.
func NewGroupNotFoundError(groupName string) error {
	return goerrors.New(fmt.Sprintf("go-prefgraph: preference group %q does not exist", groupName), goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeGroupNotFound).
		WithMetadata(map[string]any{"group": groupName})
}

// NewInvalidRequestShapeError reports a write request carrying a number of
// instances other than one.
func NewInvalidRequestShapeError(groupName string, count int) error {
	return goerrors.New(fmt.Sprintf("go-prefgraph: preference %q must carry exactly one instance, got %d", groupName, count), goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeInvalidRequestShape).
		WithMetadata(map[string]any{"group": groupName, "instances": count})
}

// NewMalformedPreferenceError reports a stored value that could not be
// parsed during shape-specific decoding. The field names the sub-collection
// being extracted when parsing failed.
func NewMalformedPreferenceError(field string, cause error) error {
	return goerrors.Wrap(cause, goerrors.CategoryValidation, fmt.Sprintf("go-prefgraph: malformed preference value (%s)", field)).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeMalformedPreference).
		WithMetadata(map[string]any{"field": field})
}

// IsUnknownUser reports whether err carries the unknown-user text code.
func IsUnknownUser(err error) bool { return hasTextCode(err, TextCodeUnknownUser) }

// IsOwnershipConflict reports whether err carries the ownership-conflict
// text code.
func IsOwnershipConflict(err error) bool { return hasTextCode(err, TextCodeOwnershipConflict) }

// IsGroupNotFound reports whether err carries the group-not-found text code.
func IsGroupNotFound(err error) bool { return hasTextCode(err, TextCodeGroupNotFound) }

// IsInvalidRequestShape reports whether err carries the invalid-shape text
// code.
func IsInvalidRequestShape(err error) bool { return hasTextCode(err, TextCodeInvalidRequestShape) }

// IsMalformedPreference reports whether err carries the malformed-value text
// code.
func IsMalformedPreference(err error) bool { return hasTextCode(err, TextCodeMalformedPreference) }

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
