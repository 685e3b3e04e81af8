// Package errors provides structured domain errors with gRPC mapping and
// localized user messages.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"

	// Rules and costing
	CodeUnknownAttribute    Code = "UNKNOWN_ATTRIBUTE"
	CodeAttributeOutOfRange Code = "ATTRIBUTE_OUT_OF_RANGE"
	CodeXPOutOfRange        Code = "XP_OUT_OF_RANGE"
	CodeXPMismatch          Code = "XP_MISMATCH"
	CodeInvalidRulesSpec    Code = "INVALID_RULES_SPEC"

	// Character payloads
	CodeCharacterInvalidPayload Code = "CHARACTER_INVALID_PAYLOAD"
	CodeCharacterIDRequired     Code = "CHARACTER_ID_REQUIRED"
	CodeCharacterNotOwned       Code = "CHARACTER_NOT_OWNED"

	// Caller identity
	CodeUserIDRequired Code = "USER_ID_REQUIRED"

	// Storage
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeUnknownAttribute,
		CodeAttributeOutOfRange,
		CodeXPOutOfRange,
		CodeCharacterInvalidPayload,
		CodeCharacterIDRequired:
		return codes.InvalidArgument
	// The client computed against a different curve and must re-sync rules
	// before retrying.
	case CodeXPMismatch:
		return codes.FailedPrecondition
	case CodeCharacterNotOwned:
		return codes.PermissionDenied
	case CodeUserIDRequired:
		return codes.Unauthenticated
	case CodeNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}
