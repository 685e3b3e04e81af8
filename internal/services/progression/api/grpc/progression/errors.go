package progression

import (
	"context"
	"errors"
	"strconv"

	apperrors "github.com/louisbranch/d100/internal/platform/errors"
	grpcmeta "github.com/louisbranch/d100/internal/platform/grpc/metadata"
	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	"github.com/louisbranch/d100/internal/services/progression/domain/engine"
	"github.com/louisbranch/d100/internal/services/progression/domain/rules"
	"github.com/louisbranch/d100/internal/services/progression/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps domain failures onto gRPC statuses with localized details.
// Anything unrecognized becomes Internal prefixed with op.
func toStatus(ctx context.Context, op string, err error) error {
	locale := grpcmeta.LocaleFromContext(ctx)

	var unknown *attribute.UnknownAttributeError
	var outOfRange *attribute.OutOfRangeError
	var mismatch *engine.XPMismatchError
	var invalid *rules.InvalidRulesSpecError
	var domainErr *apperrors.Error
	switch {
	case errors.As(err, &unknown):
		return apperrors.WithMetadata(apperrors.CodeUnknownAttribute, err.Error(), map[string]string{
			"name": unknown.Name,
		}).ToGRPCStatus(locale)
	case errors.As(err, &outOfRange):
		return apperrors.WithMetadata(apperrors.CodeAttributeOutOfRange, err.Error(), map[string]string{
			"name":  outOfRange.Name,
			"value": strconv.Itoa(outOfRange.Value),
			"min":   strconv.Itoa(attribute.MinValue),
			"max":   strconv.Itoa(attribute.MaxValue),
		}).ToGRPCStatus(locale)
	case errors.Is(err, engine.ErrXPOverflow):
		return apperrors.New(apperrors.CodeXPOutOfRange, err.Error()).ToGRPCStatus(locale)
	case errors.As(err, &mismatch):
		return apperrors.WithMetadata(apperrors.CodeXPMismatch, err.Error(), mismatchMetadata(mismatch)).
			ToGRPCStatus(locale)
	case errors.As(err, &invalid):
		return apperrors.WithMetadata(apperrors.CodeInvalidRulesSpec, err.Error(), map[string]string{
			"reason": invalid.Reason,
		}).ToGRPCStatus(locale)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.New(apperrors.CodeNotFound, "character not found").ToGRPCStatus(locale)
	case errors.Is(err, storage.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "character already exists")
	case errors.As(err, &domainErr):
		return domainErr.ToGRPCStatus(locale)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, op+": "+err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, op+": "+err.Error())
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}

// mismatchMetadata carries both totals plus one "cost:<name>" entry per
// attribute the server prices above zero.
func mismatchMetadata(mismatch *engine.XPMismatchError) map[string]string {
	md := map[string]string{
		"expected": strconv.Itoa(mismatch.Expected),
		"actual":   strconv.Itoa(mismatch.Actual),
	}
	for k, cost := range mismatch.Breakdown {
		if cost > 0 {
			md[costMetadataPrefix+k.String()] = strconv.Itoa(cost)
		}
	}
	return md
}

const costMetadataPrefix = "cost:"

func invalidPayload(ctx context.Context, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeCharacterInvalidPayload, "invalid character payload: "+reason, map[string]string{
		"reason": reason,
	}).ToGRPCStatus(grpcmeta.LocaleFromContext(ctx))
}
