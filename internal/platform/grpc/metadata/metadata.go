// Package metadata defines the request headers d100 services read from gRPC
// metadata and the interceptors that guarantee their presence.
package metadata

import (
	"context"
	"strings"

	"github.com/louisbranch/d100/internal/platform/id"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// RequestIDHeader correlates logs across service calls.
	RequestIDHeader = "x-d100-request-id"
	// UserIDHeader carries the authenticated caller, set by the trusted gateway.
	UserIDHeader = "x-d100-user-id"
	// LocaleHeader selects the language of user-facing error messages.
	LocaleHeader = "x-d100-locale"
)

type contextKey string

const requestIDContextKey contextKey = "d100-request-id"

// RequestIDFromContext returns the request ID stored by the interceptor.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey).(string)
	return value
}

// WithRequestID stores the request ID in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// UserIDFromContext returns the caller user ID from incoming metadata.
func UserIDFromContext(ctx context.Context) string {
	return incomingValue(ctx, UserIDHeader)
}

// LocaleFromContext returns the requested locale from incoming metadata.
func LocaleFromContext(ctx context.Context) string {
	return incomingValue(ctx, LocaleHeader)
}

// WithUserID appends the user-id header to outgoing metadata.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, UserIDHeader, userID)
}

// IsPrintableASCII reports whether a string contains only printable ASCII.
func IsPrintableASCII(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}

// FirstMetadataValue returns the first printable, trimmed value for key.
func FirstMetadataValue(md metadata.MD, key string) string {
	for mdKey, values := range md {
		if !strings.EqualFold(mdKey, key) {
			continue
		}
		for _, value := range values {
			if IsPrintableASCII(value) {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

// UnaryServerInterceptor ensures every unary call carries a request ID and
// echoes it in the response headers.
func UnaryServerInterceptor(idGenerator func() (string, error)) grpc.UnaryServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := incomingValue(ctx, RequestIDHeader)
		if requestID == "" {
			generated, err := idGenerator()
			if err != nil {
				return nil, status.Errorf(codes.Internal, "ensure request metadata: %v", err)
			}
			requestID = generated
		}
		ctx = WithRequestID(ctx, requestID)
		if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID)); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(ctx, req)
	}
}

func incomingValue(ctx context.Context, header string) string {
	if ctx == nil {
		return ""
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	return FirstMetadataValue(md, header)
}
