// Package progression exposes the progression engine and character storage
// over gRPC.
package progression

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/louisbranch/d100/internal/platform/errors"
	grpcmeta "github.com/louisbranch/d100/internal/platform/grpc/metadata"
	"github.com/louisbranch/d100/internal/platform/grpc/pagination"
	"github.com/louisbranch/d100/internal/platform/id"
	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	"github.com/louisbranch/d100/internal/services/progression/domain/character"
	"github.com/louisbranch/d100/internal/services/progression/domain/engine"
	"github.com/louisbranch/d100/internal/services/progression/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	defaultListCharactersPageSize = 20
	maxListCharactersPageSize     = 100
)

// Service implements ProgressionServiceServer.
type Service struct {
	engine      *engine.Engine
	store       storage.CharacterStore
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService creates a progression service. store may be nil when only the
// rules methods are served.
func NewService(eng *engine.Engine, store storage.CharacterStore) *Service {
	return &Service{
		engine:      eng,
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

var _ ProgressionServiceServer = (*Service)(nil)

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Service) requireStore() error {
	if s == nil || s.store == nil {
		return status.Error(codes.Internal, "character store is not configured")
	}
	if s.engine == nil {
		return status.Error(codes.Internal, "progression engine is not configured")
	}
	return nil
}

func callerID(ctx context.Context) (string, error) {
	userID := grpcmeta.UserIDFromContext(ctx)
	if userID == "" {
		return "", apperrors.New(apperrors.CodeUserIDRequired, "user id is required").
			ToGRPCStatus(grpcmeta.LocaleFromContext(ctx))
	}
	return userID, nil
}

func notOwned(ctx context.Context, rec character.Record) error {
	return apperrors.WithMetadata(apperrors.CodeCharacterNotOwned, "character is owned by another user", map[string]string{
		"character_id": rec.ID,
	}).ToGRPCStatus(grpcmeta.LocaleFromContext(ctx))
}

// GetRules returns the active rules in the public JSON contract.
func (s *Service) GetRules(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s == nil || s.engine == nil {
		return nil, status.Error(codes.Internal, "progression engine is not configured")
	}
	out, err := EncodeStruct(s.engine.Rules().Get())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get rules: %v", err)
	}
	return out, nil
}

// QuoteCost prices raising one attribute from one value to another.
func (s *Service) QuoteCost(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "quote cost request is required")
	}
	if s == nil || s.engine == nil {
		return nil, status.Error(codes.Internal, "progression engine is not configured")
	}
	var req QuoteRequest
	if err := DecodeStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "quote cost: %v", err)
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		return nil, status.Error(codes.InvalidArgument, "attribute key is required")
	}
	for _, v := range []int{req.From, req.To} {
		if !attribute.InRange(v) {
			return nil, toStatus(ctx, "quote cost", &attribute.OutOfRangeError{Name: req.Key, Value: v})
		}
	}
	cost, err := s.engine.Quote(req.Key, req.From, req.To)
	if err != nil {
		return nil, toStatus(ctx, "quote cost", err)
	}
	out, err := EncodeStruct(QuoteResponse{Key: req.Key, From: req.From, To: req.To, Cost: cost})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "quote cost: %v", err)
	}
	return out, nil
}

// CreateCharacter prices a new character and stores it for the caller. The
// server's XP total is authoritative on create.
func (s *Service) CreateCharacter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "create character request is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := decodeCharacter(ctx, in)
	if err != nil {
		return nil, err
	}
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		rec.ID, err = s.idGenerator()
		if err != nil {
			return nil, status.Errorf(codes.Internal, "generate character id: %v", err)
		}
	}
	rec.OwnerUserID = userID
	if err := s.engine.Refresh(&rec, engine.ModeCreate); err != nil {
		return nil, toStatus(ctx, "create character", err)
	}
	now := s.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.DeclaredUsedXP = nil

	if err := s.store.CreateCharacter(ctx, rec); err != nil {
		return nil, toStatus(ctx, "create character", err)
	}
	return characterStruct(rec)
}

// UpdateCharacter merges the editable fields onto the stored character and
// reprices it. A declared used XP that disagrees with the rules is rejected.
func (s *Service) UpdateCharacter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "update character request is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	incoming, err := decodeCharacter(ctx, in)
	if err != nil {
		return nil, err
	}
	characterID := strings.TrimSpace(incoming.ID)
	if characterID == "" {
		return nil, apperrors.New(apperrors.CodeCharacterIDRequired, "character id is required").
			ToGRPCStatus(grpcmeta.LocaleFromContext(ctx))
	}

	existing, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, toStatus(ctx, "update character", err)
	}
	if existing.OwnerUserID != userID {
		return nil, notOwned(ctx, existing)
	}

	merged := character.MergeForUpdate(existing, incoming)
	if err := s.engine.Refresh(&merged, engine.ModeUpdate); err != nil {
		return nil, toStatus(ctx, "update character", err)
	}
	merged.UpdatedAt = s.now()
	merged.DeclaredUsedXP = nil

	if err := s.store.UpdateCharacter(ctx, merged); err != nil {
		return nil, toStatus(ctx, "update character", err)
	}
	return characterStruct(merged)
}

// GetCharacter returns one character by ID.
func (s *Service) GetCharacter(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get character request is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	characterID := strings.TrimSpace(in.GetValue())
	if characterID == "" {
		return nil, apperrors.New(apperrors.CodeCharacterIDRequired, "character id is required").
			ToGRPCStatus(grpcmeta.LocaleFromContext(ctx))
	}
	rec, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, toStatus(ctx, "get character", err)
	}
	return characterStruct(rec)
}

// DeleteCharacter removes one of the caller's characters.
func (s *Service) DeleteCharacter(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "delete character request is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	characterID := strings.TrimSpace(in.GetValue())
	if characterID == "" {
		return nil, apperrors.New(apperrors.CodeCharacterIDRequired, "character id is required").
			ToGRPCStatus(grpcmeta.LocaleFromContext(ctx))
	}
	existing, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, toStatus(ctx, "delete character", err)
	}
	if existing.OwnerUserID != userID {
		return nil, notOwned(ctx, existing)
	}
	if err := s.store.DeleteCharacter(ctx, characterID); err != nil {
		return nil, toStatus(ctx, "delete character", err)
	}
	return &emptypb.Empty{}, nil
}

// ListCharacters returns a page of the caller's characters.
func (s *Service) ListCharacters(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "list characters request is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var req ListRequest
	if err := DecodeStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "list characters: %v", err)
	}
	cursor, err := pagination.DecodeToken(req.PageToken)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	pageSize := pagination.ClampPageSize(req.PageSize, pagination.PageSizeConfig{
		Default: defaultListCharactersPageSize,
		Max:     maxListCharactersPageSize,
	})
	page, err := s.store.ListCharacters(ctx, userID, pageSize, cursor)
	if err != nil {
		return nil, toStatus(ctx, "list characters", err)
	}

	resp := ListResponse{
		Characters:    make([]CharacterView, 0, len(page.Characters)),
		NextPageToken: pagination.EncodeToken(page.NextPageToken),
	}
	for _, rec := range page.Characters {
		resp.Characters = append(resp.Characters, NewCharacterView(rec))
	}
	out, err := EncodeStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list characters: %v", err)
	}
	return out, nil
}

func decodeCharacter(ctx context.Context, in *structpb.Struct) (character.Record, error) {
	var payload CharacterPayload
	if err := DecodeStruct(in, &payload); err != nil {
		return character.Record{}, invalidPayload(ctx, err.Error())
	}
	rec, err := payload.Record()
	if err != nil {
		return character.Record{}, toStatus(ctx, "decode character", err)
	}
	return rec, nil
}

func characterStruct(rec character.Record) (*structpb.Struct, error) {
	out, err := EncodeStruct(NewCharacterView(rec))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode character: %v", err)
	}
	return out, nil
}
