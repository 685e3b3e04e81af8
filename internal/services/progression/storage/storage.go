// Package storage defines persistence contracts for character records.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/d100/internal/services/progression/domain/character"
)

var (
	// ErrNotFound indicates a requested character record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a character ID is already taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// CharacterPage stores one page of character records.
type CharacterPage struct {
	Characters    []character.Record
	NextPageToken string
}

// CharacterStore persists character records. Updates are last write wins.
type CharacterStore interface {
	CreateCharacter(ctx context.Context, rec character.Record) error
	GetCharacter(ctx context.Context, id string) (character.Record, error)
	UpdateCharacter(ctx context.Context, rec character.Record) error
	DeleteCharacter(ctx context.Context, id string) error
	ListCharacters(ctx context.Context, ownerUserID string, pageSize int, pageToken string) (CharacterPage, error)
}
