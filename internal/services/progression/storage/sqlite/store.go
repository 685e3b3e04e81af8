// Package sqlite provides a SQLite-backed character storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/d100/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	"github.com/louisbranch/d100/internal/services/progression/domain/character"
	"github.com/louisbranch/d100/internal/services/progression/storage"
	"github.com/louisbranch/d100/internal/services/progression/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const characterColumns = `id, owner_user_id, biography_json, attributes_json,
       total_xp, used_xp, remaining_xp, level,
       hp, mp, build, damage_bonus, move,
       rules_version, created_at, updated_at`

// Store persists character records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite character store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// CreateCharacter inserts one character record.
func (s *Store) CreateCharacter(ctx context.Context, rec character.Record) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	rec.ID = strings.TrimSpace(rec.ID)
	rec.OwnerUserID = strings.TrimSpace(rec.OwnerUserID)
	if rec.ID == "" {
		return fmt.Errorf("character id is required")
	}
	if rec.OwnerUserID == "" {
		return fmt.Errorf("owner user id is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	biography, attributes, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO characters (`+characterColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.OwnerUserID,
		biography,
		attributes,
		rec.TotalXP,
		rec.UsedXP,
		rec.RemainingXP,
		rec.Level,
		rec.HP,
		rec.MP,
		rec.Build,
		rec.DamageBonus,
		rec.Move,
		rec.RulesVersion,
		toMillis(rec.CreatedAt),
		toMillis(rec.UpdatedAt),
	)
	if err != nil {
		if isCharacterUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create character: %w", err)
	}
	return nil
}

// GetCharacter returns one character by ID.
func (s *Store) GetCharacter(ctx context.Context, id string) (character.Record, error) {
	if err := s.ready(ctx); err != nil {
		return character.Record{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return character.Record{}, fmt.Errorf("character id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	rec, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return character.Record{}, storage.ErrNotFound
		}
		return character.Record{}, fmt.Errorf("get character: %w", err)
	}
	return rec, nil
}

// UpdateCharacter replaces the editable and derived columns of an existing
// character. Identity, ownership and creation time are never rewritten.
func (s *Store) UpdateCharacter(ctx context.Context, rec character.Record) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return fmt.Errorf("character id is required")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	biography, attributes, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE characters
		    SET biography_json = ?, attributes_json = ?,
		        total_xp = ?, used_xp = ?, remaining_xp = ?, level = ?,
		        hp = ?, mp = ?, build = ?, damage_bonus = ?, move = ?,
		        rules_version = ?, updated_at = ?
		  WHERE id = ?`,
		biography,
		attributes,
		rec.TotalXP,
		rec.UsedXP,
		rec.RemainingXP,
		rec.Level,
		rec.HP,
		rec.MP,
		rec.Build,
		rec.DamageBonus,
		rec.Move,
		rec.RulesVersion,
		toMillis(rec.UpdatedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	return requireAffected(result, "update character")
}

// DeleteCharacter removes one character by ID.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("character id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	return requireAffected(result, "delete character")
}

// ListCharacters returns one page of an owner's characters ordered by ID.
// The page token is the last ID of the previous page.
func (s *Store) ListCharacters(ctx context.Context, ownerUserID string, pageSize int, pageToken string) (storage.CharacterPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CharacterPage{}, err
	}
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return storage.CharacterPage{}, fmt.Errorf("owner user id is required")
	}
	if pageSize <= 0 {
		return storage.CharacterPage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+characterColumns+`
		   FROM characters
		  WHERE owner_user_id = ? AND id > ?
		  ORDER BY id ASC
		  LIMIT ?`,
		ownerUserID,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	page := storage.CharacterPage{Characters: make([]character.Record, 0, pageSize)}
	for rows.Next() {
		rec, err := scanCharacter(rows)
		if err != nil {
			return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
		}
		page.Characters = append(page.Characters, rec)
	}
	if err := rows.Err(); err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}
	if len(page.Characters) > pageSize {
		page.NextPageToken = page.Characters[pageSize-1].ID
		page.Characters = page.Characters[:pageSize]
	}
	return page, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (character.Record, error) {
	var rec character.Record
	var biography, attributes string
	var createdAt, updatedAt int64
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerUserID,
		&biography,
		&attributes,
		&rec.TotalXP,
		&rec.UsedXP,
		&rec.RemainingXP,
		&rec.Level,
		&rec.HP,
		&rec.MP,
		&rec.Build,
		&rec.DamageBonus,
		&rec.Move,
		&rec.RulesVersion,
		&createdAt,
		&updatedAt,
	); err != nil {
		return character.Record{}, err
	}
	if err := json.Unmarshal([]byte(biography), &rec.Biography); err != nil {
		return character.Record{}, fmt.Errorf("decode biography: %w", err)
	}
	values, err := decodeAttributes(attributes)
	if err != nil {
		return character.Record{}, err
	}
	rec.Attributes = values
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

func encodeRecord(rec character.Record) (string, string, error) {
	biography, err := json.Marshal(rec.Biography)
	if err != nil {
		return "", "", fmt.Errorf("encode biography: %w", err)
	}
	attributes, err := json.Marshal(rec.Attributes)
	if err != nil {
		return "", "", fmt.Errorf("encode attributes: %w", err)
	}
	return string(biography), string(attributes), nil
}

// decodeAttributes tolerates names dropped from the enumeration so old rows
// stay readable.
func decodeAttributes(raw string) (attribute.Values, error) {
	var m map[string]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return attribute.Values{}, fmt.Errorf("decode attributes: %w", err)
	}
	var values attribute.Values
	for name, v := range m {
		k, err := attribute.Parse(name)
		if err != nil {
			continue
		}
		values.Set(k, v)
	}
	return values, nil
}

func requireAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isCharacterUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "characters.id")
}

var _ storage.CharacterStore = (*Store)(nil)
