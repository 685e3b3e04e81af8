package progression

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	"github.com/louisbranch/d100/internal/services/progression/domain/character"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// CharacterPayload is the editable part of a character sent by clients.
type CharacterPayload struct {
	ID         string              `json:"id,omitempty"`
	Biography  character.Biography `json:"biography"`
	Attributes map[string]int      `json:"attributes"`
	TotalXP    int                 `json:"totalXP"`
	UsedXP     *int                `json:"usedXP,omitempty"`
}

// CharacterView is a character as returned to clients.
type CharacterView struct {
	ID           string              `json:"id"`
	OwnerUserID  string              `json:"ownerUserId"`
	DisplayName  string              `json:"displayName"`
	Biography    character.Biography `json:"biography"`
	Attributes   map[string]int      `json:"attributes"`
	TotalXP      int                 `json:"totalXP"`
	UsedXP       int                 `json:"usedXP"`
	RemainingXP  int                 `json:"remainingXP"`
	Level        int                 `json:"level"`
	HP           int                 `json:"hp"`
	MP           int                 `json:"mp"`
	Build        int                 `json:"build"`
	DamageBonus  string              `json:"damageBonus"`
	Move         int                 `json:"move"`
	RulesVersion string              `json:"rulesVersion"`
	CreatedAt    string              `json:"createdAt"`
	UpdatedAt    string              `json:"updatedAt"`
}

// QuoteRequest asks for the cost of raising one attribute.
type QuoteRequest struct {
	Key  string `json:"key"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// QuoteResponse is the priced increase.
type QuoteResponse struct {
	Key  string `json:"key"`
	From int    `json:"from"`
	To   int    `json:"to"`
	Cost int    `json:"cost"`
}

// ListRequest pages through the caller's characters.
type ListRequest struct {
	PageSize  int32  `json:"pageSize"`
	PageToken string `json:"pageToken"`
}

// ListResponse is one page of characters.
type ListResponse struct {
	Characters    []CharacterView `json:"characters"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

// DecodeStruct decodes a Struct into out through its JSON form. Numbers must
// be integral when out expects integers.
func DecodeStruct(in *structpb.Struct, out any) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return fmt.Errorf("encode struct: %w", err)
	}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}

// EncodeStruct converts any JSON-encodable value into a Struct.
func EncodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decode struct: %w", err)
	}
	return out, nil
}

// Record converts the payload into a character record. Unknown attribute
// names fail with *attribute.UnknownAttributeError.
func (p CharacterPayload) Record() (character.Record, error) {
	values, err := attribute.FromMap(p.Attributes)
	if err != nil {
		return character.Record{}, err
	}
	return character.Record{
		ID:             p.ID,
		Biography:      p.Biography,
		Attributes:     values,
		TotalXP:        p.TotalXP,
		DeclaredUsedXP: p.UsedXP,
	}, nil
}

// NewCharacterView renders rec for clients.
func NewCharacterView(rec character.Record) CharacterView {
	return CharacterView{
		ID:           rec.ID,
		OwnerUserID:  rec.OwnerUserID,
		DisplayName:  rec.DisplayName(),
		Biography:    rec.Biography,
		Attributes:   rec.Attributes.Map(),
		TotalXP:      rec.TotalXP,
		UsedXP:       rec.UsedXP,
		RemainingXP:  rec.RemainingXP,
		Level:        rec.Level,
		HP:           rec.HP,
		MP:           rec.MP,
		Build:        rec.Build,
		DamageBonus:  rec.DamageBonus,
		Move:         rec.Move,
		RulesVersion: rec.RulesVersion,
		CreatedAt:    formatTime(rec.CreatedAt),
		UpdatedAt:    formatTime(rec.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
