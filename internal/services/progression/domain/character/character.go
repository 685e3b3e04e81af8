// Package character defines the persisted character sheet and the rules for
// merging an incoming edit onto a stored sheet.
package character

import (
	"strings"
	"time"

	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
)

// Biography is the free-text part of a character sheet.
type Biography struct {
	Avatar                        string `json:"avatar"`
	Player                        string `json:"player"`
	Name                          string `json:"name"`
	BirthPlace                    string `json:"birthPlace"`
	Pronoun                       string `json:"pronoun"`
	Occupation                    string `json:"occupation"`
	Residence                     string `json:"residence"`
	Age                           int    `json:"age"`
	BagSurface                    string `json:"bagSurface"`
	BagMiddle                     string `json:"bagMiddle"`
	BagDeep                       string `json:"bagDeep"`
	SignificantPeople             string `json:"significantPeople"`
	InjuriesScarsPhobiesManias    string `json:"injuriesScarsPhobiesManias"`
	TreasuredPossessions          string `json:"treasuredPossesions"`
	ArcaneTomesSpellsArtifacts    string `json:"arcaneTomesSpellsArtifacts"`
	MeaningfulLocations           string `json:"meaningfulLocations"`
	EncountersWithStrangeEntities string `json:"encountersWithStrangeEntities"`
}

// Record is one character sheet. Identity and ownership are set once at
// creation; the XP totals and derived stats are owned by the engine.
type Record struct {
	ID          string
	OwnerUserID string

	Biography  Biography
	Attributes attribute.Values
	TotalXP    int

	// DeclaredUsedXP is the caller's own used XP computation. It is checked
	// on update and never persisted.
	DeclaredUsedXP *int

	UsedXP       int
	RemainingXP  int
	Level        int
	HP           int
	MP           int
	Build        int
	DamageBonus  string
	Move         int
	RulesVersion string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the character name, falling back to the ID.
func (r Record) DisplayName() string {
	if name := strings.TrimSpace(r.Biography.Name); name != "" {
		return name
	}
	return r.ID
}

// MergeForUpdate returns existing with the editable fields of incoming
// applied. Copied: Biography, Attributes, TotalXP, DeclaredUsedXP.
// Kept from existing: ID, OwnerUserID, CreatedAt, UpdatedAt and every
// engine-owned field, which the caller recomputes after merging.
func MergeForUpdate(existing, incoming Record) Record {
	merged := existing
	merged.Biography = incoming.Biography
	merged.Attributes = incoming.Attributes
	merged.TotalXP = incoming.TotalXP
	merged.DeclaredUsedXP = incoming.DeclaredUsedXP
	return merged
}
