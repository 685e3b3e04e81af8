// Package attribute enumerates the characteristics and skills of a character
// sheet and provides a fixed-size value array indexed by them.
package attribute

import (
	"fmt"
	"strings"
)

// Key identifies one characteristic or skill. The zero value is APP.
type Key int

// Characteristics.
const (
	APP Key = iota
	BONUS
	BRV
	STA
	AGI
	EDU
	INT
	LUCK
	SENSE
	WILL
	STATUS
	SAN
	SIZ
	STR
	ARMOR
	RES
)

// Skills.
const (
	Accounting Key = iota + RES + 1
	Anthropology
	Appraise
	Archeology
	ArtCraft
	ArtCraft2
	Charm
	Climb
	CreditRating
	CthulhuMythos
	Disguise
	Dodge
	DriveAuto
	ElectricalRepair
	FastTalk
	FightingBrawl
	FightingOther
	FirearmsHandgun
	FirearmsOther
	FirearmsRifleShotgun
	FirstAid
	History
	Intimidate
	Jump
	LanguageOther1
	LanguageOther2
	LanguageOther3
	LanguageOwn
	Law
	LibraryUse
	Listen
	Locksmith
	MechanicalRepair
	Medicine
	NaturalWorld
	Navigate
	Occult
	Persuade
	Pilot
	Psychoanalysis
	Psychology
	Ride
	Science
	ScienceOther
	ScienceOther2
	SleightOfHand
	Spot
	Stealth
	Survival
	Swim
	Throw
	Track
	Other1
	Other2
	Other3

	// Count is the number of keys.
	Count int = iota + int(RES) + 1
)

var names = [Count]string{
	APP:                  "APP",
	BONUS:                "BONUS",
	BRV:                  "BRV",
	STA:                  "STA",
	AGI:                  "AGI",
	EDU:                  "EDU",
	INT:                  "INT",
	LUCK:                 "LUCK",
	SENSE:                "SENSE",
	WILL:                 "WILL",
	STATUS:               "STATUS",
	SAN:                  "SAN",
	SIZ:                  "SIZ",
	STR:                  "STR",
	ARMOR:                "ARMOR",
	RES:                  "RES",
	Accounting:           "Accounting",
	Anthropology:         "Anthropology",
	Appraise:             "Appraise",
	Archeology:           "Archeology",
	ArtCraft:             "Art Craft",
	ArtCraft2:            "Art Craft 2",
	Charm:                "Charm",
	Climb:                "Climb",
	CreditRating:         "Credit Rating",
	CthulhuMythos:        "Cthulhu Mythos",
	Disguise:             "Disguise",
	Dodge:                "Dodge",
	DriveAuto:            "Drive Auto",
	ElectricalRepair:     "Electrical Repair",
	FastTalk:             "Fast Talk",
	FightingBrawl:        "Fighting Brawl",
	FightingOther:        "Fighting Other",
	FirearmsHandgun:      "Firearms Handgun",
	FirearmsOther:        "Firearms Other",
	FirearmsRifleShotgun: "Firearms Rifle Shotgun",
	FirstAid:             "First Aid",
	History:              "History",
	Intimidate:           "Intimidate",
	Jump:                 "Jump",
	LanguageOther1:       "Language Other 1",
	LanguageOther2:       "Language Other 2",
	LanguageOther3:       "Language Other 3",
	LanguageOwn:          "Language Own",
	Law:                  "Law",
	LibraryUse:           "Library Use",
	Listen:               "Listen",
	Locksmith:            "Locksmith",
	MechanicalRepair:     "Mechanical Repair",
	Medicine:             "Medicine",
	NaturalWorld:         "Natural World",
	Navigate:             "Navigate",
	Occult:               "Occult",
	Persuade:             "Persuade",
	Pilot:                "Pilot",
	Psychoanalysis:       "Psychoanalysis",
	Psychology:           "Psychology",
	Ride:                 "Ride",
	Science:              "Science",
	ScienceOther:         "Science Other",
	ScienceOther2:        "Science Other 2",
	SleightOfHand:        "Sleight Of Hand",
	Spot:                 "SPOT",
	Stealth:              "Stealth",
	Survival:             "Survival",
	Swim:                 "Swim",
	Throw:                "Throw",
	Track:                "Track",
	Other1:               "Other1",
	Other2:               "Other2",
	Other3:               "Other3",
}

var byName = func() map[string]Key {
	m := make(map[string]Key, Count)
	for k, name := range names {
		m[name] = Key(k)
	}
	return m
}()

// String returns the wire name of the key.
func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return names[k]
}

// Valid reports whether k is one of the enumerated keys.
func (k Key) Valid() bool {
	return k >= 0 && int(k) < Count
}

// All returns every key in declaration order.
func All() []Key {
	keys := make([]Key, Count)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// Parse resolves a wire name. Surrounding whitespace is ignored; case is not.
func Parse(name string) (Key, error) {
	if k, ok := byName[strings.TrimSpace(name)]; ok {
		return k, nil
	}
	return 0, &UnknownAttributeError{Name: name}
}

// UnknownAttributeError reports a name outside the attribute enumeration, or a
// key with no entry in a rules table.
type UnknownAttributeError struct {
	Name string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q", e.Name)
}
