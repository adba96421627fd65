package game

import "gorm.io/gorm"

// Flavor is a duel category (a flavor role on the server) with its combat
// stats. Key is the canonical slug of Name and is what members reference.
type Flavor struct {
	gorm.Model
	Key     string `json:"key" gorm:"uniqueIndex;size:64"`
	Name    string `json:"name" gorm:"size:64"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
}

// TableName keeps the name the bot has always used for these rows.
func (Flavor) TableName() string { return "flavor_roles" }

// Stats converts the row into the snapshot used by a match.
func (f Flavor) Stats() CombatStats {
	return CombatStats{Category: f.Name, Attack: f.Attack, Defense: f.Defense}
}

// MemberFlavor assigns a player to exactly one flavor category.
type MemberFlavor struct {
	gorm.Model
	PlayerID  string `json:"player_id" gorm:"uniqueIndex;size:64"`
	FlavorKey string `json:"flavor_key" gorm:"index;size:64"`
}

func (MemberFlavor) TableName() string { return "member_flavors" }
