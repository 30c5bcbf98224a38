package skill

import "testing"

func TestTierFor(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "bronze"},
		{14, "bronze"},
		{15, "iron"},
		{29, "iron"},
		{30, "steel"},
		{49, "steel"},
		{50, "mithril"},
		{69, "mithril"},
		{70, "adamant"},
		{89, "adamant"},
		{90, "dragon"},
		{120, "dragon"},
	}
	for _, tt := range tests {
		if got := TierFor(tt.level); got != tt.want {
			t.Fatalf("TierFor(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestTierCatalog(t *testing.T) {
	want := []Tier{
		{Name: "bronze", LevelRequired: 1, Multiplier: 1.0},
		{Name: "iron", LevelRequired: 15, Multiplier: 1.2},
		{Name: "steel", LevelRequired: 30, Multiplier: 1.4},
		{Name: "mithril", LevelRequired: 50, Multiplier: 1.6},
		{Name: "adamant", LevelRequired: 70, Multiplier: 1.8},
		{Name: "rune", LevelRequired: 90, Multiplier: 2.0},
		{Name: "dragon", LevelRequired: 99, Multiplier: 2.5},
	}
	if len(Tiers) != len(want) {
		t.Fatalf("catalog has %d tiers, want %d", len(Tiers), len(want))
	}
	for i, tier := range want {
		if Tiers[i] != tier {
			t.Fatalf("Tiers[%d] = %+v, want %+v", i, Tiers[i], tier)
		}
	}
	// The catalog's rune row does not change the reported bracket.
	if got := TierFor(95); got != "dragon" {
		t.Fatalf("TierFor(95) = %q, want %q", got, "dragon")
	}
}

func TestBonus(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{9, 0},
		{10, 1},
		{55, 5},
		{120, 12},
	}
	for _, tt := range tests {
		s := Skill{Level: tt.level}
		if got := s.Bonus(); got != tt.want {
			t.Fatalf("Bonus at level %d = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestNewDefaultSet(t *testing.T) {
	skills := NewDefaultSet()

	if len(skills) != len(DefaultSkills) {
		t.Fatalf("skill count = %d, want %d", len(skills), len(DefaultSkills))
	}
	hp, ok := skills["Hitpoints"]
	if !ok {
		t.Fatal("expected Hitpoints skill")
	}
	if hp.Level != 10 {
		t.Fatalf("Hitpoints level = %d, want 10", hp.Level)
	}
	if hp.XP != XPForLevel(10) {
		t.Fatalf("Hitpoints xp = %d, want %d", hp.XP, XPForLevel(10))
	}
	mining := skills["Mining"]
	if mining.Level != 1 || mining.XP != 0 {
		t.Fatalf("Mining start = %+v, want level 1 xp 0", mining)
	}
}

func TestCanAccess(t *testing.T) {
	s := Skill{Level: 50}
	if !s.CanAccess(50) {
		t.Fatal("expected access at exact level")
	}
	if s.CanAccess(51) {
		t.Fatal("expected no access above level")
	}
}

func TestCombatLevel_FreshCharacter(t *testing.T) {
	// A default skill set yields the classic starting combat level of 3.
	if got := CombatLevel(NewDefaultSet()); got != 3 {
		t.Fatalf("fresh combat level = %d, want 3", got)
	}
	// Missing skills default the same way as a fresh set.
	if got := CombatLevel(nil); got != 3 {
		t.Fatalf("combat level with no skills = %d, want 3", got)
	}
}

func TestCombatLevel_MeleeFocused(t *testing.T) {
	skills := map[string]Skill{
		"Attack":    {Name: "Attack", Level: 60},
		"Strength":  {Name: "Strength", Level: 60},
		"Defence":   {Name: "Defence", Level: 40},
		"Hitpoints": {Name: "Hitpoints", Level: 50},
		"Prayer":    {Name: "Prayer", Level: 20},
	}
	// base = 0.25*(40+50+10) = 25; melee = 0.325*120 = 39
	if got := CombatLevel(skills); got != 64 {
		t.Fatalf("combat level = %d, want 64", got)
	}
}

func TestCombatLevel_RangedBeatsWeakMelee(t *testing.T) {
	skills := map[string]Skill{
		"Ranged":    {Name: "Ranged", Level: 80},
		"Hitpoints": {Name: "Hitpoints", Level: 60},
		"Defence":   {Name: "Defence", Level: 40},
	}
	// base = 0.25*(40+60+0) = 25; ranged = 0.325*(40+80) = 39; melee = 0.65
	if got := CombatLevel(skills); got != 64 {
		t.Fatalf("combat level = %d, want 64", got)
	}
}

func TestTotalLevel(t *testing.T) {
	skills := map[string]Skill{
		"Attack": {Level: 10},
		"Mining": {Level: 25},
	}
	if got := TotalLevel(skills); got != 35 {
		t.Fatalf("total level = %d, want 35", got)
	}
}
