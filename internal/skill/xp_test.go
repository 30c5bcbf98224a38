package skill

import "testing"

func TestXPForLevel_KnownValues(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{2, 83},
		{10, 1154},
	}
	for _, tt := range tests {
		if got := XPForLevel(tt.level); got != tt.want {
			t.Fatalf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestXPForLevel_StrictlyIncreasing(t *testing.T) {
	prev := XPForLevel(1)
	for level := 2; level <= LevelCap; level++ {
		cur := XPForLevel(level)
		if cur <= prev {
			t.Fatalf("XPForLevel(%d) = %d, not greater than XPForLevel(%d) = %d",
				level, cur, level-1, prev)
		}
		prev = cur
	}
}

func TestAddXP_SingleLevelUp(t *testing.T) {
	s := Skill{Name: "Mining", Level: 1, XP: 0, Category: CategoryGathering}

	s, gain := AddXP(s, XPForLevel(2))

	if s.Level != 2 {
		t.Fatalf("level = %d, want 2", s.Level)
	}
	if len(gain.LevelUps) != 1 {
		t.Fatalf("level ups = %d, want 1", len(gain.LevelUps))
	}
	up := gain.LevelUps[0]
	if up.NewLevel != 2 || up.Skill != "Mining" || up.Tier != "bronze" || up.Bonus != 0 {
		t.Fatalf("unexpected level up: %+v", up)
	}
	if gain.NewLevel != 2 || gain.NewXP != XPForLevel(2) {
		t.Fatalf("unexpected gain: %+v", gain)
	}
}

func TestAddXP_MultipleLevelUps(t *testing.T) {
	s := Skill{Name: "Fishing", Level: 1, XP: 0, Category: CategoryGathering}

	s, gain := AddXP(s, XPForLevel(5))

	if s.Level != 5 {
		t.Fatalf("level = %d, want 5", s.Level)
	}
	if len(gain.LevelUps) != 4 {
		t.Fatalf("level ups = %d, want 4", len(gain.LevelUps))
	}
	for i, up := range gain.LevelUps {
		if up.NewLevel != i+2 {
			t.Fatalf("level up %d has NewLevel %d, want %d", i, up.NewLevel, i+2)
		}
	}
}

func TestAddXP_CapsAtMaxLevel(t *testing.T) {
	s := Skill{Name: "Agility", Level: 119, XP: XPForLevel(119), Category: CategorySupport}

	s, _ = AddXP(s, 1<<40)

	if s.Level != LevelCap {
		t.Fatalf("level = %d, want %d", s.Level, LevelCap)
	}
	// A further gain must terminate without moving the level.
	s, gain := AddXP(s, 1<<40)
	if s.Level != LevelCap || len(gain.LevelUps) != 0 {
		t.Fatalf("level = %d with %d level ups, want %d and none", s.Level, len(gain.LevelUps), LevelCap)
	}
}

func TestAddXP_NegativeAmountIgnored(t *testing.T) {
	s := Skill{Name: "Cooking", Level: 3, XP: XPForLevel(3), Category: CategoryArtisan}

	got, gain := AddXP(s, -500)

	if got.XP != s.XP || got.Level != s.Level {
		t.Fatalf("skill changed on negative amount: %+v", got)
	}
	if len(gain.LevelUps) != 0 {
		t.Fatalf("unexpected level ups: %+v", gain.LevelUps)
	}
}

func TestAddXP_ZeroAmountNoop(t *testing.T) {
	s := Skill{Name: "Cooking", Level: 1, XP: 10, Category: CategoryArtisan}
	got, gain := AddXP(s, 0)
	if got.XP != 10 || got.Level != 1 || len(gain.LevelUps) != 0 {
		t.Fatalf("unexpected result: %+v %+v", got, gain)
	}
}

func TestXPInvariantAfterAddXP(t *testing.T) {
	// After the level-up loop, xp must sit within the current level band.
	s := Skill{Name: "Smithing", Level: 1, XP: 0, Category: CategoryArtisan}
	for _, amount := range []int{1, 82, 83, 5000, 123456} {
		var gain Gain
		s, gain = AddXP(s, amount)
		if s.XP < XPForLevel(s.Level) {
			t.Fatalf("xp %d below requirement for level %d", s.XP, s.Level)
		}
		if s.Level < LevelCap && s.XP >= XPForLevel(s.Level+1) {
			t.Fatalf("xp %d already covers level %d but level is %d", s.XP, s.Level+1, s.Level)
		}
		if gain.NewLevel != s.Level || gain.NewXP != s.XP {
			t.Fatalf("gain out of sync: %+v vs %+v", gain, s)
		}
	}
}

func TestProgressToNext(t *testing.T) {
	s := Skill{Name: "Mining", Level: 1, XP: 0}
	if got := s.ProgressToNext(); got != 0 {
		t.Fatalf("progress at 0 xp = %f, want 0", got)
	}

	s.XP = XPForLevel(2) / 2
	progress := s.ProgressToNext()
	if progress <= 0 || progress >= 1 {
		t.Fatalf("mid-level progress = %f, want in (0, 1)", progress)
	}

	capped := Skill{Name: "Mining", Level: LevelCap, XP: XPForLevel(LevelCap)}
	if got := capped.ProgressToNext(); got != 1 {
		t.Fatalf("progress at cap = %f, want 1", got)
	}
}

func TestXPToNext(t *testing.T) {
	s := Skill{Name: "Mining", Level: 1, XP: 0}
	if got := s.XPToNext(); got != XPForLevel(2) {
		t.Fatalf("xp to next = %d, want %d", got, XPForLevel(2))
	}
	capped := Skill{Name: "Mining", Level: LevelCap, XP: XPForLevel(LevelCap)}
	if got := capped.XPToNext(); got != 0 {
		t.Fatalf("xp to next at cap = %d, want 0", got)
	}
}
