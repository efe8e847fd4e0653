package gamification

// LevelThreshold maps a level to the minimum XP required to hold it.
type LevelThreshold struct {
	Level int
	MinXP int
}

// LevelTable is an ordered list of thresholds with strictly increasing
// MinXP, starting at level 1 / 0 XP. The level for a given XP total is
// the highest level whose threshold is covered.
type LevelTable []LevelThreshold

func DefaultLevelTable() LevelTable {
	return LevelTable{
		{Level: 1, MinXP: 0},
		{Level: 2, MinXP: 500},
		{Level: 3, MinXP: 1200},
		{Level: 4, MinXP: 2500},
		{Level: 5, MinXP: 4500},
		{Level: 6, MinXP: 7000},
		{Level: 7, MinXP: 10000},
		{Level: 8, MinXP: 14000},
		{Level: 9, MinXP: 19000},
		{Level: 10, MinXP: 25000},
	}
}

func (t LevelTable) LevelFor(xp int) int {
	level := 1
	for _, threshold := range t {
		if xp >= threshold.MinXP {
			level = threshold.Level
		}
	}
	return level
}
