package leveling

// Level thresholds: the minimum accumulated experience for each level.
// Levels past the table are the unbounded "Legend" tier.
var thresholds = []struct {
	level int
	xp    int
}{
	{1, 0},
	{2, 500},
	{3, 1000},
	{4, 2000},
	{5, 3500},
}

// sentinelNext stands in for the next threshold above the table so the
// progress bar renders as mostly-full instead of dividing by zero.
const sentinelNext = 10000

// LevelFor returns the highest level whose threshold is less than or
// equal to the given experience. Exact equality grants the level.
func LevelFor(experience int) int {
	if experience < 0 {
		experience = 0
	}
	level := 1
	for _, t := range thresholds {
		if experience >= t.xp {
			level = t.level
		}
	}
	return level
}

// ThresholdFor returns the minimum experience for the given level, or 0
// for levels at or below 1. Levels above the table share the top
// threshold.
func ThresholdFor(level int) int {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if level >= thresholds[i].level {
			return thresholds[i].xp
		}
	}
	return 0
}

// ProgressFraction returns how far experience has advanced from the
// given level's threshold toward the next, clamped to [0,1].
func ProgressFraction(experience, level int) float64 {
	if experience < 0 {
		experience = 0
	}
	base := ThresholdFor(level)
	next := sentinelNext
	for _, t := range thresholds {
		if t.level == level+1 {
			next = t.xp
			break
		}
	}
	if next <= base {
		return 1
	}
	frac := float64(experience-base) / float64(next-base)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}
