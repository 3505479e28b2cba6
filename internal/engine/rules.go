package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Rules are the tunable numbers of the progression economy.
type Rules struct {
	// XPPerLevel maps a level to the XP needed to leave it. Levels without an
	// entry are the max level.
	XPPerLevel          map[int]float64
	SkillPointsPerLevel int
	StartingGold        int
	StartingSkillPoints int
	FocusMax            float64
	FocusRegenRate      float64
	FocusRegenInterval  time.Duration
	RespecCost          int
	RefreshInterval     time.Duration
	DefaultName         string
	// GoldPerXP is the divisor for the bonus gold granted on every XP gain.
	GoldPerXP float64
}

func DefaultRules() Rules {
	return Rules{
		XPPerLevel: map[int]float64{
			1: 100, 2: 250, 3: 500, 4: 800, 5: 1200,
			6: 1700, 7: 2300, 8: 3000, 9: 3800, 10: 4700,
		},
		SkillPointsPerLevel: 1,
		StartingGold:        50,
		StartingSkillPoints: 0,
		FocusMax:            100,
		FocusRegenRate:      5,
		FocusRegenInterval:  time.Hour,
		RespecCost:          50,
		RefreshInterval:     24 * time.Hour,
		DefaultName:         "Young Scholar",
		GoldPerXP:           5,
	}
}

// Threshold returns the XP needed to advance past level.
func (r Rules) Threshold(level int) (float64, bool) {
	v, ok := r.XPPerLevel[level]
	return v, ok
}

// MaxLevel is the first level with no threshold.
func (r Rules) MaxLevel() int {
	level := 1
	for {
		if _, ok := r.XPPerLevel[level]; !ok {
			return level
		}
		level++
	}
}

func (r Rules) Validate() error {
	var errs []error
	if len(r.XPPerLevel) == 0 {
		errs = append(errs, errors.New("xp_per_level must define at least level 1"))
	}
	levels := make([]int, 0, len(r.XPPerLevel))
	for l, v := range r.XPPerLevel {
		levels = append(levels, l)
		if v <= 0 {
			errs = append(errs, fmt.Errorf("xp_per_level[%d] must be > 0", l))
		}
	}
	sort.Ints(levels)
	for i, l := range levels {
		if l != i+1 {
			errs = append(errs, fmt.Errorf("xp_per_level must be contiguous from 1 (gap before %d)", l))
			break
		}
	}
	if r.SkillPointsPerLevel < 0 {
		errs = append(errs, errors.New("skill_points_per_level must be >= 0"))
	}
	if r.StartingGold < 0 || r.StartingSkillPoints < 0 {
		errs = append(errs, errors.New("starting gold and skill points must be >= 0"))
	}
	if r.FocusMax <= 0 {
		errs = append(errs, errors.New("focus_max must be > 0"))
	}
	if r.FocusRegenRate < 0 {
		errs = append(errs, errors.New("focus_regen_rate must be >= 0"))
	}
	if r.FocusRegenInterval <= 0 || r.RefreshInterval <= 0 {
		errs = append(errs, errors.New("intervals must be > 0"))
	}
	if r.RespecCost < 0 {
		errs = append(errs, errors.New("respec_cost must be >= 0"))
	}
	if r.GoldPerXP <= 0 {
		errs = append(errs, errors.New("gold_per_xp must be > 0"))
	}
	return errors.Join(errs...)
}
