package app

import (
	"slices"

	"go.uber.org/zap"

	"compliment-deck/model"
	"compliment-deck/store"
)

const DefaultLoveMax = 100

// Milestone unlocks Theme once Reasons reasons have been logged.
type Milestone struct {
	Theme   model.Theme
	Reasons int
}

// DefaultMilestones in priority order.
var DefaultMilestones = []Milestone{
	{Theme: model.ThemeLavender, Reasons: 10},
	{Theme: model.ThemeNight, Reasons: 25},
	{Theme: model.ThemeSunset, Reasons: 50},
}

type ProgressOptions struct {
	Logger     *zap.Logger
	LoveMax    int
	Milestones []Milestone
}

// Progress tracks logged reasons, the love meter and unlocked themes.
type Progress struct {
	prefs      prefs
	log        *zap.Logger
	loveMax    int
	milestones []Milestone

	reasons  int
	points   int
	complete bool
	themes   []model.Theme
}

func NewProgress(kv store.KV, opts ProgressOptions) *Progress {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.LoveMax <= 0 {
		opts.LoveMax = DefaultLoveMax
	}
	if len(opts.Milestones) == 0 {
		opts.Milestones = DefaultMilestones
	}
	p := &Progress{
		prefs:      prefs{kv: kv, log: opts.Logger},
		log:        opts.Logger,
		loveMax:    opts.LoveMax,
		milestones: slices.Clone(opts.Milestones),
	}
	p.load()
	return p
}

func (p *Progress) load() {
	p.reasons = p.prefs.getInt(keyReasonsLogged, 0)
	p.points = min(p.prefs.getInt(keyLovePoints, 0), p.loveMax)
	p.complete = p.prefs.getBool(keyLoveComplete, false)

	p.themes = []model.Theme{}
	for _, raw := range p.prefs.getStrings(keyUnlockedThemes) {
		t := model.Theme(raw)
		if !p.isMilestoneTheme(t) || slices.Contains(p.themes, t) {
			continue
		}
		p.themes = append(p.themes, t)
	}
}

// LogReason counts one more reason and returns the new total.
func (p *Progress) LogReason() int {
	p.reasons++
	b := batch{}
	b.putInt(keyReasonsLogged, p.reasons)
	p.prefs.commit("log-reason", b)
	return p.reasons
}

// AddLovePoints fills the meter by n, clamped to the configured max. Once the
// meter completes it stops accumulating. It returns the current points and
// whether this call completed the meter.
func (p *Progress) AddLovePoints(n int) (int, bool) {
	if p.complete || n <= 0 {
		return p.points, false
	}
	p.points = min(p.points+n, p.loveMax)
	b := batch{}
	b.putInt(keyLovePoints, p.points)
	completed := false
	if p.points >= p.loveMax {
		p.complete = true
		completed = true
		b.putBool(keyLoveComplete, true)
		p.log.Info("love meter complete", zap.Int("points", p.points))
	}
	p.prefs.commit("love-points", b)
	return p.points, completed
}

// CheckMilestone unlocks at most one theme: the first milestone, in priority
// order, that is met and not yet unlocked. It returns ThemeNone otherwise.
func (p *Progress) CheckMilestone() model.Theme {
	for _, m := range p.milestones {
		if p.reasons < m.Reasons || slices.Contains(p.themes, m.Theme) {
			continue
		}
		p.themes = append(p.themes, m.Theme)
		b := batch{}
		b.putStrings(keyUnlockedThemes, themeStrings(p.themes))
		p.prefs.commit("milestone", b)
		p.log.Info("theme unlocked", zap.String("theme", string(m.Theme)), zap.Int("reasons", p.reasons))
		return m.Theme
	}
	return model.ThemeNone
}

func (p *Progress) Reasons() int       { return p.reasons }
func (p *Progress) LovePoints() int    { return p.points }
func (p *Progress) LoveMax() int       { return p.loveMax }
func (p *Progress) LoveComplete() bool { return p.complete }

// UnlockedThemes returns milestone themes in unlock order.
func (p *Progress) UnlockedThemes() []model.Theme {
	return slices.Clone(p.themes)
}

// IsUnlocked reports whether t may be selected. ThemeBlush always is.
func (p *Progress) IsUnlocked(t model.Theme) bool {
	return t == model.ThemeBlush || slices.Contains(p.themes, t)
}

func (p *Progress) isMilestoneTheme(t model.Theme) bool {
	for _, m := range p.milestones {
		if m.Theme == t {
			return true
		}
	}
	return false
}

func themeStrings(themes []model.Theme) []string {
	out := make([]string, len(themes))
	for i, t := range themes {
		out[i] = string(t)
	}
	return out
}
