package app

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"compliment-deck/catalog"
	"compliment-deck/model"
	"compliment-deck/store"
)

var (
	ErrCardNotFound        = errors.New("card not found")
	ErrNoCurrentCard       = errors.New("no card drawn")
	ErrReasonAlreadyLogged = errors.New("reason already logged for this card")
)

// Options configures a Service.
type Options struct {
	Deck                DeckOptions
	Progress            ProgressOptions
	LovePointsPerDraw   int
	LovePointsPerReason int
}

// ReasonResult reports what happened when a reason was logged.
type ReasonResult struct {
	Reasons       int
	LovePoints    int
	LoveCompleted bool
	NewTheme      model.Theme
}

// Status is a read-only snapshot of everything the UI shows.
type Status struct {
	PoolSize          int
	Seen              int // seen ids inside the current pool
	SeenTotal         int
	DrawCount         int
	Exhausted         bool
	Filter            model.Filter
	SecretUnlocked    bool
	SecretProgress    int
	SecretUnlockDraws int
	DailyMode         bool
	DailyRemaining    int
	DailyLimit        int
	NextDrawIn        time.Duration
	Reasons           int
	LovePoints        int
	LoveMax           int
	LoveComplete      bool
	UnlockedThemes    []model.Theme
	Theme             model.Theme
	Favorites         int
	SoundMuted        bool
}

// Service ties the deck, the progress tracker and the remaining preferences
// together for the presentation layer.
type Service struct {
	kv    store.KV
	cat   *catalog.Catalog
	opts  Options
	log   *zap.Logger
	prefs prefs

	deck     *Deck
	progress *Progress

	favorites  []string
	soundMuted bool
	theme      model.Theme

	// reasonLogged is per session on purpose; it is never persisted.
	reasonLogged map[string]struct{}
}

// NewService loads all persisted state from kv.
func NewService(kv store.KV, cat *catalog.Catalog, opts Options) *Service {
	if opts.Deck.Logger == nil {
		opts.Deck.Logger = zap.NewNop()
	}
	if opts.Progress.Logger == nil {
		opts.Progress.Logger = opts.Deck.Logger
	}
	s := &Service{
		kv:   kv,
		cat:  cat,
		opts: opts,
		log:  opts.Deck.Logger,
	}
	s.prefs = prefs{kv: kv, log: s.log}
	s.load()
	return s
}

func (s *Service) load() {
	s.deck = NewDeck(s.kv, s.cat, s.opts.Deck)
	s.progress = NewProgress(s.kv, s.opts.Progress)
	s.reasonLogged = map[string]struct{}{}

	s.favorites = []string{}
	for _, id := range s.prefs.getStrings(keyFavorites) {
		if _, ok := s.cat.ByID(id); !ok || slices.Contains(s.favorites, id) {
			continue
		}
		s.favorites = append(s.favorites, id)
	}
	s.soundMuted = s.prefs.getBool(keySoundMuted, true)

	s.theme = model.Theme(s.prefs.getString(keyTheme, string(model.ThemeBlush)))
	if !s.theme.Valid() || !s.progress.IsUnlocked(s.theme) {
		s.theme = model.ThemeBlush
	}
}

func (s *Service) Deck() *Deck         { return s.deck }
func (s *Service) Progress() *Progress { return s.progress }
func (s *Service) Catalog() *catalog.Catalog {
	return s.cat
}

// Draw draws a card and credits the love meter for it.
func (s *Service) Draw() DrawResult {
	res := s.deck.DrawCard()
	if res.Drawn {
		s.progress.AddLovePoints(s.opts.LovePointsPerDraw)
	}
	return res
}

// LogReason logs a reason for the current card. Each card accepts one reason
// per session.
func (s *Service) LogReason() (ReasonResult, error) {
	card, ok := s.deck.Current()
	if !ok {
		return ReasonResult{}, ErrNoCurrentCard
	}
	if _, done := s.reasonLogged[card.ID]; done {
		return ReasonResult{}, fmt.Errorf("%w: %s", ErrReasonAlreadyLogged, card.ID)
	}
	s.reasonLogged[card.ID] = struct{}{}

	out := ReasonResult{Reasons: s.progress.LogReason()}
	out.LovePoints, out.LoveCompleted = s.progress.AddLovePoints(s.opts.LovePointsPerReason)
	out.NewTheme = s.progress.CheckMilestone()
	return out, nil
}

// ToggleFavorite adds or removes id and reports whether it is now a favorite.
func (s *Service) ToggleFavorite(id string) (bool, error) {
	if _, ok := s.cat.ByID(id); !ok {
		return false, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	favorited := true
	if idx := slices.Index(s.favorites, id); idx >= 0 {
		s.favorites = slices.Delete(s.favorites, idx, idx+1)
		favorited = false
	} else {
		s.favorites = append(s.favorites, id)
	}
	b := batch{}
	b.putStrings(keyFavorites, s.favorites)
	s.prefs.commit("favorite", b)
	return favorited, nil
}

func (s *Service) IsFavorite(id string) bool {
	return slices.Contains(s.favorites, id)
}

// Favorites returns favorite cards in the order they were added.
func (s *Service) Favorites() []model.Card {
	out := make([]model.Card, 0, len(s.favorites))
	for _, id := range s.favorites {
		if card, ok := s.cat.ByID(id); ok {
			out = append(out, card)
		}
	}
	return out
}

// SetTheme selects an unlocked theme. Unknown or locked themes are ignored.
func (s *Service) SetTheme(t model.Theme) bool {
	if !t.Valid() || !s.progress.IsUnlocked(t) {
		return false
	}
	s.theme = t
	b := batch{}
	b.putString(keyTheme, string(t))
	s.prefs.commit("theme", b)
	return true
}

func (s *Service) Theme() model.Theme { return s.theme }

// AvailableThemes lists the themes the user may pick, in display order.
func (s *Service) AvailableThemes() []model.Theme {
	out := make([]model.Theme, 0, len(model.Themes))
	for _, t := range model.Themes {
		if s.progress.IsUnlocked(t) {
			out = append(out, t)
		}
	}
	return out
}

// ToggleSound flips the muted flag and returns the new value.
func (s *Service) ToggleSound() bool {
	s.soundMuted = !s.soundMuted
	b := batch{}
	b.putBool(keySoundMuted, s.soundMuted)
	s.prefs.commit("sound", b)
	return s.soundMuted
}

func (s *Service) SoundMuted() bool { return s.soundMuted }

// ResetAllProgress erases every persisted key and reloads default state.
func (s *Service) ResetAllProgress() error {
	if err := s.kv.Clear(); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.load()
	s.log.Info("all progress reset")
	return nil
}

func (s *Service) Status() Status {
	d, p := s.deck, s.progress
	return Status{
		PoolSize:          d.PoolSize(),
		Seen:              d.SeenInPool(),
		SeenTotal:         len(d.seen),
		DrawCount:         d.DrawCount(),
		Exhausted:         d.Exhausted(),
		Filter:            d.Filter(),
		SecretUnlocked:    d.SecretUnlocked(),
		SecretProgress:    d.SecretProgress(),
		SecretUnlockDraws: d.SecretUnlockDraws(),
		DailyMode:         d.DailyMode(),
		DailyRemaining:    d.DailyRemaining(),
		DailyLimit:        d.DailyLimit(),
		NextDrawIn:        d.TimeUntilNextDraw(),
		Reasons:           p.Reasons(),
		LovePoints:        p.LovePoints(),
		LoveMax:           p.LoveMax(),
		LoveComplete:      p.LoveComplete(),
		UnlockedThemes:    p.UnlockedThemes(),
		Theme:             s.theme,
		Favorites:         len(s.favorites),
		SoundMuted:        s.soundMuted,
	}
}
