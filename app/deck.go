package app

import (
	"math/rand/v2"
	"slices"
	"time"

	"go.uber.org/zap"

	"compliment-deck/catalog"
	"compliment-deck/model"
	"compliment-deck/store"
)

const (
	DefaultDrawThreshold     = 30
	DefaultDailyDrawLimit    = 3
	DefaultSecretUnlockDraws = 15
	DefaultScanBoundFactor   = 2

	dateLayout = "2006-01-02"
)

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// StdRNG delegates to math/rand/v2 (auto-seeded).
type StdRNG struct{}

func (StdRNG) Intn(n int) int { return rand.IntN(n) }

// DrawReason tells the caller why a draw did or did not produce a card.
type DrawReason string

const (
	DrawOK         DrawReason = "ok"
	DrawDailyLimit DrawReason = "daily-limit"
	DrawEmptyPool  DrawReason = "empty-pool"
)

// DrawResult is the outcome of DrawCard. Card is nil unless Drawn.
type DrawResult struct {
	Card           *model.Card
	Drawn          bool
	Reason         DrawReason
	Reshuffled     bool
	JustExhausted  bool
	SecretUnlocked bool
}

// DeckOptions configures a Deck. Zero values take the package defaults.
type DeckOptions struct {
	RNG               RNG
	Clock             func() time.Time
	Logger            *zap.Logger
	DrawThreshold     int
	DailyDrawLimit    int
	SecretUnlockDraws int
	ScanBoundFactor   int
}

func (o DeckOptions) withDefaults() DeckOptions {
	if o.RNG == nil {
		o.RNG = StdRNG{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.DrawThreshold <= 0 {
		o.DrawThreshold = DefaultDrawThreshold
	}
	if o.DailyDrawLimit <= 0 {
		o.DailyDrawLimit = DefaultDailyDrawLimit
	}
	if o.SecretUnlockDraws <= 0 {
		o.SecretUnlockDraws = DefaultSecretUnlockDraws
	}
	if o.ScanBoundFactor <= 0 {
		o.ScanBoundFactor = DefaultScanBoundFactor
	}
	return o
}

// Deck is the card selection state machine. It is not safe for concurrent use.
type Deck struct {
	cat   *catalog.Catalog
	prefs prefs
	opts  DeckOptions
	log   *zap.Logger

	order     []string
	cursor    int
	seen      []string
	seenSet   map[string]struct{}
	drawCount int
	current   *model.Card
	exhausted bool
	endShown  bool

	secretUnlocked bool
	secretProgress int

	filter model.Filter

	dailyMode bool
	dailyDate string
	dailyUsed int
}

// NewDeck builds a deck over cat, restoring any state found in kv.
func NewDeck(kv store.KV, cat *catalog.Catalog, opts DeckOptions) *Deck {
	opts = opts.withDefaults()
	d := &Deck{
		cat:     cat,
		prefs:   prefs{kv: kv, log: opts.Logger},
		opts:    opts,
		log:     opts.Logger,
		seenSet: map[string]struct{}{},
	}
	d.load()
	return d
}

func (d *Deck) load() {
	d.secretUnlocked = d.prefs.getBool(keySecretUnlocked, false)
	d.secretProgress = d.prefs.getInt(keySecretProgress, 0)
	d.endShown = d.prefs.getBool(keyDeckEndShown, false)
	d.dailyMode = d.prefs.getBool(keyDailyMode, false)

	d.filter = model.Filter{}
	if ow := model.OpenWhen(d.prefs.getString(keyOpenWhen, "")); ow != "" && ow.Valid() {
		d.filter = model.OpenWhenFilter(ow)
	} else if mood := model.Mood(d.prefs.getString(keyMood, string(model.MoodAll))); mood.Valid() {
		d.filter = model.MoodFilter(mood)
	}

	d.seen = d.seen[:0]
	d.seenSet = map[string]struct{}{}
	available := map[string]struct{}{}
	for _, card := range d.cat.Available(d.secretUnlocked) {
		available[card.ID] = struct{}{}
	}
	for _, id := range d.prefs.getStrings(keySeenIDs) {
		if _, ok := available[id]; !ok {
			continue
		}
		if _, dup := d.seenSet[id]; dup {
			continue
		}
		d.seenSet[id] = struct{}{}
		d.seen = append(d.seen, id)
	}
	d.drawCount = len(d.seen)

	d.dailyDate = ""
	d.refreshDaily()
	d.InitializeDeck(true)

	d.log.Debug("deck loaded",
		zap.Int("seen", len(d.seen)),
		zap.Int("pool", len(d.order)),
		zap.Bool("secret_unlocked", d.secretUnlocked),
		zap.String("filter", d.filter.String()),
	)
}

// InitializeDeck permutes the current pool and rewinds the cursor. With
// preserveSeen false it also forgets the seen history and exhaustion state.
func (d *Deck) InitializeDeck(preserveSeen bool) {
	d.order = d.shuffled(catalog.IDs(d.pool()))
	d.cursor = 0
	if preserveSeen {
		return
	}

	d.clearSeen()
	d.drawCount = 0
	d.exhausted = false
	d.endShown = false

	b := batch{}
	b.putStrings(keySeenIDs, nil)
	b.putBool(keyDeckEndShown, false)
	d.prefs.commit("initialize", b)
	d.log.Debug("deck initialized", zap.Int("pool", len(d.order)))
}

// DrawCard selects the next unseen card. See DrawResult for the outcomes that
// do not produce a card; in those cases the selection state is unchanged,
// except that an empty pool clears the current card.
func (d *Deck) DrawCard() DrawResult {
	if d.dailyMode {
		d.refreshDaily()
		if d.dailyUsed >= d.opts.DailyDrawLimit {
			d.log.Debug("draw refused: daily limit reached", zap.Int("used", d.dailyUsed))
			return DrawResult{Reason: DrawDailyLimit}
		}
	}

	idx, reshuffled, ok := d.nextUnseen()
	if !ok {
		d.current = nil
		d.log.Debug("draw found no card", zap.String("filter", d.filter.String()))
		return DrawResult{Reason: DrawEmptyPool}
	}

	id := d.order[idx]
	card, _ := d.cat.ByID(id)
	d.current = &card
	d.exhausted = false
	d.markSeen(id)
	d.drawCount++
	d.cursor = idx + 1

	res := DrawResult{Card: &card, Drawn: true, Reason: DrawOK, Reshuffled: reshuffled}
	b := batch{}
	b.putStrings(keySeenIDs, d.seen)

	if d.dailyMode {
		d.dailyUsed++
		b.putInt(dailyKey(d.dailyDate), d.dailyUsed)
	}

	if !d.secretUnlocked {
		d.secretProgress++
		if d.secretProgress >= d.opts.SecretUnlockDraws {
			d.secretUnlocked = true
			d.secretProgress = 0
			b.putBool(keySecretUnlocked, true)
			res.SecretUnlocked = true
		}
		b.putInt(keySecretProgress, d.secretProgress)
	}
	if res.SecretUnlocked {
		d.InitializeDeck(true)
		d.log.Info("secret deck unlocked by progress", zap.Int("draws", d.drawCount))
	}

	if d.exhaustionReached() && !d.endShown {
		d.exhausted = true
		d.endShown = true
		b.putBool(keyDeckEndShown, true)
		res.JustExhausted = true
		d.log.Info("deck exhausted", zap.Int("draws", d.drawCount), zap.Int("pool", len(d.order)))
	}

	d.prefs.commit("draw", b)
	d.log.Debug("card drawn", zap.String("card_id", id), zap.Int("cursor", d.cursor), zap.Int("seen", len(d.seen)))
	return res
}

// nextUnseen scans forward from the cursor. The first time it runs off the end
// it wraps to the start so newly added ids surface before a reshuffle; the
// second time every id has been seen, so it reshuffles and forgets the seen
// history along with the draw count. A scan longer than ScanBoundFactor times the deck forces a full
// reinitialize.
func (d *Deck) nextUnseen() (idx int, reshuffled, ok bool) {
	if len(d.order) == 0 {
		d.InitializeDeck(true)
		if len(d.order) == 0 {
			return 0, false, false
		}
	}

	bound := d.opts.ScanBoundFactor * len(d.order)
	wrapped := false
	scanned := 0
	i := d.cursor
	for {
		if scanned > bound {
			d.log.Warn("draw scan exceeded bound, reinitializing", zap.Int("scanned", scanned), zap.Int("bound", bound))
			d.InitializeDeck(false)
			if len(d.order) == 0 {
				return 0, true, false
			}
			return 0, true, true
		}
		if i >= len(d.order) {
			if !wrapped {
				wrapped = true
				i = 0
				continue
			}
			d.order = d.shuffled(catalog.IDs(d.pool()))
			d.clearSeen()
			d.drawCount = 0
			reshuffled = true
			wrapped = false
			i = 0
			if len(d.order) == 0 {
				return 0, true, false
			}
			continue
		}
		scanned++
		if !d.isSeen(d.order[i]) {
			return i, reshuffled, true
		}
		i++
	}
}

func (d *Deck) exhaustionReached() bool {
	pool := len(d.order)
	if pool == 0 {
		return false
	}
	return d.SeenInPool() >= pool || d.drawCount >= d.opts.DrawThreshold
}

// SeenInPool counts the seen ids reachable under the current filter.
func (d *Deck) SeenInPool() int {
	n := 0
	for _, id := range d.order {
		if d.isSeen(id) {
			n++
		}
	}
	return n
}

// ShuffleDeck re-permutes the pool without forgiving seen cards.
func (d *Deck) ShuffleDeck() {
	d.order = d.shuffled(catalog.IDs(d.pool()))
	d.cursor = 0
	d.log.Debug("deck shuffled", zap.Int("pool", len(d.order)))
}

// ResetDeck leaves the exhausted state and starts a fresh cycle.
func (d *Deck) ResetDeck() {
	d.exhausted = false
	d.InitializeDeck(false)
	d.current = nil
	d.log.Info("deck reset")
}

// SetMood replaces any active filter with a mood filter. Unknown moods are
// ignored and report false.
func (d *Deck) SetMood(mood model.Mood) bool {
	if !mood.Valid() {
		return false
	}
	d.setFilter(model.MoodFilter(mood))
	return true
}

// FilterByOpenWhen replaces any active filter with an open-when filter. The
// empty key clears the filter. Unknown keys are ignored and report false.
func (d *Deck) FilterByOpenWhen(key model.OpenWhen) bool {
	if key != "" && !key.Valid() {
		return false
	}
	d.setFilter(model.OpenWhenFilter(key))
	return true
}

func (d *Deck) setFilter(f model.Filter) {
	d.filter = f
	b := batch{}
	b.putString(keyMood, string(f.CurrentMood()))
	b.putString(keyOpenWhen, string(f.CurrentOpenWhen()))
	d.prefs.commit("filter", b)
	d.InitializeDeck(true)
	d.log.Debug("filter changed", zap.String("filter", f.String()), zap.Int("pool", len(d.order)))
}

// UnlockSecretDeck opens the secret cards. It reports whether anything changed.
func (d *Deck) UnlockSecretDeck() bool {
	if d.secretUnlocked {
		return false
	}
	d.secretUnlocked = true
	d.secretProgress = 0
	b := batch{}
	b.putBool(keySecretUnlocked, true)
	b.putInt(keySecretProgress, 0)
	d.prefs.commit("unlock", b)
	d.InitializeDeck(true)
	d.log.Info("secret deck unlocked")
	return true
}

// ToggleDailyMode flips the daily limit and returns the new setting.
func (d *Deck) ToggleDailyMode() bool {
	d.dailyMode = !d.dailyMode
	b := batch{}
	b.putBool(keyDailyMode, d.dailyMode)
	d.prefs.commit("daily-mode", b)
	if d.dailyMode {
		d.dailyDate = ""
		d.refreshDaily()
		d.pruneDailyCounters()
	}
	return d.dailyMode
}

// DrawFinalThree returns up to three shuffled cards from the key's categories.
// It does not touch the deck's selection state.
func (d *Deck) DrawFinalThree(key model.OpenWhen) []model.Card {
	pool := d.cat.FinalThreePool(key)
	shuffle(pool, d.opts.RNG)
	if len(pool) > 3 {
		pool = pool[:3]
	}
	return pool
}

// Current returns the card on the table, if any.
func (d *Deck) Current() (model.Card, bool) {
	if d.current == nil {
		return model.Card{}, false
	}
	return *d.current, true
}

func (d *Deck) Exhausted() bool        { return d.exhausted }
func (d *Deck) DrawCount() int         { return d.drawCount }
func (d *Deck) Cursor() int            { return d.cursor }
func (d *Deck) PoolSize() int          { return len(d.order) }
func (d *Deck) Filter() model.Filter   { return d.filter }
func (d *Deck) SecretUnlocked() bool   { return d.secretUnlocked }
func (d *Deck) SecretProgress() int    { return d.secretProgress }
func (d *Deck) SecretUnlockDraws() int { return d.opts.SecretUnlockDraws }
func (d *Deck) DailyMode() bool        { return d.dailyMode }
func (d *Deck) DailyLimit() int        { return d.opts.DailyDrawLimit }

// SeenIDs returns the ids drawn in the current cycle, in draw order.
func (d *Deck) SeenIDs() []string {
	return slices.Clone(d.seen)
}

// Order returns the current permutation.
func (d *Deck) Order() []string {
	return slices.Clone(d.order)
}

// DailyRemaining is today's remaining draw budget.
func (d *Deck) DailyRemaining() int {
	d.refreshDaily()
	return max(0, d.opts.DailyDrawLimit-d.dailyUsed)
}

// TimeUntilNextDraw is zero unless daily mode is on and today's budget is spent.
func (d *Deck) TimeUntilNextDraw() time.Duration {
	if !d.dailyMode || d.DailyRemaining() > 0 {
		return 0
	}
	now := d.opts.Clock()
	y, m, day := now.Date()
	midnight := time.Date(y, m, day+1, 0, 0, 0, 0, now.Location())
	return midnight.Sub(now)
}

func (d *Deck) pool() []model.Card {
	return d.cat.Pool(d.secretUnlocked, d.filter)
}

func (d *Deck) refreshDaily() {
	today := d.opts.Clock().Format(dateLayout)
	if today == d.dailyDate {
		return
	}
	d.dailyDate = today
	d.dailyUsed = d.prefs.getInt(dailyKey(today), 0)
}

// pruneDailyCounters drops per-day counters older than today when the store
// can enumerate keys.
func (d *Deck) pruneDailyCounters() {
	lister, ok := d.prefs.kv.(keyLister)
	if !ok {
		return
	}
	keep := dailyKey(d.dailyDate)
	stale := make([]string, 0)
	for _, k := range lister.Keys(keyDailyDrawsPrefix) {
		if k != keep {
			stale = append(stale, k)
		}
	}
	d.prefs.remove("prune-daily", stale...)
}

func (d *Deck) isSeen(id string) bool {
	_, ok := d.seenSet[id]
	return ok
}

func (d *Deck) markSeen(id string) {
	if d.isSeen(id) {
		return
	}
	d.seenSet[id] = struct{}{}
	d.seen = append(d.seen, id)
}

func (d *Deck) clearSeen() {
	d.seen = []string{}
	d.seenSet = map[string]struct{}{}
}

func (d *Deck) shuffled(ids []string) []string {
	shuffle(ids, d.opts.RNG)
	return ids
}

// shuffle is an in-place Fisher-Yates permutation.
func shuffle[T any](items []T, rng RNG) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
