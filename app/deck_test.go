package app

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"compliment-deck/catalog"
	"compliment-deck/model"
	"compliment-deck/store"
)

// seededRNG is a reproducible RNG for permutation tests.
type seededRNG struct {
	r *rand.Rand
}

func newSeededRNG(seed uint64) *seededRNG {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRNG) Intn(n int) int { return s.r.IntN(n) }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)}
}

func sweet(id string) model.Card {
	return model.NewText(id, model.CategorySweet, model.RarityCommon, model.TextBody{Text: "sweet " + id, Intensity: 1})
}

func funny(id string) model.Card {
	return model.NewText(id, model.CategoryFunny, model.RarityCommon, model.TextBody{Text: "funny " + id, Intensity: 1})
}

func secret(id string) model.Card {
	return model.NewText(id, model.CategorySecret, model.RarityLegendary, model.TextBody{Text: "secret " + id, Intensity: 3})
}

func mustCatalog(t *testing.T, cards ...model.Card) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(cards...)
	if err != nil {
		t.Fatalf("build catalog failed: %v", err)
	}
	return c
}

func fiveCards(t *testing.T) *catalog.Catalog {
	t.Helper()
	return mustCatalog(t, sweet("c1"), sweet("c2"), sweet("c3"), sweet("c4"), sweet("c5"))
}

func testDeckOptions(t *testing.T, clock *fakeClock) DeckOptions {
	t.Helper()
	return DeckOptions{
		RNG:               newSeededRNG(42),
		Clock:             clock.Now,
		Logger:            zaptest.NewLogger(t),
		DrawThreshold:     10,
		DailyDrawLimit:    3,
		SecretUnlockDraws: 1000,
	}
}

func mustDraw(t *testing.T, d *Deck) model.Card {
	t.Helper()
	res := d.DrawCard()
	if !res.Drawn || res.Card == nil {
		t.Fatalf("expected a card, got reason %q", res.Reason)
	}
	return *res.Card
}

func sorted(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}

func TestInitializeDeckIsPermutationOfPool(t *testing.T) {
	cat := mustCatalog(t, sweet("a1"), sweet("a2"), funny("b1"), funny("b2"), funny("b3"), secret("s1"))

	for seed := uint64(1); seed <= 20; seed++ {
		opts := testDeckOptions(t, newClock())
		opts.RNG = newSeededRNG(seed)
		d := NewDeck(store.NewMemoryStore(), cat, opts)

		d.InitializeDeck(false)
		if diff := cmp.Diff([]string{"a1", "a2", "b1", "b2", "b3"}, sorted(d.Order())); diff != "" {
			t.Fatalf("seed %d: locked order is not a permutation (-want +got):\n%s", seed, diff)
		}

		d.SetMood(model.MoodFunny)
		if diff := cmp.Diff([]string{"b1", "b2", "b3"}, sorted(d.Order())); diff != "" {
			t.Fatalf("seed %d: filtered order is not a permutation (-want +got):\n%s", seed, diff)
		}

		d.SetMood(model.MoodAll)
		d.UnlockSecretDeck()
		if diff := cmp.Diff([]string{"a1", "a2", "b1", "b2", "b3", "s1"}, sorted(d.Order())); diff != "" {
			t.Fatalf("seed %d: unlocked order is not a permutation (-want +got):\n%s", seed, diff)
		}
		if d.Cursor() != 0 {
			t.Fatalf("seed %d: expected cursor reset to 0, got %d", seed, d.Cursor())
		}
	}
}

func TestDrawNeverRepeatsWithinCycle(t *testing.T) {
	for size := 1; size <= 8; size++ {
		cards := make([]model.Card, size)
		for i := range cards {
			cards[i] = sweet(string(rune('a' + i)))
		}
		cat := mustCatalog(t, cards...)
		opts := testDeckOptions(t, newClock())
		opts.DrawThreshold = 100
		d := NewDeck(store.NewMemoryStore(), cat, opts)

		seen := map[string]bool{}
		for i := 0; i < size; i++ {
			card := mustDraw(t, d)
			if seen[card.ID] {
				t.Fatalf("size %d: card %s drawn twice in one cycle", size, card.ID)
			}
			seen[card.ID] = true
		}
		if len(seen) != size {
			t.Fatalf("size %d: expected every card once, saw %d", size, len(seen))
		}

		res := d.DrawCard()
		if !res.Drawn || !res.Reshuffled {
			t.Fatalf("size %d: expected draw after a full cycle to reshuffle, got %+v", size, res)
		}
		if got := d.SeenIDs(); len(got) != 1 {
			t.Fatalf("size %d: expected seen history to restart, got %v", size, got)
		}
	}
}

func TestFiveCardScenarioExhaustsOnFifthDraw(t *testing.T) {
	d := NewDeck(store.NewMemoryStore(), fiveCards(t), testDeckOptions(t, newClock()))

	drawn := map[string]bool{}
	for i := 1; i <= 5; i++ {
		res := d.DrawCard()
		if !res.Drawn {
			t.Fatalf("draw %d: expected a card, got %q", i, res.Reason)
		}
		drawn[res.Card.ID] = true
		if i < 5 && (res.JustExhausted || d.Exhausted()) {
			t.Fatalf("draw %d: exhausted too early", i)
		}
		if i == 5 && (!res.JustExhausted || !d.Exhausted()) {
			t.Fatalf("draw 5: expected deck exhausted")
		}
	}
	if diff := cmp.Diff([]string{"c1", "c2", "c3", "c4", "c5"}, sorted(mapKeys(drawn))); diff != "" {
		t.Fatalf("expected every card exactly once (-want +got):\n%s", diff)
	}

	for i := 6; i <= 15; i++ {
		res := d.DrawCard()
		if res.JustExhausted || d.Exhausted() {
			t.Fatalf("draw %d: exhaustion fired again without a reset", i)
		}
	}
}

func TestResetDeckReproducesExhaustion(t *testing.T) {
	d := NewDeck(store.NewMemoryStore(), fiveCards(t), testDeckOptions(t, newClock()))
	for i := 0; i < 5; i++ {
		mustDraw(t, d)
	}
	if !d.Exhausted() {
		t.Fatalf("expected first cycle to exhaust")
	}

	d.ResetDeck()
	if d.Exhausted() {
		t.Fatalf("expected reset to leave the exhausted state")
	}
	if _, ok := d.Current(); ok {
		t.Fatalf("expected reset to clear the current card")
	}
	if d.DrawCount() != 0 || len(d.SeenIDs()) != 0 {
		t.Fatalf("expected reset to clear history, got count=%d seen=%v", d.DrawCount(), d.SeenIDs())
	}

	for i := 1; i <= 5; i++ {
		res := d.DrawCard()
		if i == 5 && !res.JustExhausted {
			t.Fatalf("expected exhaustion again after reset")
		}
	}
}

func TestExhaustionByDrawThreshold(t *testing.T) {
	opts := testDeckOptions(t, newClock())
	opts.DrawThreshold = 3
	d := NewDeck(store.NewMemoryStore(), fiveCards(t), opts)

	mustDraw(t, d)
	mustDraw(t, d)
	if d.Exhausted() {
		t.Fatalf("exhausted before threshold")
	}
	if res := d.DrawCard(); !res.JustExhausted {
		t.Fatalf("expected threshold to exhaust the deck on the third draw")
	}
}

func TestExhaustionUsesCurrentPoolSize(t *testing.T) {
	kv := store.NewMemoryStore()
	_ = kv.Set(map[string]string{keySeenIDs: `["b1","b2","b3","b4"]`})
	cat := mustCatalog(t, sweet("a1"), sweet("a2"), sweet("a3"), funny("b1"), funny("b2"), funny("b3"), funny("b4"))
	opts := testDeckOptions(t, newClock())
	opts.DrawThreshold = 100
	d := NewDeck(kv, cat, opts)

	if !d.SetMood(model.MoodSweet) {
		t.Fatalf("expected mood to be accepted")
	}
	for i := 1; i <= 3; i++ {
		res := d.DrawCard()
		if res.Card.Category != model.CategorySweet {
			t.Fatalf("draw %d: card %s outside the filtered pool", i, res.Card.ID)
		}
		if i < 3 && res.JustExhausted {
			t.Fatalf("draw %d: exhaustion computed against stale totals", i)
		}
		if i == 3 && !res.JustExhausted {
			t.Fatalf("expected exhaustion once the filtered pool is seen")
		}
	}
}

func TestShuffleDeckKeepsHistory(t *testing.T) {
	d := NewDeck(store.NewMemoryStore(), fiveCards(t), testDeckOptions(t, newClock()))
	mustDraw(t, d)
	mustDraw(t, d)
	seenBefore := d.SeenIDs()
	countBefore := d.DrawCount()

	d.ShuffleDeck()

	if diff := cmp.Diff(seenBefore, d.SeenIDs()); diff != "" {
		t.Fatalf("shuffle changed seen ids (-want +got):\n%s", diff)
	}
	if d.DrawCount() != countBefore {
		t.Fatalf("shuffle changed draw count: %d -> %d", countBefore, d.DrawCount())
	}
	if d.Cursor() != 0 {
		t.Fatalf("expected shuffle to rewind cursor, got %d", d.Cursor())
	}

	for i := 0; i < 3; i++ {
		card := mustDraw(t, d)
		if slices.Contains(seenBefore, card.ID) {
			t.Fatalf("shuffle forgave seen card %s", card.ID)
		}
	}
}

func TestDailyLimitMakesExtraDrawANoOp(t *testing.T) {
	clock := newClock()
	d := NewDeck(store.NewMemoryStore(), fiveCards(t), testDeckOptions(t, clock))

	if !d.ToggleDailyMode() {
		t.Fatalf("expected daily mode on")
	}
	if d.DailyRemaining() != 3 {
		t.Fatalf("expected full budget, got %d", d.DailyRemaining())
	}
	var last model.Card
	for i := 0; i < 3; i++ {
		last = mustDraw(t, d)
	}
	seen := d.SeenIDs()

	res := d.DrawCard()
	if res.Drawn || res.Reason != DrawDailyLimit {
		t.Fatalf("expected daily limit no-op, got %+v", res)
	}
	if cur, _ := d.Current(); cur.ID != last.ID {
		t.Fatalf("current card changed on a refused draw: %s -> %s", last.ID, cur.ID)
	}
	if diff := cmp.Diff(seen, d.SeenIDs()); diff != "" {
		t.Fatalf("seen ids changed on a refused draw (-want +got):\n%s", diff)
	}
	if d.DailyRemaining() != 0 {
		t.Fatalf("expected empty budget, got %d", d.DailyRemaining())
	}
	if want := 14*time.Hour + 30*time.Minute; d.TimeUntilNextDraw() != want {
		t.Fatalf("expected %s until midnight, got %s", want, d.TimeUntilNextDraw())
	}

	clock.advance(24 * time.Hour)
	if d.DailyRemaining() != 3 {
		t.Fatalf("expected budget to refill the next day, got %d", d.DailyRemaining())
	}
	mustDraw(t, d)
}

func TestDailyCounterSurvivesReloadAndOldDaysArePruned(t *testing.T) {
	clock := newClock()
	kv := store.NewMemoryStore()
	_ = kv.Set(map[string]string{dailyKey("2026-10-01"): "3"})

	d := NewDeck(kv, fiveCards(t), testDeckOptions(t, clock))
	d.ToggleDailyMode()
	mustDraw(t, d)
	mustDraw(t, d)

	reloaded := NewDeck(kv, fiveCards(t), testDeckOptions(t, clock))
	if !reloaded.DailyMode() {
		t.Fatalf("expected daily mode to persist")
	}
	if reloaded.DailyRemaining() != 1 {
		t.Fatalf("expected 1 draw left after reload, got %d", reloaded.DailyRemaining())
	}
	if keys := kv.Keys(keyDailyDrawsPrefix); len(keys) != 1 || keys[0] != dailyKey("2026-10-14") {
		t.Fatalf("expected only today's counter, got %v", keys)
	}
}

func TestDailyModeOffIgnoresBudget(t *testing.T) {
	d := NewDeck(store.NewMemoryStore(), fiveCards(t), testDeckOptions(t, newClock()))
	for i := 0; i < 5; i++ {
		mustDraw(t, d)
	}
	if d.TimeUntilNextDraw() != 0 {
		t.Fatalf("expected no wait with daily mode off")
	}
}

func TestUnlockSecretDeckIsIdempotent(t *testing.T) {
	kv := store.NewMemoryStore()
	cat := mustCatalog(t, sweet("c1"), sweet("c2"), sweet("c3"), secret("s1"))
	d := NewDeck(kv, cat, testDeckOptions(t, newClock()))

	mustDraw(t, d)
	mustDraw(t, d)
	if d.SecretProgress() != 2 {
		t.Fatalf("expected progress 2, got %d", d.SecretProgress())
	}

	if !d.UnlockSecretDeck() {
		t.Fatalf("expected first unlock to change state")
	}
	if !d.SecretUnlocked() || d.SecretProgress() != 0 {
		t.Fatalf("unexpected state after unlock: unlocked=%v progress=%d", d.SecretUnlocked(), d.SecretProgress())
	}
	if d.UnlockSecretDeck() {
		t.Fatalf("expected second unlock to be a no-op")
	}
	if !d.SecretUnlocked() || d.SecretProgress() != 0 {
		t.Fatalf("second unlock altered state")
	}
	if v, _ := kv.Get(keySecretUnlocked); v != "true" {
		t.Fatalf("expected unlock persisted, got %q", v)
	}

	// The secret card surfaces within the existing cycle.
	drawn := map[string]bool{}
	for i := 0; i < 2; i++ {
		drawn[mustDraw(t, d).ID] = true
	}
	if len(drawn) != 2 || !d.Exhausted() {
		t.Fatalf("expected the two unseen cards then exhaustion, got %v exhausted=%v", drawn, d.Exhausted())
	}
	if !drawn["s1"] {
		t.Fatalf("expected secret card to be reachable after unlock, got %v", drawn)
	}
}

func TestSecretUnlocksAutomaticallyAfterEnoughDraws(t *testing.T) {
	kv := store.NewMemoryStore()
	cat := mustCatalog(t, sweet("c1"), sweet("c2"), sweet("c3"), sweet("c4"), sweet("c5"), secret("s1"))
	opts := testDeckOptions(t, newClock())
	opts.SecretUnlockDraws = 3
	d := NewDeck(kv, cat, opts)

	mustDraw(t, d)
	mustDraw(t, d)
	res := d.DrawCard()
	if !res.SecretUnlocked || !d.SecretUnlocked() {
		t.Fatalf("expected third draw to unlock the secret deck")
	}
	if d.SecretProgress() != 0 || d.PoolSize() != 6 {
		t.Fatalf("expected progress reset and pool grown, got progress=%d pool=%d", d.SecretProgress(), d.PoolSize())
	}

	reloaded := NewDeck(kv, cat, opts)
	if !reloaded.SecretUnlocked() {
		t.Fatalf("expected unlock to survive reload")
	}
	if diff := cmp.Diff(d.SeenIDs(), reloaded.SeenIDs()); diff != "" {
		t.Fatalf("seen history lost on reload (-want +got):\n%s", diff)
	}
}

func TestSeenIDsRoundTripResumesFromUnseen(t *testing.T) {
	kv := store.NewMemoryStore()
	_ = kv.Set(map[string]string{keySeenIDs: `["c1","c3"]`})

	d := NewDeck(kv, fiveCards(t), testDeckOptions(t, newClock()))
	if diff := cmp.Diff([]string{"c1", "c3"}, d.SeenIDs()); diff != "" {
		t.Fatalf("seen ids not restored (-want +got):\n%s", diff)
	}
	if d.DrawCount() != 2 {
		t.Fatalf("expected draw count restored from seen ids, got %d", d.DrawCount())
	}

	got := map[string]bool{}
	for i := 0; i < 3; i++ {
		got[mustDraw(t, d).ID] = true
	}
	if diff := cmp.Diff([]string{"c2", "c4", "c5"}, sorted(mapKeys(got))); diff != "" {
		t.Fatalf("expected only unseen cards (-want +got):\n%s", diff)
	}
	if !d.Exhausted() {
		t.Fatalf("expected exhaustion after the remaining unseen cards")
	}
}

func TestDrawCountMatchesSeenAcrossReshuffleAndReload(t *testing.T) {
	kv := store.NewMemoryStore()
	opts := testDeckOptions(t, newClock())
	opts.DrawThreshold = 100
	d := NewDeck(kv, fiveCards(t), opts)

	reshuffled := false
	for i := 0; i < 7; i++ {
		res := d.DrawCard()
		if !res.Drawn {
			t.Fatalf("draw %d failed: %+v", i+1, res)
		}
		reshuffled = reshuffled || res.Reshuffled
		if d.DrawCount() != len(d.SeenIDs()) {
			t.Fatalf("draw %d: count %d does not match seen %v", i+1, d.DrawCount(), d.SeenIDs())
		}
	}
	if !reshuffled {
		t.Fatalf("expected a reshuffle within seven draws of five cards")
	}
	if d.DrawCount() != 2 {
		t.Fatalf("expected two draws into the second cycle, got %d", d.DrawCount())
	}

	reloaded := NewDeck(kv, fiveCards(t), opts)
	if reloaded.DrawCount() != d.DrawCount() {
		t.Fatalf("draw count changed on reload: %d -> %d", d.DrawCount(), reloaded.DrawCount())
	}
	if diff := cmp.Diff(d.SeenIDs(), reloaded.SeenIDs()); diff != "" {
		t.Fatalf("seen ids changed on reload (-want +got):\n%s", diff)
	}
}

func TestLoadDropsUnknownAndLockedSeenIDs(t *testing.T) {
	kv := store.NewMemoryStore()
	_ = kv.Set(map[string]string{keySeenIDs: `["c1","ghost","s1","c1"]`})
	cat := mustCatalog(t, sweet("c1"), sweet("c2"), secret("s1"))

	d := NewDeck(kv, cat, testDeckOptions(t, newClock()))
	if diff := cmp.Diff([]string{"c1"}, d.SeenIDs()); diff != "" {
		t.Fatalf("unexpected seen ids (-want +got):\n%s", diff)
	}
}

func TestFiltersAreMutuallyExclusiveAndPersisted(t *testing.T) {
	kv := store.NewMemoryStore()
	cat := mustCatalog(t, sweet("a1"), funny("b1"), model.NewText("sup", model.CategorySupportive, model.RarityCommon, model.TextBody{Text: "s", Intensity: 1}))
	d := NewDeck(kv, cat, testDeckOptions(t, newClock()))

	d.SetMood(model.MoodFunny)
	if mood, _ := kv.Get(keyMood); mood != "funny" {
		t.Fatalf("expected mood funny persisted, got %q", mood)
	}
	if ow, _ := kv.Get(keyOpenWhen); ow != "" {
		t.Fatalf("expected open-when cleared, got %q", ow)
	}

	d.FilterByOpenWhen(model.OpenWhenSad)
	if d.Filter().Kind != model.FilterOpenWhen {
		t.Fatalf("expected open-when filter active, got %+v", d.Filter())
	}
	if mood, _ := kv.Get(keyMood); mood != "all" {
		t.Fatalf("expected mood reset to all, got %q", mood)
	}
	if diff := cmp.Diff([]string{"a1", "sup"}, sorted(d.Order())); diff != "" {
		t.Fatalf("unexpected pool for open-when sad (-want +got):\n%s", diff)
	}

	reloaded := NewDeck(kv, cat, testDeckOptions(t, newClock()))
	if reloaded.Filter() != model.OpenWhenFilter(model.OpenWhenSad) {
		t.Fatalf("filter not restored, got %+v", reloaded.Filter())
	}

	if d.SetMood("grumpy") || d.FilterByOpenWhen("bored") {
		t.Fatalf("expected unknown keys to be rejected")
	}
	if d.Filter() != model.OpenWhenFilter(model.OpenWhenSad) {
		t.Fatalf("rejected key changed filter: %+v", d.Filter())
	}

	d.FilterByOpenWhen("")
	if d.Filter().Kind != model.FilterNone {
		t.Fatalf("expected empty open-when to clear the filter")
	}
}

func TestFilterChangeKeepsSeenHistory(t *testing.T) {
	cat := mustCatalog(t, sweet("a1"), sweet("a2"), funny("b1"), funny("b2"))
	d := NewDeck(store.NewMemoryStore(), cat, testDeckOptions(t, newClock()))
	mustDraw(t, d)
	mustDraw(t, d)
	seen := d.SeenIDs()

	d.SetMood(model.MoodFunny)
	if diff := cmp.Diff(seen, d.SeenIDs()); diff != "" {
		t.Fatalf("filter change forgave history (-want +got):\n%s", diff)
	}
	if d.DrawCount() != 2 {
		t.Fatalf("filter change reset draw count to %d", d.DrawCount())
	}
}

func TestEmptyPoolSurfacesNoCard(t *testing.T) {
	cat := mustCatalog(t, sweet("a1"), sweet("a2"))
	d := NewDeck(store.NewMemoryStore(), cat, testDeckOptions(t, newClock()))
	mustDraw(t, d)

	d.SetMood(model.MoodFunny)
	if d.PoolSize() != 0 {
		t.Fatalf("expected empty pool, got %d", d.PoolSize())
	}
	res := d.DrawCard()
	if res.Drawn || res.Card != nil || res.Reason != DrawEmptyPool {
		t.Fatalf("expected empty-pool outcome, got %+v", res)
	}
	if _, ok := d.Current(); ok {
		t.Fatalf("expected no current card with an empty pool")
	}
	if len(d.SeenIDs()) != 1 {
		t.Fatalf("empty pool draw changed history: %v", d.SeenIDs())
	}
}

func TestScanBoundForcesFullReinitialize(t *testing.T) {
	seedSeen := func() *store.MemoryStore {
		kv := store.NewMemoryStore()
		_ = kv.Set(map[string]string{keySeenIDs: `["a","b","c"]`})
		return kv
	}
	cat := mustCatalog(t, sweet("a"), sweet("b"), sweet("c"))

	opts := testDeckOptions(t, newClock())
	opts.DrawThreshold = 100
	d := NewDeck(seedSeen(), cat, opts)
	res := d.DrawCard()
	if !res.Drawn || !res.Reshuffled {
		t.Fatalf("expected second wrap to reshuffle, got %+v", res)
	}
	if d.DrawCount() != 1 || len(d.SeenIDs()) != 1 {
		t.Fatalf("expected reshuffle to restart the count, got count=%d seen=%v", d.DrawCount(), d.SeenIDs())
	}

	opts.ScanBoundFactor = 1
	tight := NewDeck(seedSeen(), cat, opts)
	res = tight.DrawCard()
	if !res.Drawn {
		t.Fatalf("expected a card after forced reinitialize, got %+v", res)
	}
	if tight.DrawCount() != 1 || len(tight.SeenIDs()) != 1 {
		t.Fatalf("expected full reset before the draw, got count=%d seen=%v", tight.DrawCount(), tight.SeenIDs())
	}
}

func TestDrawFinalThreeIsStateless(t *testing.T) {
	cat := mustCatalog(t, sweet("a1"), sweet("a2"), funny("b1"), funny("b2"),
		model.NewText("sup1", model.CategorySupportive, model.RarityCommon, model.TextBody{Text: "s", Intensity: 1}),
		model.NewText("sup2", model.CategorySupportive, model.RarityCommon, model.TextBody{Text: "s", Intensity: 1}),
		secret("s1"))
	d := NewDeck(store.NewMemoryStore(), cat, testDeckOptions(t, newClock()))
	d.UnlockSecretDeck()
	mustDraw(t, d)
	seen, cursor := d.SeenIDs(), d.Cursor()

	three := d.DrawFinalThree(model.OpenWhenSad)
	if len(three) != 3 {
		t.Fatalf("expected three cards, got %d", len(three))
	}
	ids := map[string]bool{}
	for _, card := range three {
		if card.Category != model.CategorySweet && card.Category != model.CategorySupportive {
			t.Fatalf("card %s outside allowed categories", card.ID)
		}
		ids[card.ID] = true
	}
	if len(ids) != 3 {
		t.Fatalf("expected distinct cards, got %v", ids)
	}
	if diff := cmp.Diff(seen, d.SeenIDs()); diff != "" || d.Cursor() != cursor {
		t.Fatalf("final three touched deck state")
	}

	if got := d.DrawFinalThree(model.OpenWhenNeedLaugh); len(got) != 2 {
		t.Fatalf("expected the two funny cards, got %d", len(got))
	}
}

func TestUnparsablePreferencesFallBackToDefaults(t *testing.T) {
	kv := store.NewMemoryStore()
	_ = kv.Set(map[string]string{
		keySeenIDs:        "not json",
		keySecretUnlocked: "maybe",
		keySecretProgress: "-4",
		keyDailyMode:      "yes please",
		keyMood:           "grumpy",
	})

	d := NewDeck(kv, fiveCards(t), testDeckOptions(t, newClock()))
	if len(d.SeenIDs()) != 0 || d.SecretUnlocked() || d.SecretProgress() != 0 || d.DailyMode() {
		t.Fatalf("expected defaults, got seen=%v unlocked=%v progress=%d daily=%v",
			d.SeenIDs(), d.SecretUnlocked(), d.SecretProgress(), d.DailyMode())
	}
	if d.Filter().Kind != model.FilterNone {
		t.Fatalf("expected no filter for unknown mood, got %+v", d.Filter())
	}
	mustDraw(t, d)
}

func mapKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
