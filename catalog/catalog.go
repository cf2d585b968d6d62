// Package catalog holds the static card collection and the pure lookups over it.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"compliment-deck/model"
)

var ErrDuplicateCardID = errors.New("duplicate card id")

var moodCategories = map[model.Mood][]model.Category{
	model.MoodSweet:      {model.CategorySweet},
	model.MoodFunny:      {model.CategoryFunny},
	model.MoodSupportive: {model.CategorySupportive},
	model.MoodFlirty:     {model.CategorySpicyLite},
}

var openWhenCategories = map[model.OpenWhen][]model.Category{
	model.OpenWhenSad:       {model.CategorySupportive, model.CategorySweet},
	model.OpenWhenStressed:  {model.CategorySupportive, model.CategoryFunny},
	model.OpenWhenMissMe:    {model.CategorySweet, model.CategorySpicyLite},
	model.OpenWhenNeedLaugh: {model.CategoryFunny},
	model.OpenWhenCantSleep: {model.CategorySweet, model.CategorySupportive},
	model.OpenWhenProud:     {model.CategorySweet, model.CategorySupportive},
}

// Catalog is an immutable, validated card collection.
type Catalog struct {
	regular []model.Card
	secret  []model.Card
	byID    map[string]int
	all     []model.Card
}

// New validates cards and builds a catalog. Order of definition is kept.
func New(cards ...model.Card) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(cards))}
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCardID, card.ID)
		}
		c.byID[card.ID] = len(c.all)
		c.all = append(c.all, card)
		if card.Category == model.CategorySecret {
			c.secret = append(c.secret, card)
		} else {
			c.regular = append(c.regular, card)
		}
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtinCards()...)
	if err != nil {
		panic("catalog: built-in cards are invalid: " + err.Error())
	}
	return c
}

// Len is the total number of cards, secret included.
func (c *Catalog) Len() int {
	return len(c.all)
}

// Available returns every non-secret card, plus the secret cards appended at
// the end when secretUnlocked is true.
func (c *Catalog) Available(secretUnlocked bool) []model.Card {
	n := len(c.regular)
	if secretUnlocked {
		n += len(c.secret)
	}
	out := make([]model.Card, 0, n)
	out = append(out, c.regular...)
	if secretUnlocked {
		out = append(out, c.secret...)
	}
	return out
}

// ByID looks a card up across the whole catalog, secret cards included.
func (c *Catalog) ByID(id string) (model.Card, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return model.Card{}, false
	}
	return c.all[idx], true
}

// Pool returns the available cards narrowed by filter.
func (c *Catalog) Pool(secretUnlocked bool, filter model.Filter) []model.Card {
	available := c.Available(secretUnlocked)
	if filter.Kind == model.FilterOpenWhen {
		if allowed, ok := openWhenCategories[filter.OpenWhen]; ok {
			return forOpenWhen(available, filter.OpenWhen, allowed)
		}
	}
	allowed, ok := FilterCategories(filter)
	if !ok {
		return available
	}
	return byCategory(available, allowed)
}

// FinalThreePool is the whole non-secret catalog narrowed to the key's allowed
// categories and the cards tagged with the key. Unknown keys yield an empty pool.
func (c *Catalog) FinalThreePool(key model.OpenWhen) []model.Card {
	allowed, ok := openWhenCategories[key]
	if !ok {
		return nil
	}
	return forOpenWhen(c.regular, key, allowed)
}

// FilterCategories reports the category set a filter narrows to. ok is false
// for the empty filter, which does not narrow.
func FilterCategories(filter model.Filter) ([]model.Category, bool) {
	switch filter.Kind {
	case model.FilterMood:
		cats, ok := moodCategories[filter.Mood]
		return cats, ok
	case model.FilterOpenWhen:
		cats, ok := openWhenCategories[filter.OpenWhen]
		return cats, ok
	}
	return nil, false
}

// IDs maps cards to their ids, keeping order.
func IDs(cards []model.Card) []string {
	ids := make([]string, len(cards))
	for i, card := range cards {
		ids[i] = card.ID
	}
	return ids
}

func byCategory(cards []model.Card, allowed []model.Category) []model.Card {
	out := make([]model.Card, 0, len(cards))
	for _, card := range cards {
		for _, cat := range allowed {
			if card.Category == cat {
				out = append(out, card)
				break
			}
		}
	}
	return out
}

// forOpenWhen keeps cards in an allowed category or tagged with the key.
func forOpenWhen(cards []model.Card, key model.OpenWhen, allowed []model.Category) []model.Card {
	out := make([]model.Card, 0, len(cards))
	for _, card := range cards {
		if slices.Contains(allowed, card.Category) || card.HasTag(string(key)) {
			out = append(out, card)
		}
	}
	return out
}
