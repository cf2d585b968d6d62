package model

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var (
	ErrEmptyCardID     = errors.New("card id must not be empty")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidRarity   = errors.New("invalid rarity")
	ErrInvalidKind     = errors.New("invalid card kind")
	ErrInvalidBody     = errors.New("card body does not match kind")
)

// Category partitions the catalog.
type Category string

const (
	CategorySweet      Category = "sweet"
	CategoryFunny      Category = "funny"
	CategorySupportive Category = "supportive"
	CategorySpicyLite  Category = "spicy-lite"
	CategorySecret     Category = "secret"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySweet, CategoryFunny, CategorySupportive, CategorySpicyLite, CategorySecret:
		return true
	}
	return false
}

// Rarity of a card.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityLegendary:
		return true
	}
	return false
}

// Kind discriminates the card variants.
type Kind string

const (
	KindText     Kind = "text"
	KindVoucher  Kind = "voucher"
	KindPlaylist Kind = "playlist"
)

// TextBody is the body of a plain compliment card.
type TextBody struct {
	Text      string   `json:"text"`
	Intensity int      `json:"intensity"`
	Emoji     string   `json:"emoji,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// VoucherBody is a redeemable voucher with one or more options.
type VoucherBody struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

// PlaylistBody points at a song.
type PlaylistBody struct {
	SongTitle string `json:"songTitle"`
	Artist    string `json:"artist"`
	Link      string `json:"link"`
}

// Card is a tagged variant: Kind says which body is set, the other two are nil.
type Card struct {
	ID       string        `json:"id"`
	Category Category      `json:"category"`
	Rarity   Rarity        `json:"rarity"`
	Kind     Kind          `json:"kind"`
	Text     *TextBody     `json:"text,omitempty"`
	Voucher  *VoucherBody  `json:"voucher,omitempty"`
	Playlist *PlaylistBody `json:"playlist,omitempty"`
}

// NewText builds a text card.
func NewText(id string, category Category, rarity Rarity, body TextBody) Card {
	return Card{ID: id, Category: category, Rarity: rarity, Kind: KindText, Text: &body}
}

// NewVoucher builds a voucher card.
func NewVoucher(id string, category Category, rarity Rarity, title string, options ...string) Card {
	return Card{
		ID:       id,
		Category: category,
		Rarity:   rarity,
		Kind:     KindVoucher,
		Voucher:  &VoucherBody{Title: title, Options: options},
	}
}

// NewPlaylist builds a playlist card.
func NewPlaylist(id string, category Category, rarity Rarity, song, artist, link string) Card {
	return Card{
		ID:       id,
		Category: category,
		Rarity:   rarity,
		Kind:     KindPlaylist,
		Playlist: &PlaylistBody{SongTitle: song, Artist: artist, Link: link},
	}
}

// Validate checks the shared fields and the variant invariants.
// HasTag reports whether a text card carries tag.
func (c Card) HasTag(tag string) bool {
	if c.Kind != KindText || c.Text == nil {
		return false
	}
	return slices.Contains(c.Text.Tags, tag)
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyCardID
	}
	if !c.Category.Valid() {
		return fmt.Errorf("%w: %q (card %s)", ErrInvalidCategory, c.Category, c.ID)
	}
	if !c.Rarity.Valid() {
		return fmt.Errorf("%w: %q (card %s)", ErrInvalidRarity, c.Rarity, c.ID)
	}

	switch c.Kind {
	case KindText:
		if c.Text == nil || c.Voucher != nil || c.Playlist != nil {
			return fmt.Errorf("%w: card %s", ErrInvalidBody, c.ID)
		}
		if strings.TrimSpace(c.Text.Text) == "" {
			return fmt.Errorf("%w: card %s has empty text", ErrInvalidBody, c.ID)
		}
		if c.Text.Intensity < 1 || c.Text.Intensity > 3 {
			return fmt.Errorf("%w: card %s intensity %d", ErrInvalidBody, c.ID, c.Text.Intensity)
		}
	case KindVoucher:
		if c.Voucher == nil || c.Text != nil || c.Playlist != nil {
			return fmt.Errorf("%w: card %s", ErrInvalidBody, c.ID)
		}
		if len(c.Voucher.Options) == 0 {
			return fmt.Errorf("%w: voucher %s has no options", ErrInvalidBody, c.ID)
		}
	case KindPlaylist:
		if c.Playlist == nil || c.Text != nil || c.Voucher != nil {
			return fmt.Errorf("%w: card %s", ErrInvalidBody, c.ID)
		}
		u, err := url.Parse(c.Playlist.Link)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: playlist %s has invalid link %q", ErrInvalidBody, c.ID, c.Playlist.Link)
		}
	default:
		return fmt.Errorf("%w: %q (card %s)", ErrInvalidKind, c.Kind, c.ID)
	}
	return nil
}

// Headline is the one-line summary shown in lists.
func (c Card) Headline() string {
	switch c.Kind {
	case KindText:
		if c.Text.Emoji != "" {
			return c.Text.Emoji + " " + c.Text.Text
		}
		return c.Text.Text
	case KindVoucher:
		return "Voucher: " + c.Voucher.Title
	case KindPlaylist:
		return fmt.Sprintf("%s by %s", c.Playlist.SongTitle, c.Playlist.Artist)
	}
	return c.ID
}

// ShareText is the plain-text rendering copied by the share action.
func (c Card) ShareText() string {
	switch c.Kind {
	case KindText:
		return c.Headline()
	case KindVoucher:
		lines := make([]string, 0, len(c.Voucher.Options)+1)
		lines = append(lines, "Voucher: "+c.Voucher.Title)
		for _, opt := range c.Voucher.Options {
			lines = append(lines, "- "+opt)
		}
		return strings.Join(lines, "\n")
	case KindPlaylist:
		return fmt.Sprintf("%s by %s\n%s", c.Playlist.SongTitle, c.Playlist.Artist, c.Playlist.Link)
	}
	return c.ID
}

// Mood is the coarse mood filter.
type Mood string

const (
	MoodAll        Mood = "all"
	MoodSweet      Mood = "sweet"
	MoodFunny      Mood = "funny"
	MoodSupportive Mood = "supportive"
	MoodFlirty     Mood = "flirty"
)

// Moods lists every mood in cycling order.
var Moods = []Mood{MoodAll, MoodSweet, MoodFunny, MoodSupportive, MoodFlirty}

func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

// OpenWhen names an "open when..." use case.
type OpenWhen string

const (
	OpenWhenSad       OpenWhen = "sad"
	OpenWhenStressed  OpenWhen = "stressed"
	OpenWhenMissMe    OpenWhen = "miss-me"
	OpenWhenNeedLaugh OpenWhen = "need-a-laugh"
	OpenWhenCantSleep OpenWhen = "cant-sleep"
	OpenWhenProud     OpenWhen = "proud"
)

// OpenWhens lists every open-when key in cycling order.
var OpenWhens = []OpenWhen{OpenWhenSad, OpenWhenStressed, OpenWhenMissMe, OpenWhenNeedLaugh, OpenWhenCantSleep, OpenWhenProud}

func (o OpenWhen) Valid() bool {
	for _, known := range OpenWhens {
		if o == known {
			return true
		}
	}
	return false
}

// FilterKind says which filter, if any, narrows the pool.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterMood
	FilterOpenWhen
)

// Filter holds at most one active narrowing. The zero value is "no filter".
type Filter struct {
	Kind     FilterKind
	Mood     Mood
	OpenWhen OpenWhen
}

// MoodFilter returns the filter for a mood. MoodAll is the empty filter.
func MoodFilter(m Mood) Filter {
	if m == MoodAll || m == "" {
		return Filter{}
	}
	return Filter{Kind: FilterMood, Mood: m}
}

// OpenWhenFilter returns the filter for an open-when key. The empty key is the empty filter.
func OpenWhenFilter(o OpenWhen) Filter {
	if o == "" {
		return Filter{}
	}
	return Filter{Kind: FilterOpenWhen, OpenWhen: o}
}

// CurrentMood reports the mood key to persist; MoodAll unless a mood filter is active.
func (f Filter) CurrentMood() Mood {
	if f.Kind == FilterMood {
		return f.Mood
	}
	return MoodAll
}

// CurrentOpenWhen reports the open-when key to persist, or "" when none is active.
func (f Filter) CurrentOpenWhen() OpenWhen {
	if f.Kind == FilterOpenWhen {
		return f.OpenWhen
	}
	return ""
}

func (f Filter) String() string {
	switch f.Kind {
	case FilterMood:
		return "mood:" + string(f.Mood)
	case FilterOpenWhen:
		return "open-when:" + string(f.OpenWhen)
	}
	return "all"
}

// Theme is a color theme key.
type Theme string

const (
	ThemeNone     Theme = ""
	ThemeBlush    Theme = "blush"
	ThemeLavender Theme = "lavender"
	ThemeNight    Theme = "night"
	ThemeSunset   Theme = "sunset"
)

// Themes lists every selectable theme; ThemeBlush is always unlocked.
var Themes = []Theme{ThemeBlush, ThemeLavender, ThemeNight, ThemeSunset}

func (t Theme) Valid() bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}
