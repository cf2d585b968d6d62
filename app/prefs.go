package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"compliment-deck/store"
)

const (
	keyFavorites        = "favorites"
	keySecretUnlocked   = "secret_unlocked"
	keySecretProgress   = "secret_progress"
	keySeenIDs          = "seen_ids"
	keyDeckEndShown     = "deck_end_shown"
	keySoundMuted       = "sound_muted"
	keyReasonsLogged    = "reasons_logged"
	keyLovePoints       = "love_points"
	keyLoveComplete     = "love_complete"
	keyUnlockedThemes   = "unlocked_themes"
	keyDailyMode        = "daily_mode"
	keyDailyDrawsPrefix = "daily_draws:"
	keyTheme            = "theme"
	keyMood             = "mood"
	keyOpenWhen         = "open_when"
)

// keyLister is implemented by stores that can enumerate keys.
type keyLister interface {
	Keys(prefix string) []string
}

func dailyKey(date string) string {
	return keyDailyDrawsPrefix + date
}

// prefs decodes typed values from the KV. Missing or unparsable values fall
// back to the given default and never surface as errors.
type prefs struct {
	kv  store.KV
	log *zap.Logger
}

func (p prefs) getString(key, def string) string {
	v, ok := p.kv.Get(key)
	if !ok {
		return def
	}
	return v
}

func (p prefs) getBool(key string, def bool) bool {
	v, ok := p.kv.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		p.log.Warn("unparsable bool preference, using default", zap.String("key", key), zap.String("value", v), zap.Bool("default", def))
		return def
	}
	return b
}

func (p prefs) getInt(key string, def int) int {
	v, ok := p.kv.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		p.log.Warn("unparsable int preference, using default", zap.String("key", key), zap.String("value", v), zap.Int("default", def))
		return def
	}
	return n
}

func (p prefs) getStrings(key string) []string {
	v, ok := p.kv.Get(key)
	if !ok || strings.TrimSpace(v) == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		p.log.Warn("unparsable list preference, using empty list", zap.String("key", key), zap.Error(err))
		return []string{}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// commit writes one logical transition. Write failures are logged and
// otherwise ignored; the in-memory state stays authoritative until next load.
func (p prefs) commit(op string, b batch) {
	if len(b) == 0 {
		return
	}
	if err := p.kv.Set(b); err != nil {
		p.log.Error("persist failed", zap.String("op", op), zap.Int("keys", len(b)), zap.Error(err))
	}
}

func (p prefs) remove(op string, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := p.kv.Delete(keys...); err != nil {
		p.log.Error("delete failed", zap.String("op", op), zap.Strings("keys", keys), zap.Error(err))
	}
}

// batch collects the keys of one transition.
type batch map[string]string

func (b batch) putBool(key string, v bool) {
	b[key] = strconv.FormatBool(v)
}

func (b batch) putInt(key string, v int) {
	b[key] = strconv.Itoa(v)
}

func (b batch) putString(key, v string) {
	b[key] = v
}

func (b batch) putStrings(key string, v []string) {
	if v == nil {
		v = []string{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	b[key] = string(data)
}
