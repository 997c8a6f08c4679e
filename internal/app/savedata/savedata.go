// Package savedata exports and imports a user's complete save as a
// versioned JSON envelope.
package savedata

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/app/account"
	"github.com/rachamuffin/rachamuffin/internal/app/engagement"
	"github.com/rachamuffin/rachamuffin/internal/app/wallet"
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// Envelope versions.
const (
	VersionLegacy  = "2.0" // browser export, keys carry the "rachamuffin_" prefix
	VersionCurrent = "3"
)

const legacyPrefix = "rachamuffin_"

// Envelope is the export file format.
type Envelope struct {
	Version   string                     `json:"version"`
	Timestamp time.Time                  `json:"timestamp"`
	Data      map[string]json.RawMessage `json:"data"`
}

// RawStore is a Store that can move undecoded values.
type RawStore interface {
	domain.Store
	GetRaw(key string) (json.RawMessage, bool)
	SetRaw(key string, raw json.RawMessage) bool
}

// knownKeys are the keys an import may write.
var knownKeys = map[string]bool{
	engagement.KeyStreak:           true,
	wallet.CoinsKey:                true,
	engagement.KeyLastCheck:        true,
	engagement.KeyStats:            true,
	engagement.KeyHistory:          true,
	engagement.KeyChallenges:       true,
	engagement.KeyAvatar:           true,
	engagement.KeyLastAvatarUpdate: true,
	engagement.KeyAvatarPresets:    true,
	account.KeyUsers:               true,
	account.KeyCurrentUser:         true,
}

// ImportResult reports what an import wrote.
type ImportResult struct {
	Written []string `json:"written"`
	Skipped []string `json:"skipped"`
}

// Service exports and imports saves.
type Service struct {
	store            RawStore
	initialExpToNext int
	log              zerolog.Logger
}

// NewService creates a save data service.
func NewService(store RawStore, initialExpToNext int, logger zerolog.Logger) *Service {
	if initialExpToNext <= 0 {
		initialExpToNext = engagement.DefaultRules().InitialExpToNext
	}
	return &Service{
		store:            store,
		initialExpToNext: initialExpToNext,
		log:              logger.With().Str("component", "savedata").Logger(),
	}
}

// Export collects every key of the save domain.
func (s *Service) Export(now time.Time) Envelope {
	env := Envelope{Version: VersionCurrent, Timestamp: now.UTC(), Data: map[string]json.RawMessage{}}
	for _, k := range s.store.Keys() {
		if raw, ok := s.store.GetRaw(k); ok {
			env.Data[k] = raw
		}
	}
	return env
}

// Decode parses an envelope.
func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("decode save: %w", domain.ErrInvalidSaveData)
	}
	return env, nil
}

// Import validates env and writes its keys. Nothing is written when any
// value fails validation. Unknown keys are skipped.
func (s *Service) Import(env Envelope) (ImportResult, error) {
	var res ImportResult
	if env.Version != VersionLegacy && env.Version != VersionCurrent {
		return res, fmt.Errorf("save version %q: %w", env.Version, domain.ErrUnsupportedVersion)
	}
	if env.Data == nil {
		return res, fmt.Errorf("save has no data: %w", domain.ErrInvalidSaveData)
	}

	pending := map[string]json.RawMessage{}
	for k, raw := range env.Data {
		key := k
		if env.Version == VersionLegacy {
			if !strings.HasPrefix(k, legacyPrefix) {
				res.Skipped = append(res.Skipped, k)
				continue
			}
			key = strings.TrimPrefix(k, legacyPrefix)
		}
		if !knownKeys[key] {
			res.Skipped = append(res.Skipped, k)
			continue
		}

		clean, err := s.upgrade(key, raw)
		if err != nil {
			return ImportResult{}, err
		}
		pending[key] = clean
	}

	for k, raw := range pending {
		if s.store.SetRaw(k, raw) {
			res.Written = append(res.Written, k)
		}
	}
	s.log.Info().Str("version", env.Version).Int("written", len(res.Written)).Int("skipped", len(res.Skipped)).Msg("save imported")
	return res, nil
}

// upgrade validates one value and brings it to the current schema.
func (s *Service) upgrade(key string, raw json.RawMessage) (json.RawMessage, error) {
	invalid := func(err error) error {
		return fmt.Errorf("key %q: %v: %w", key, err, domain.ErrInvalidSaveData)
	}

	switch key {
	case engagement.KeyStreak, wallet.CoinsKey, engagement.KeyLastAvatarUpdate:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, invalid(err)
		}
		return json.Marshal(max(n, 0))

	case engagement.KeyLastCheck:
		var day string
		if err := json.Unmarshal(raw, &day); err != nil {
			return nil, invalid(err)
		}
		return json.Marshal(day)

	case engagement.KeyStats:
		st := domain.NewGamificationStats(s.initialExpToNext)
		st.SchemaVersion = 0
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, invalid(err)
		}
		migrated, err := engagement.MigrateStats(st, s.initialExpToNext)
		if err != nil {
			return nil, err
		}
		return json.Marshal(migrated)

	case engagement.KeyHistory:
		var h []domain.StreakHistoryEntry
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, invalid(err)
		}
		return json.Marshal(h)

	case engagement.KeyChallenges:
		var c []domain.DailyChallenge
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, invalid(err)
		}
		return json.Marshal(c)

	case engagement.KeyAvatar:
		av := engagement.DefaultAvatar()
		if err := json.Unmarshal(raw, &av); err != nil {
			return nil, invalid(err)
		}
		return json.Marshal(av)

	case engagement.KeyAvatarPresets:
		var presets []domain.AvatarPreset
		if err := json.Unmarshal(raw, &presets); err != nil {
			return nil, invalid(err)
		}
		return json.Marshal(engagement.TrimPresets(presets))
	}

	// Account records keep their legacy shapes; the account service reads both.
	if !json.Valid(raw) {
		return nil, invalid(fmt.Errorf("not JSON"))
	}
	return raw, nil
}
