package engagement

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// EvolutionLevels is the avatar evolution table, indexed by level.
var EvolutionLevels = []domain.EvolutionLevel{
	{Level: 0, Name: "Novato", MinStreak: 0},
	{Level: 1, Name: "Aprendiz", MinStreak: 5},
	{Level: 2, Name: "Guerrero", MinStreak: 10},
	{Level: 3, Name: "Héroe", MinStreak: 20},
	{Level: 4, Name: "Leyenda", MinStreak: 35},
	{Level: 5, Name: "Maestro", MinStreak: 50},
	{Level: 6, Name: "Gran Maestro", MinStreak: 75},
	{Level: 7, Name: "Épico", MinStreak: 100},
	{Level: 8, Name: "Legendario", MinStreak: 150},
	{Level: 9, Name: "Mítico", MinStreak: 200},
	{Level: 10, Name: "Divino", MinStreak: 300},
}

// tier is the raw evolution index floor(streak/5), unclamped.
func tier(streak int) int {
	if streak < 0 {
		return 0
	}
	return streak / 5
}

// LevelFor maps a streak to its evolution level: the table entry at index
// floor(streak/5), clamped to the last entry.
func LevelFor(streak int) domain.EvolutionLevel {
	idx := tier(streak)
	if idx >= len(EvolutionLevels) {
		idx = len(EvolutionLevels) - 1
	}
	return EvolutionLevels[idx]
}

// EvolutionProgress returns progress (0 to 100) toward the next evolution level.
// The base of the current tier is tier*5; at the top level it is always 100.
func EvolutionProgress(streak int) float64 {
	cur := LevelFor(streak).Level
	if cur+1 >= len(EvolutionLevels) {
		return 100
	}
	next := EvolutionLevels[cur+1]
	base := cur * 5
	span := next.MinStreak - base
	if span <= 0 {
		return 100
	}
	pct := float64(streak-base) / float64(span) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// EvolutionTriggered reports whether moving from lastSync to streak crosses
// into a higher tier.
func EvolutionTriggered(lastSync, streak int) bool {
	return streak > 0 && tier(streak) > tier(lastSync)
}

// DefaultAvatar is used until the user customizes one.
func DefaultAvatar() domain.Avatar {
	return domain.Avatar{Name: "Hero", Style: "adventurer", Seed: "Lucky"}
}

// AvatarPatch holds the fields UpdateAvatar should change. Empty strings
// leave the stored value alone.
type AvatarPatch struct {
	Name          string                     `json:"name"`
	Style         string                     `json:"style"`
	Seed          string                     `json:"seed"`
	Customization domain.AvatarCustomization `json:"customization"`
}

// MaxAvatarPresets is how many presets are kept; older ones are dropped.
const MaxAvatarPresets = 10

// Option pools for Randomize. An empty string leaves the option unset.
var (
	randomStyles      = []string{"adventurer", "avataaars", "open-peeps", "personas", "micah", "croodles", "miniavs"}
	randomHairColors  = []string{"black", "brown", "blonde", "red", "gray", "blue", "green", "purple", "pink"}
	randomEyeColors   = []string{"brown", "blue", "green", "gray", "amber"}
	randomAccessories = []string{"", "glasses", "sunglasses", "mustache", "beard", "earring", "hat", "mask"}
	randomClothing    = []string{"", "blazer", "hoodie", "sweater", "collared", "tank-top", "dress-shirt"}
	randomBackgrounds = []string{"", "b6e3f4", "c0aede", "ffd5dc", "ffdfbf", "d1d4f9", "d8d2db", "e8dff7"}
	randomMoods       = []string{"", "default", "happy", "surprised", "sad", "angry", "confident", "sleepy"}
)

// AvatarService is the avatar leveling view. It reads the streak and keeps
// the last acknowledged streak, the avatar record and saved presets.
type AvatarService struct {
	store    domain.Store
	notifier domain.Notifier
	rng      *rand.Rand
	log      zerolog.Logger
}

// NewAvatarService creates an avatar service.
func NewAvatarService(store domain.Store, notifier domain.Notifier, logger zerolog.Logger) *AvatarService {
	return &AvatarService{
		store:    store,
		notifier: notifier,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      logger.With().Str("component", "avatar").Logger(),
	}
}

// SetRand replaces the random source used by Randomize.
func (a *AvatarService) SetRand(rng *rand.Rand) {
	if rng != nil {
		a.rng = rng
	}
}

// Status returns the avatar view for the stored streak.
func (a *AvatarService) Status() domain.AvatarStatus {
	streak := a.streak()
	return domain.AvatarStatus{
		Streak:    streak,
		Level:     LevelFor(streak),
		Progress:  EvolutionProgress(streak),
		Triggered: EvolutionTriggered(a.lastSync(), streak),
	}
}

// CheckEvolution returns the current status and notifies when an
// unacknowledged evolution is pending.
func (a *AvatarService) CheckEvolution() domain.AvatarStatus {
	st := a.Status()
	if st.Triggered {
		a.log.Info().Int("streak", st.Streak).Str("level", st.Level.Name).Msg("avatar evolved")
		a.notifier.Notify(fmt.Sprintf("¡Tu avatar ha evolucionado a %s! 🦸", st.Level.Name),
			domain.NotifySuccess, domain.NotifyOptions{Duration: 4 * time.Second})
	}
	return st
}

// AcknowledgeEvolution records that the evolution for the current streak
// has been shown. Returns the acknowledged streak.
func (a *AvatarService) AcknowledgeEvolution() int {
	streak := a.streak()
	a.store.Set(KeyLastAvatarUpdate, streak)
	return streak
}

// Avatar returns the stored avatar or the default one.
func (a *AvatarService) Avatar() domain.Avatar {
	av := DefaultAvatar()
	a.store.Get(KeyAvatar, &av)
	return av
}

// UpdateAvatar merges patch into the stored avatar.
func (a *AvatarService) UpdateAvatar(now time.Time, patch AvatarPatch) domain.Avatar {
	av := a.Avatar()
	if patch.Name != "" {
		av.Name = patch.Name
	}
	if patch.Style != "" {
		av.Style = patch.Style
	}
	if patch.Seed != "" {
		av.Seed = patch.Seed
	}
	mergeCustomization(&av.Customization, patch.Customization)
	av.LastUpdate = now.UnixMilli()
	a.store.Set(KeyAvatar, av)
	return av
}

// Randomize applies a random style and customization. The name and seed
// are kept; pet and effect are cleared.
func (a *AvatarService) Randomize(now time.Time) domain.Avatar {
	av := a.Avatar()
	if av.Name == "" {
		av.Name = DefaultAvatar().Name
	}
	av.Style = a.pick(randomStyles)
	av.Customization = domain.AvatarCustomization{
		HairColor:  a.pick(randomHairColors),
		EyeColor:   a.pick(randomEyeColors),
		Accessory:  a.pick(randomAccessories),
		Clothing:   a.pick(randomClothing),
		Background: a.pick(randomBackgrounds),
		Mood:       a.pick(randomMoods),
	}
	av.LastUpdate = now.UnixMilli()
	a.store.Set(KeyAvatar, av)

	a.log.Debug().Str("style", av.Style).Msg("random avatar applied")
	a.notifier.Notify("¡Avatar aleatorio aplicado! 🎲", domain.NotifySuccess,
		domain.NotifyOptions{Duration: 4 * time.Second})
	return av
}

func (a *AvatarService) pick(pool []string) string {
	return pool[a.rng.Intn(len(pool))]
}

// Presets returns the saved presets, oldest first.
func (a *AvatarService) Presets() []domain.AvatarPreset {
	var presets []domain.AvatarPreset
	if !a.store.Get(KeyAvatarPresets, &presets) {
		return nil
	}
	return presets
}

// SavePreset stores the current avatar as a preset named name, or after
// the avatar when name is empty. Only the newest MaxAvatarPresets are kept.
func (a *AvatarService) SavePreset(now time.Time, name string) domain.AvatarPreset {
	av := a.Avatar()
	if name == "" {
		name = av.Name
	}
	p := domain.AvatarPreset{
		ID:        uuid.New().String(),
		Name:      name,
		Avatar:    av,
		Timestamp: now.UnixMilli(),
	}

	presets := append(a.Presets(), p)
	presets = TrimPresets(presets)
	a.store.Set(KeyAvatarPresets, presets)

	a.log.Info().Str("preset", p.ID).Int("count", len(presets)).Msg("avatar preset saved")
	a.notifier.Notify("¡Preset guardado! ⭐", domain.NotifySuccess,
		domain.NotifyOptions{Duration: 4 * time.Second})
	return p
}

// LoadPreset makes the preset's avatar current.
func (a *AvatarService) LoadPreset(now time.Time, id string) (domain.Avatar, error) {
	for _, p := range a.Presets() {
		if p.ID != id {
			continue
		}
		av := p.Avatar
		av.LastUpdate = now.UnixMilli()
		a.store.Set(KeyAvatar, av)
		a.notifier.Notify(fmt.Sprintf("¡Preset \"%s\" cargado! 📁", p.Name), domain.NotifySuccess,
			domain.NotifyOptions{Duration: 4 * time.Second})
		return av, nil
	}
	a.notifier.Notify("Preset no encontrado", domain.NotifyError, domain.NotifyOptions{})
	return a.Avatar(), fmt.Errorf("preset %q: %w", id, domain.ErrPresetNotFound)
}

// TrimPresets keeps the newest MaxAvatarPresets entries of presets.
func TrimPresets(presets []domain.AvatarPreset) []domain.AvatarPreset {
	if len(presets) > MaxAvatarPresets {
		presets = presets[len(presets)-MaxAvatarPresets:]
	}
	return presets
}

func mergeCustomization(dst *domain.AvatarCustomization, src domain.AvatarCustomization) {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&dst.HairColor, src.HairColor},
		{&dst.EyeColor, src.EyeColor},
		{&dst.Accessory, src.Accessory},
		{&dst.Clothing, src.Clothing},
		{&dst.Background, src.Background},
		{&dst.Mood, src.Mood},
		{&dst.Pet, src.Pet},
		{&dst.Effect, src.Effect},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
}

func (a *AvatarService) streak() int {
	var s int
	a.store.Get(KeyStreak, &s)
	return max(s, 0)
}

func (a *AvatarService) lastSync() int {
	var s int
	a.store.Get(KeyLastAvatarUpdate, &s)
	return s
}
