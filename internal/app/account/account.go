// Package account manages local user profiles: registration, login, the
// current session and the streak type each user is tracking.
package account

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// Persisted keys.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Streak types and their display names.
const (
	TypeExercise   = "exercise"
	TypeStudy      = "study"
	TypeDiet       = "diet"
	TypeSmoking    = "smoking"
	TypeReading    = "reading"
	TypeMeditation = "meditation"
	TypeCustom     = "custom"
)

var streakTypeNames = map[string]string{
	TypeExercise:   "ejercicio",
	TypeStudy:      "estudio",
	TypeDiet:       "dieta saludable",
	TypeSmoking:    "dejar de fumar",
	TypeReading:    "lectura",
	TypeMeditation: "meditación",
}

// StreakTypes lists the selectable streak types.
func StreakTypes() []string {
	return []string{TypeExercise, TypeStudy, TypeDiet, TypeSmoking, TypeReading, TypeMeditation, TypeCustom}
}

// User is a stored profile.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	StreakType   string    `json:"streakType"`
	CustomStreak string    `json:"customStreak"`
	AvatarName   string    `json:"avatarName"`
	AvatarSeed   string    `json:"avatarSeed"`
	AvatarStyle  string    `json:"avatarStyle"`
	TriedTypes   []string  `json:"triedTypes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the public view of a user.
type Profile struct {
	Username     string    `json:"username"`
	StreakType   string    `json:"streakType"`
	CustomStreak string    `json:"customStreak,omitempty"`
	StreakName   string    `json:"streakName"`
	AvatarName   string    `json:"avatarName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile returns the public view of u.
func (u User) Profile() Profile {
	return Profile{
		Username:     u.Username,
		StreakType:   u.StreakType,
		CustomStreak: u.CustomStreak,
		StreakName:   StreakName(u.StreakType, u.CustomStreak),
		AvatarName:   u.AvatarName,
		CreatedAt:    u.CreatedAt,
	}
}

// StreakName returns the display name of a streak type.
func StreakName(streakType, custom string) string {
	if streakType == TypeCustom {
		if custom != "" {
			return custom
		}
		return "racha personalizada"
	}
	if n, ok := streakTypeNames[streakType]; ok {
		return n
	}
	return "racha"
}

// TypeRecorder is told when a user tries a streak type for the first time.
type TypeRecorder interface {
	RecordStreakTypeUsed(now time.Time) []domain.Achievement
}

// Service manages profiles stored under the "users" key.
type Service struct {
	store    domain.Store
	recorder TypeRecorder // optional
	notifier domain.Notifier
	clock    domain.Clock
	cost     int
	log      zerolog.Logger
}

// NewService creates an account service.
func NewService(store domain.Store, recorder TypeRecorder, notifier domain.Notifier, clock domain.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Service{
		store:    store,
		recorder: recorder,
		notifier: notifier,
		clock:    clock,
		cost:     bcrypt.DefaultCost,
		log:      logger.With().Str("component", "account").Logger(),
	}
}

// SetHashCost changes the bcrypt cost for new password hashes.
func (s *Service) SetHashCost(cost int) {
	s.cost = cost
}

// Register creates a user and logs them in.
func (s *Service) Register(username, password string) (User, error) {
	username, password, err := validateCredentials(username, password)
	if err != nil {
		return User{}, err
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return User{}, domain.ErrPasswordTooShort
	}

	users := s.users()
	if _, exists := users[username]; exists {
		return User{}, fmt.Errorf("register %q: %w", username, domain.ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	u := User{
		Username:     username,
		PasswordHash: string(hash),
		StreakType:   TypeExercise,
		AvatarName:   username,
		AvatarSeed:   "Lucky",
		AvatarStyle:  "adventurer",
		TriedTypes:   []string{TypeExercise},
		CreatedAt:    now,
	}
	users[username] = u
	s.store.Set(KeyUsers, users)
	s.store.Set(KeyCurrentUser, username)

	if s.recorder != nil {
		s.recorder.RecordStreakTypeUsed(now)
	}
	s.log.Info().Str("user", username).Msg("user registered")
	s.notify("¡Usuario registrado exitosamente!", domain.NotifySuccess)
	return u, nil
}

// Login checks the password and makes username the current user. Profiles
// saved with the old base64 encoding are upgraded to bcrypt.
func (s *Service) Login(username, password string) (User, error) {
	username, password, err := validateCredentials(username, password)
	if err != nil {
		return User{}, err
	}

	users := s.users()
	u, ok := users[username]
	if !ok || !s.checkPassword(&u, password) {
		s.log.Warn().Str("user", username).Msg("login failed")
		return User{}, domain.ErrInvalidCredentials
	}
	u.Username = username
	users[username] = u
	s.store.Set(KeyUsers, users)
	s.store.Set(KeyCurrentUser, username)

	s.notify(fmt.Sprintf("¡Bienvenido de vuelta, %s!", username), domain.NotifySuccess)
	return u, nil
}

// Logout ends the session.
func (s *Service) Logout() error {
	if _, err := s.Current(); err != nil {
		return err
	}
	s.store.Remove(KeyCurrentUser)
	s.notify("Sesión cerrada", domain.NotifyInfo)
	return nil
}

// Current returns the logged-in user.
func (s *Service) Current() (User, error) {
	var name string
	if !s.store.Get(KeyCurrentUser, &name) {
		// Older saves hold the whole profile.
		var legacy struct {
			Username   string `json:"username"`
			AvatarName string `json:"avatarName"`
		}
		if !s.store.Get(KeyCurrentUser, &legacy) {
			return User{}, domain.ErrNotLoggedIn
		}
		name = legacy.Username
		if name == "" {
			name = legacy.AvatarName
		}
	}

	u, ok := s.users()[name]
	if !ok {
		return User{}, domain.ErrNotLoggedIn
	}
	u.Username = name
	return u, nil
}

// SetStreakType changes what the current user is tracking. A type the
// user never tried before counts toward the variety achievement.
func (s *Service) SetStreakType(streakType, custom string) (User, []domain.Achievement, error) {
	u, err := s.Current()
	if err != nil {
		return User{}, nil, err
	}
	if !slices.Contains(StreakTypes(), streakType) {
		return User{}, nil, fmt.Errorf("streak type %q: %w", streakType, domain.ErrUnknownStreakType)
	}
	custom = strings.TrimSpace(custom)
	if streakType == TypeCustom && custom == "" {
		return User{}, nil, domain.ErrMissingCustomText
	}
	if streakType != TypeCustom {
		custom = ""
	}

	u.StreakType = streakType
	u.CustomStreak = custom

	var unlocked []domain.Achievement
	if !slices.Contains(u.TriedTypes, streakType) {
		u.TriedTypes = append(u.TriedTypes, streakType)
		if s.recorder != nil {
			unlocked = s.recorder.RecordStreakTypeUsed(s.clock.Now())
		}
	}

	users := s.users()
	users[u.Username] = u
	s.store.Set(KeyUsers, users)

	s.notify("¡Configuración guardada exitosamente!", domain.NotifySuccess)
	return u, unlocked, nil
}

// StreakName returns the current user's streak display name, or "racha"
// when nobody is logged in.
func (s *Service) StreakName() string {
	u, err := s.Current()
	if err != nil {
		return "racha"
	}
	return StreakName(u.StreakType, u.CustomStreak)
}

func (s *Service) users() map[string]User {
	users := map[string]User{}
	if !s.store.Get(KeyUsers, &users) {
		// Older saves hold the map as a JSON-encoded string.
		var encoded string
		if s.store.Get(KeyUsers, &encoded) {
			if err := json.Unmarshal([]byte(encoded), &users); err != nil {
				s.log.Warn().Err(err).Msg("unreadable user list")
			}
		}
	}
	if users == nil {
		users = map[string]User{}
	}
	return users
}

// checkPassword verifies password and upgrades a legacy hash in place.
func (s *Service) checkPassword(u *User, password string) bool {
	if strings.HasPrefix(u.PasswordHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
	}

	legacy := base64.StdEncoding.EncodeToString([]byte(password))
	if subtle.ConstantTimeCompare([]byte(legacy), []byte(u.PasswordHash)) != 1 {
		return false
	}
	if hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost); err == nil {
		u.PasswordHash = string(hash)
		s.log.Info().Str("user", u.Username).Msg("password hash upgraded")
	}
	return true
}

func (s *Service) notify(msg string, level domain.NotifyLevel) {
	if s.notifier != nil {
		s.notifier.Notify(msg, level, domain.NotifyOptions{})
	}
}

func validateCredentials(username, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", "", domain.ErrMissingFields
	}
	if !emailRe.MatchString(username) && utf8.RuneCountInString(username) < minUsernameLen {
		return "", "", domain.ErrInvalidUsername
	}
	return username, password, nil
}
