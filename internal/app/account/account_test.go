package account_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rachamuffin/rachamuffin/internal/app/account"
	"github.com/rachamuffin/rachamuffin/internal/domain"
	"github.com/rachamuffin/rachamuffin/internal/infra/sqlite"
)

type countingRecorder struct{ calls int }

func (r *countingRecorder) RecordStreakTypeUsed(time.Time) []domain.Achievement {
	r.calls++
	return nil
}

type nopNotifier struct{ last string }

func (n *nopNotifier) Notify(msg string, _ domain.NotifyLevel, _ domain.NotifyOptions) string {
	n.last = msg
	return "x"
}

func newService(t *testing.T) (*account.Service, *sqlite.Store, *countingRecorder, *nopNotifier) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := sqlite.NewStore(db, "", zerolog.Nop())
	rec := &countingRecorder{}
	notif := &nopNotifier{}
	svc := account.NewService(store, rec, notif, nil, zerolog.Nop())
	svc.SetHashCost(bcrypt.MinCost)
	return svc, store, rec, notif
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.Register("", "secret1")
	assert.ErrorIs(t, err, domain.ErrMissingFields)
	_, err = svc.Register("ab", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
	_, err = svc.Register("ana", "12345")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	// An email is valid regardless of length.
	_, err = svc.Register("a@b.co", "secret1")
	assert.NoError(t, err)
}

func TestRegister_LogsInAndHashes(t *testing.T) {
	svc, store, rec, notif := newService(t)

	u, err := svc.Register("  ana  ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, account.TypeExercise, u.StreakType)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
	assert.Equal(t, 1, rec.calls, "default type counts as tried")
	assert.Equal(t, "¡Usuario registrado exitosamente!", notif.last)

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "ana", cur.Username)

	var name string
	require.True(t, store.Get(account.KeyCurrentUser, &name))
	assert.Equal(t, "ana", name)

	_, err = svc.Register("ana", "another1")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLogin(t *testing.T) {
	svc, _, _, notif := newService(t)
	_, err := svc.Register("ana", "secret1")
	require.NoError(t, err)
	require.NoError(t, svc.Logout())

	_, err = svc.Current()
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	assert.ErrorIs(t, svc.Logout(), domain.ErrNotLoggedIn)

	_, err = svc.Login("ana", "wrong12")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login("bob", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	u, err := svc.Login("ana", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, "¡Bienvenido de vuelta, ana!", notif.last)
}

func TestLogin_UpgradesLegacyPassword(t *testing.T) {
	svc, store, _, _ := newService(t)
	legacy := map[string]account.User{
		"luz": {PasswordHash: base64.StdEncoding.EncodeToString([]byte("secret1")), StreakType: "study"},
	}
	require.True(t, store.Set(account.KeyUsers, legacy))

	u, err := svc.Login("luz", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "estudio", svc.StreakName())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))

	require.NoError(t, svc.Logout())
	_, err = svc.Login("luz", "secret1")
	assert.NoError(t, err, "upgraded hash still verifies")
}

func TestCurrent_LegacyProfileObject(t *testing.T) {
	svc, store, _, _ := newService(t)
	_, err := svc.Register("ana", "secret1")
	require.NoError(t, err)
	require.True(t, store.Set(account.KeyCurrentUser, map[string]string{"avatarName": "ana"}))

	u, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
}

func TestSetStreakType(t *testing.T) {
	svc, _, rec, _ := newService(t)

	_, _, err := svc.SetStreakType(account.TypeReading, "")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

	_, err = svc.Register("ana", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ejercicio", svc.StreakName())

	_, _, err = svc.SetStreakType("juggling", "")
	assert.ErrorIs(t, err, domain.ErrUnknownStreakType)
	_, _, err = svc.SetStreakType(account.TypeCustom, "   ")
	assert.ErrorIs(t, err, domain.ErrMissingCustomText)

	u, _, err := svc.SetStreakType(account.TypeReading, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "", u.CustomStreak)
	assert.Equal(t, "lectura", svc.StreakName())
	assert.Equal(t, 2, rec.calls)

	// Switching back to a tried type does not count again.
	_, _, err = svc.SetStreakType(account.TypeExercise, "")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.calls)

	_, _, err = svc.SetStreakType(account.TypeCustom, "tocar guitarra")
	require.NoError(t, err)
	assert.Equal(t, "tocar guitarra", svc.StreakName())
	assert.Equal(t, 3, rec.calls)
}

func TestStreakName(t *testing.T) {
	assert.Equal(t, "dieta saludable", account.StreakName(account.TypeDiet, ""))
	assert.Equal(t, "dejar de fumar", account.StreakName(account.TypeSmoking, ""))
	assert.Equal(t, "meditación", account.StreakName(account.TypeMeditation, ""))
	assert.Equal(t, "racha personalizada", account.StreakName(account.TypeCustom, ""))
	assert.Equal(t, "racha", account.StreakName("other", ""))
}
