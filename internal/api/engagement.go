package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rachamuffin/rachamuffin/internal/app/engagement"
	"github.com/rachamuffin/rachamuffin/internal/app/savedata"
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// ─── Streak & Missions ──────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var snap engagement.Snapshot
	s.locked(func() { snap = s.svc.Engine.Status() })
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCompleteMission(w http.ResponseWriter, r *http.Request) {
	var res engagement.Completion
	s.locked(func() { res = s.svc.Engine.CompleteMission() })
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCheckStreak(w http.ResponseWriter, r *http.Request) {
	var res engagement.BreakResult
	s.locked(func() { res = s.svc.Engine.CheckStreak() })
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var ok bool
	s.locked(func() { ok = s.svc.Reset() })
	if !ok {
		writeError(w, http.StatusInternalServerError, "reset incomplete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// ─── Achievements & Challenges ──────────────────────────────────────────────

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	var list []domain.AchievementStatus
	s.locked(func() { list = s.svc.Engine.Game.Achievements() })
	writeJSON(w, http.StatusOK, map[string]any{"achievements": list})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var hist []domain.StreakHistoryEntry
	s.locked(func() { hist = s.svc.Engine.Game.History() })
	writeJSON(w, http.StatusOK, map[string]any{"history": hist})
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	var list []domain.DailyChallenge
	s.locked(func() { list = s.svc.Engine.Challenges() })
	writeJSON(w, http.StatusOK, map[string]any{"challenges": list})
}

type progressRequest struct {
	Increment int `json:"increment"`
}

func (s *Server) handleChallengeProgress(w http.ResponseWriter, r *http.Request) {
	req := progressRequest{Increment: 1}
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		res engagement.ChallengeResult
		err error
	)
	s.locked(func() { res, err = s.svc.Engine.ProgressChallenge(chi.URLParam(r, "id"), req.Increment) })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Avatar ─────────────────────────────────────────────────────────────────

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	var (
		status  domain.AvatarStatus
		profile domain.Avatar
	)
	s.locked(func() {
		status = s.svc.Engine.Avatar.Status()
		profile = s.svc.Engine.Avatar.Avatar()
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "avatar": profile})
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	var patch engagement.AvatarPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	var av domain.Avatar
	s.locked(func() { av = s.svc.Engine.Avatar.UpdateAvatar(s.svc.Engine.Clock().Now(), patch) })
	writeJSON(w, http.StatusOK, av)
}

func (s *Server) handleAvatarAck(w http.ResponseWriter, r *http.Request) {
	var streak int
	s.locked(func() { streak = s.svc.Engine.Avatar.AcknowledgeEvolution() })
	writeJSON(w, http.StatusOK, map[string]int{"acknowledged": streak})
}

func (s *Server) handleRandomAvatar(w http.ResponseWriter, r *http.Request) {
	var av domain.Avatar
	s.locked(func() { av = s.svc.Engine.Avatar.Randomize(s.svc.Engine.Clock().Now()) })
	writeJSON(w, http.StatusOK, av)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	var presets []domain.AvatarPreset
	s.locked(func() { presets = s.svc.Engine.Avatar.Presets() })
	writeJSON(w, http.StatusOK, map[string]any{"presets": orEmpty(presets)})
}

type presetRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var p domain.AvatarPreset
	s.locked(func() { p = s.svc.Engine.Avatar.SavePreset(s.svc.Engine.Clock().Now(), req.Name) })
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	var (
		av  domain.Avatar
		err error
	)
	s.locked(func() { av, err = s.svc.Engine.Avatar.LoadPreset(s.svc.Engine.Clock().Now(), chi.URLParam(r, "id")) })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

// ─── Coins ──────────────────────────────────────────────────────────────────

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	var (
		balance int
		ledger  []domain.LedgerEntry
		err     error
	)
	s.locked(func() {
		balance = s.svc.Engine.Wallet.Balance()
		ledger, err = s.svc.Engine.Wallet.History(limit)
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("read coin ledger")
	}
	if ledger == nil {
		ledger = []domain.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"coins": balance, "ledger": ledger})
}

type spendRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	var req spendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		balance  int
		unlocked []domain.Achievement
		err      error
	)
	s.locked(func() { balance, unlocked, err = s.svc.Engine.Spend(req.Amount, req.Reason) })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"coins": balance, "unlocked": orEmpty(unlocked)})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var unlocked []domain.Achievement
	s.locked(func() { unlocked = s.svc.Engine.Share() })
	writeJSON(w, http.StatusOK, map[string]any{"unlocked": orEmpty(unlocked)})
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Inbox.Pending(queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Inbox.MarkShown(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Save Data ──────────────────────────────────────────────────────────────

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var env savedata.Envelope
	s.locked(func() { env = s.svc.SaveData.Export(s.svc.Engine.Clock().Now()) })
	w.Header().Set("Content-Disposition", `attachment; filename="rachamuffin-backup.json"`)
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var env savedata.Envelope
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if env, err = savedata.Decode(body); err != nil {
		writeDomainError(w, err)
		return
	}

	var res savedata.ImportResult
	s.locked(func() { res, err = s.svc.SaveData.Import(env) })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
