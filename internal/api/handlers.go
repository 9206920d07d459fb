package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lifexp-app/lifexp/internal/app/engagement"
	"github.com/lifexp-app/lifexp/internal/app/progression"
	"github.com/lifexp-app/lifexp/internal/domain"
)

const defaultHistoryLimit = 20

// ─── Users ──────────────────────────────────────────────────────────────────

type createUserRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := s.svc.CreateUser(r.Context(), req.Name, req.Timezone)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	completions, err := s.svc.History(r.Context(), userID(r), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if completions == nil {
		completions = []domain.Completion{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"completions": completions,
	})
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	f, err := parseTaskFilter(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	tasks, err := s.svc.ListTasks(r.Context(), userID(r), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
	})
}

func parseTaskFilter(r *http.Request) (domain.TaskFilter, error) {
	var f domain.TaskFilter
	q := r.URL.Query()
	if raw := q.Get("category"); raw != "" {
		c, err := domain.ParseStatCategory(raw)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	if raw := q.Get("difficulty"); raw != "" {
		d, err := domain.ParseDifficulty(raw)
		if err != nil {
			return f, err
		}
		f.Difficulty = &d
	}
	if raw := q.Get("isHabit"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, domain.InvalidArgument("isHabit", "must be true or false")
		}
		f.IsHabit = &b
	}
	return f, nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req domain.NewTask
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.svc.CreateTask(r.Context(), userID(r), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.GetTask(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req domain.TaskPatch
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.svc.UpdateTask(r.Context(), userID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTask(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	var req engagement.CompleteTaskInput
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.CompleteTask(r.Context(), userID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Quests ─────────────────────────────────────────────────────────────────

func (s *Server) handleTodayQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := s.svc.TodayQuests(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quests": quests,
	})
}

func (s *Server) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.CompleteQuest(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Calculators ────────────────────────────────────────────────────────────
// Stateless views of the progression engine.

func (s *Server) handleCalcXP(w http.ResponseWriter, r *http.Request) {
	var ev domain.CompletionEvent
	if !decodeBody(w, r, &ev) {
		return
	}
	xp, err := progression.ComputeTaskXP(ev)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"xp": xp,
	})
}

type levelResponse struct {
	domain.LevelInfo
	Title       string  `json:"title"`
	ProgressPct float64 `json:"progressPct"`
}

func (s *Server) handleCalcLevel(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("xp")
	xp, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid xp: must be an integer")
		return
	}
	info := progression.ComputeLevel(xp)
	writeJSON(w, http.StatusOK, levelResponse{
		LevelInfo:   info,
		Title:       progression.TitleForLevel(info.Level),
		ProgressPct: info.ProgressPct(),
	})
}
