package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/progression"
)

// maxImportBytes bounds an uploaded progression export.
const maxImportBytes = 4 << 20

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{Error: &apiError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode error response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"sessions": len(s.sessions.IDs()),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCurriculum(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.curriculum)
}

func (s *Server) handleSubjectProgress(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	if _, ok := s.curriculum.Subject(subject); !ok {
		s.respondError(w, http.StatusNotFound, "unknown_subject", "no such subject: "+subject)
		return
	}
	s.respondJSON(w, http.StatusOK, s.progress.GetSubjectProgress(r.Context(), subject))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	lesson, err := strconv.Atoi(chi.URLParam(r, "lesson"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_lesson", "lesson must be an integer")
		return
	}
	history, err := s.progress.History(r.Context(), subject, lesson)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, history)
}

// Sessions

type createSessionRequest struct {
	SubjectID string `json:"subjectId"`
	LessonID  int    `json:"lessonId"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	game.AnswerOutcome
	View game.View `json:"view"`
}

type opponentTimerRequest struct {
	Seconds int `json:"seconds"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	ids := s.sessions.IDs()
	sort.Strings(ids)
	s.respondJSON(w, http.StatusOK, ids)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.SubjectID != "" && req.LessonID != 0 {
		if _, ok := s.curriculum.Lesson(req.SubjectID, req.LessonID); !ok {
			s.respondError(w, http.StatusNotFound, "unknown_lesson", "no such lesson in the curriculum")
			return
		}
	}

	m, err := s.engine.StartSession(r.Context(), req.SubjectID, req.LessonID)
	if err != nil {
		if errors.Is(err, progression.ErrLessonLocked) {
			s.respondError(w, http.StatusForbidden, "lesson_locked", err.Error())
			return
		}
		s.logger.Error("start session failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "start_failed", err.Error())
		return
	}
	s.sessions.Add(m)
	s.respondJSON(w, http.StatusCreated, m.View())
}

// session resolves the {id} path parameter or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*game.Machine, bool) {
	id := chi.URLParam(r, "id")
	m, ok := s.sessions.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "not_found", "session not found")
		return nil, false
	}
	return m, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, m.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Remove(chi.URLParam(r, "id")) {
		s.respondError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	out, accepted := m.AnswerQuestion(req.Answer)
	if !accepted {
		s.respondError(w, http.StatusConflict, "not_accepting", "no question is waiting for an answer")
		return
	}
	s.respondJSON(w, http.StatusOK, answerResponse{AnswerOutcome: out, View: m.View()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	m.ResetGame()
	s.respondJSON(w, http.StatusOK, m.View())
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]game.Weather{"weather": m.CycleWeather()})
}

func (s *Server) handleOpponentTimer(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req opponentTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := m.UpdateOpponentTimerDuration(req.Seconds); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_timer", err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, m.View())
}

// Progression

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.progress.Export(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="quizrace-progress.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("write export failed", zap.Error(err))
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "could not read body")
		return
	}
	if err := s.progress.Import(r.Context(), data); err != nil {
		s.respondError(w, http.StatusBadRequest, "import_failed", err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.progress.AllProgress(r.Context()))
}
