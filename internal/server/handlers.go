package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/civiclab/radca/internal/models"
	"github.com/civiclab/radca/internal/router"
	"github.com/civiclab/radca/pkg/utils"
)

// unresolvedMessage is shown when no domain matches the question, inviting a
// rephrase instead of guessing.
const unresolvedMessage = "Nie udało się rozpoznać odpowiedniej kolekcji. Spróbuj inaczej sformułować pytanie."

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var query models.AskQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.answer(w, r, query)
}

// handleAskGet mirrors handleAsk for clients that pass the question as a
// query parameter.
func (s *Server) handleAskGet(w http.ResponseWriter, r *http.Request) {
	s.answer(w, r, models.AskQuery{Question: r.URL.Query().Get("question")})
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, query models.AskQuery) {
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request", zap.String("question", utils.Truncate(query.Question, 200)))

	resp, err := s.pipeline.Ask(r.Context(), query)
	if err != nil {
		if errors.Is(err, router.ErrUnresolved) {
			s.respondError(w, http.StatusUnprocessableEntity, unresolvedMessage)
			return
		}
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domains := make([]map[string]interface{}, 0, s.catalog.Len())
	for _, d := range s.catalog.Domains() {
		entry := map[string]interface{}{
			"id":          d.ID,
			"description": d.Description,
		}
		n, err := s.store.Index(d.ID).Count(ctx)
		if err != nil {
			s.logger.Warn("status: count failed", zap.String("domain", d.ID), zap.Error(err))
		} else {
			entry["vectors"] = n
		}
		domains = append(domains, entry)
	}

	resp := map[string]interface{}{
		"domains": domains,
	}
	if s.manifest != nil {
		counts, err := s.manifest.CountByDomain(ctx)
		if err != nil {
			s.logger.Error("status: manifest counts failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["ingested_files"] = counts
	}
	resp["config"] = map[string]interface{}{
		"vector_store":    s.config.Vector.Type,
		"dimensions":      s.config.Vector.Dimensions,
		"top_k":           s.config.Retrieval.TopK,
		"embedding_model": s.config.Providers.OpenAI.EmbeddingModel,
		"chat_model":      s.config.Providers.OpenAI.ChatModel,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
