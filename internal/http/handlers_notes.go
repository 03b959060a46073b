package http

import (
	"net/http"

	"jotledger/internal/core"
)

type noteRequest struct {
	Content string `json:"content"`
}

type reorderRequest struct {
	Order []int64 `json:"order"`
}

type noteResponse struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	Position int64  `json:"position"`
}

func toNoteResponse(n core.Note) noteResponse {
	return noteResponse{ID: n.ID, Content: n.Content, Position: n.Position}
}

// handleNotes serves GET (list) and POST (create) on /api/notes.
func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	switch r.Method {
	case http.MethodGet:
		notes, err := s.notesService.List(r.Context(), user.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out := make([]noteResponse, 0, len(notes))
		for _, n := range notes {
			out = append(out, toNoteResponse(n))
		}
		writeJSON(w, http.StatusOK, map[string]any{"notes": out})

	case http.MethodPost:
		var req noteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		note, err := s.notesService.Add(r.Context(), user.ID, req.Content)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toNoteResponse(note))

	default:
		w.Header().Set("Allow", "GET, POST")
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

// handleNoteByID serves POST (update) and DELETE on /api/notes/{id}.
func (s *Server) handleNoteByID(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	id, ok := pathID(r, "/api/notes/")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req noteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		note, err := s.notesService.Update(r.Context(), user.ID, id, req.Content)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toNoteResponse(note))

	case http.MethodDelete:
		if err := s.notesService.Delete(r.Context(), user.ID, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Note deleted.", "can_undo": true})

	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (s *Server) handleReorderNotes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	user := userFrom(r)

	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.notesService.Reorder(r.Context(), user.ID, req.Order); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Note order saved.")
}

func (s *Server) handleUndoNote(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	user := userFrom(r)

	note, err := s.notesService.Undo(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Note restored.",
		"note":    toNoteResponse(note),
	})
}
