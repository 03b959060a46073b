package http

import (
	"net/http"
	"time"

	"jotledger/internal/core"
)

type transactionRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Timestamp   string `json:"timestamp"`
	Position    int64  `json:"position"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Description: t.Description,
		Amount:      core.FormatAmount(t.Amount),
		Type:        string(t.Type),
		Timestamp:   t.Timestamp.UTC().Format(time.RFC3339),
		Position:    t.Position,
	}
}

// handleTransactions serves GET (list) and POST (create) on /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	switch r.Method {
	case http.MethodGet:
		txs, err := s.ledgerService.List(r.Context(), user.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out := make([]transactionResponse, 0, len(txs))
		for _, t := range txs {
			out = append(out, toTransactionResponse(t))
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": out})

	case http.MethodPost:
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		tx, err := s.ledgerService.Add(r.Context(), user.ID, req.Description, req.Amount, req.Type)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTransactionResponse(tx))

	default:
		w.Header().Set("Allow", "GET, POST")
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

// handleTransactionByID serves POST (update) and DELETE on /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	id, ok := pathID(r, "/api/transactions/")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		tx, err := s.ledgerService.Update(r.Context(), user.ID, id, req.Description, req.Amount, req.Type)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionResponse(tx))

	case http.MethodDelete:
		if err := s.ledgerService.Delete(r.Context(), user.ID, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Transaction deleted.", "can_undo": true})

	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (s *Server) handleReorderTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	user := userFrom(r)

	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledgerService.Reorder(r.Context(), user.ID, req.Order); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Transaction order saved.")
}

func (s *Server) handleUndoTransaction(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	user := userFrom(r)

	tx, err := s.ledgerService.Undo(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction restored.",
		"transaction": toTransactionResponse(tx),
	})
}

// handleFinanceTotals always returns a value, computing zeros when the owner
// has no transactions. Amounts are rounded to two decimals here, at the
// boundary only.
func (s *Server) handleFinanceTotals(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	user := userFrom(r)

	totals, err := s.ledgerService.Totals(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"income":  core.FormatAmount(totals.Income),
		"expense": core.FormatAmount(totals.Expense),
		"balance": core.FormatAmount(totals.Balance),
	})
}
