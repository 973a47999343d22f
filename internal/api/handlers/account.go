package handlers

import (
	"net/http"
	"time"

	"github.com/ejdotp/digiWallet/internal/api/httpx"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.Users.Register(r.Context(), req.Username, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decode(w, r, &req) {
		return
	}
	token, exp, err := h.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int64(time.Until(exp).Seconds()),
	})
}
