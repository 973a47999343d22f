package handlers

import (
	"net/http"

	"github.com/ejdotp/digiWallet/internal/api/httpx"
	"github.com/ejdotp/digiWallet/internal/models"
)

func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	var req productReq
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Catalog.Add(r.Context(), req.Name, req.Price, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"id": p.ID, "message": "Product added"})
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}
