package handler

import (
	"net/http"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/service"
)

type TaxonomyHandler struct {
	taxonomyService *service.TaxonomyService
}

func NewTaxonomyHandler(taxonomyService *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (h *TaxonomyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, err)
		return
	}

	category, err := h.taxonomyService.CreateCategory(req.Name, req.Description, req.Color)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, category)
}

func (h *TaxonomyHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomyService.Categories()
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, categories)
}

func (h *TaxonomyHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.taxonomyService.Tags()
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, tags)
}
