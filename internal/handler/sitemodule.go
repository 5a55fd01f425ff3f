package handler

import (
	"net/http"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/ctxkeys"
	"github.com/plumekit/plume/internal/service"
)

// SiteModuleHandler serves the module/theme catalogs, webmentions and
// per-post rights.
type SiteModuleHandler struct {
	siteModuleService *service.SiteModuleService
}

func NewSiteModuleHandler(siteModuleService *service.SiteModuleService) *SiteModuleHandler {
	return &SiteModuleHandler{siteModuleService: siteModuleService}
}

func (h *SiteModuleHandler) Modules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.siteModuleService.Modules()
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, modules)
}

func (h *SiteModuleHandler) Themes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.siteModuleService.Themes()
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, themes)
}

// ReceiveWebMention accepts an incoming webmention notification.
func (h *SiteModuleHandler) ReceiveWebMention(w http.ResponseWriter, r *http.Request) {
	var in service.WebMentionInput
	err := api.Decode(r, &in)
	if err != nil {
		api.Error(w, err)
		return
	}

	mention, err := h.siteModuleService.ReceiveWebMention(in)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, mention)
}

func (h *SiteModuleHandler) WebMentions(w http.ResponseWriter, r *http.Request) {
	mentions, err := h.siteModuleService.ApprovedWebMentions()
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, mentions)
}

func (h *SiteModuleHandler) SetPostRights(w http.ResponseWriter, r *http.Request) {
	var in service.PostRightsInput
	err := api.Decode(r, &in)
	if err != nil {
		api.Error(w, err)
		return
	}

	user := ctxkeys.User(r.Context())
	rights, err := h.siteModuleService.SetPostRights(user.ID, r.PathValue("id"), in)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, rights)
}

func (h *SiteModuleHandler) PostRights(w http.ResponseWriter, r *http.Request) {
	rights, err := h.siteModuleService.PostRights(r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, rights)
}
