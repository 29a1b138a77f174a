// internal/handlers/client.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/readify-backend/internal/i18n"
	"github.com/javajoker/readify-backend/internal/services"
	"github.com/javajoker/readify-backend/internal/utils"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

type addClientRequest struct {
	UserID string `json:"userId"`
	services.CreateClientRequest
}

// POST /clients
func (h *ClientHandler) AddClient(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req addClientRequest
	if !bindJSON(c, &req) {
		return
	}
	if !matchAccount(c, req.UserID, "userId") {
		return
	}
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	client, err := h.clientService.AddClient(c.Request.Context(), accountID, &req.CreateClientRequest)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyClientCreated),
		"client":  client,
	})
}

// GET /clients/:userId
func (h *ClientHandler) ListClients(c *gin.Context) {
	h.listClients(c, nil)
}

// GET /getClients/:userId answers 400 for an unknown account.
func (h *ClientHandler) ListClientsLegacy(c *gin.Context) {
	h.listClients(c, statusOverrides{services.ErrAccountNotFound: http.StatusBadRequest})
}

func (h *ClientHandler) listClients(c *gin.Context, overrides statusOverrides) {
	if !matchAccount(c, c.Param("userId"), "userId") {
		return
	}
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	clients, err := h.clientService.ListClients(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, overrides)
		return
	}

	utils.SuccessResponse(c, gin.H{"clients": clients})
}

// DELETE /clients/:clientId
// The owning account is named by the userid header.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID := c.GetHeader("userid")
	if userID == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "userid"), nil)
		return
	}
	if !matchAccount(c, userID, "userid") {
		return
	}
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	clientID, ok := parseUUIDParamStatus(c, "clientId", "client", http.StatusNotAcceptable)
	if !ok {
		return
	}

	err := h.clientService.DeleteClient(c.Request.Context(), accountID, clientID)
	if err != nil {
		respondError(c, err, statusOverrides{services.ErrClientNotFound: http.StatusNotAcceptable})
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyClientDeleted),
	})
}
