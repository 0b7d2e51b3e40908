package handlers

import (
	"sikseb/internal/mockapi"
	"sikseb/pkg/pagination"
	"sikseb/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	store *mockapi.Store
}

func NewUserHandler(store *mockapi.Store) *UserHandler {
	return &UserHandler{store: store}
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	users := h.store.Users()

	start, end := params.Window(len(users))
	response.List(c, users[start:end], pagination.NewMeta(params.Page, params.PerPage, len(users)))
}
