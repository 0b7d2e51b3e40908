package handlers

import (
	"sikseb/internal/catalog"
	"sikseb/pkg/pagination"
	"sikseb/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct{}

func NewPermissionHandler() *PermissionHandler {
	return &PermissionHandler{}
}

// Groups GET /api/permissions
func (h *PermissionHandler) Groups(c *gin.Context) {
	groups := catalog.Groups()
	response.List(c, groups, pagination.NewMeta(1, max(len(groups), 1), len(groups)))
}
