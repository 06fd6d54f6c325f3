package server

import (
	"github.com/gin-gonic/gin"

	"github.com/casaantigua/anticuario/internal/category"
)

func (s *Server) ListCategories(c *gin.Context) {
	list := category.List()
	respondList(c, list, len(list))
}
