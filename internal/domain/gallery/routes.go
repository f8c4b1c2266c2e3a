package gallery

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the gallery API on r.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/gallery", h.GetGallery)

	images := r.Group("/images")
	{
		images.GET("", h.ListImages)
		images.POST("", h.Upload)
		images.GET("/:id", h.GetImage)
		images.PATCH("/:id", h.Rename)
		images.DELETE("/:id", h.Delete)
	}

	r.PUT("/search", h.Search)
	r.DELETE("/search", h.ClearSearch)
	r.GET("/blobs/:handle", h.Blob)
}
