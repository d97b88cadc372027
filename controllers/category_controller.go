package controllers

import (
	"net/http"

	"cmticaret/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	catalog *services.CatalogService
}

func NewCategoryController(catalog *services.CatalogService) *CategoryController {
	return &CategoryController{catalog: catalog}
}

func (cc *CategoryController) List(c *gin.Context) {
	categories, aerr := cc.catalog.ListCategories(c.Request.Context())
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (cc *CategoryController) Create(c *gin.Context) {
	var in services.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz kategori bilgileri"})
		return
	}

	category, aerr := cc.catalog.CreateCategory(c.Request.Context(), in)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (cc *CategoryController) Update(c *gin.Context) {
	var in services.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz kategori bilgileri"})
		return
	}

	category, aerr := cc.catalog.UpdateCategory(c.Request.Context(), c.Param("id"), in)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (cc *CategoryController) Delete(c *gin.Context) {
	if aerr := cc.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Kategori silindi"})
}
