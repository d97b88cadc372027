package controllers

import (
	"net/http"
	"strconv"

	"cmticaret/repository"
	"cmticaret/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	catalog *services.CatalogService
	media   *services.MediaService
}

func NewProductController(catalog *services.CatalogService, media *services.MediaService) *ProductController {
	return &ProductController{catalog: catalog, media: media}
}

func (pc *ProductController) List(c *gin.Context) {
	filter := repository.ProductFilter{
		CategoryID: c.Query("category"),
		Search:     c.Query("q"),
		Sort:       c.Query("sort"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if v := c.Query("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &f
		}
	}
	if v := c.Query("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &f
		}
	}
	if v := c.Query("in_stock"); v != "" {
		inStock := v == "true" || v == "1"
		filter.InStock = &inStock
	}

	resp, aerr := pc.catalog.ListProducts(c.Request.Context(), filter)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (pc *ProductController) Get(c *gin.Context) {
	product, aerr := pc.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) Create(c *gin.Context) {
	var in services.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz ürün bilgileri"})
		return
	}

	product, aerr := pc.catalog.CreateProduct(c.Request.Context(), in)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (pc *ProductController) Update(c *gin.Context) {
	var in services.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz ürün bilgileri"})
		return
	}

	product, aerr := pc.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) Delete(c *gin.Context) {
	if aerr := pc.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ürün silindi"})
}

// UploadImage receives a multipart file and stores it in object storage.
func (pc *ProductController) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Görsel dosyası eksik"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Görsel dosyası okunamadı"})
		return
	}
	defer file.Close()

	url, aerr := pc.media.UploadImage(c.Request.Context(), file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
