package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/utils"
	"gorm.io/gorm"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

type categoryInput struct {
	Name  *string  `json:"name"`
	Slug  *string  `json:"slug"`
	Order *float64 `json:"order"`
}

// GetAllCategories -> GET /categories
func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.Category
	if err := mcc.DB.Order("display_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

// CreateCategory -> POST /admin/categories
func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	category := models.Category{Name: strings.TrimSpace(*in.Name)}
	category.Slug = Slugify(category.Name)
	if in.Slug != nil && *in.Slug != "" {
		category.Slug = *in.Slug
	}
	if in.Order != nil {
		category.Order = *in.Order
	}

	if err := mcc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory -> PUT /admin/categories/:cat_id
// Renaming a category carries its menu items along.
func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.Category
	err := mcc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, "id = ?", c.Param("cat_id")).Error; err != nil {
			return err
		}

		oldName := category.Name
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
			category.Name = strings.TrimSpace(*in.Name)
			category.Slug = Slugify(category.Name)
		}
		if in.Slug != nil && *in.Slug != "" {
			category.Slug = *in.Slug
		}
		if in.Order != nil {
			category.Order = *in.Order
		}

		if err := tx.Save(&category).Error; err != nil {
			return err
		}
		if category.Name != oldName {
			return tx.Model(&models.MenuItem{}).
				Where("category = ?", oldName).
				Update("category", category.Name).Error
		}
		return nil
	})
	if err != nil {
		respondLookupError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory -> DELETE /admin/categories/:cat_id
func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	id := c.Param("cat_id")
	res := mcc.DB.Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": id})
}

// ReorderCategories -> POST /admin/categories/order
func (mcc *MenuCategoryController) ReorderCategories(c *gin.Context) {
	var entries []OrderEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := applyOrder(mcc.DB, &models.Category{}, entries); err != nil {
		respondLookupError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category order updated successfully", nil)
}
