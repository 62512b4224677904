package controllers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// MenuCategory is one section of the public menu.
type MenuCategory struct {
	Name  string            `json:"name"`
	Slug  string            `json:"slug"`
	Order float64           `json:"order"`
	Items []models.MenuItem `json:"items"`
}

type menuItemInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Kcal        *int             `json:"kcal"`
	Order       *float64         `json:"order"`
}

func (in menuItemInput) apply(item *models.MenuItem) error {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Category != nil {
		item.Category = strings.TrimSpace(*in.Category)
	}
	if in.Image != nil {
		item.Image = *in.Image
	}
	if in.Kcal != nil {
		item.Kcal = in.Kcal
	}
	if in.Order != nil {
		item.Order = *in.Order
	}

	switch {
	case item.Name == "":
		return errors.New("name is required")
	case item.Category == "":
		return errors.New("category is required")
	case item.Price.IsNegative():
		return errors.New("price must not be negative")
	}
	return nil
}

// GetMenu -> GET /menu, items grouped by category name
func (mc *MenuController) GetMenu(c *gin.Context) {
	var categories []models.Category
	if err := mc.DB.Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	var items []models.MenuItem
	if err := mc.DB.Order("display_order ASC").Order("name ASC").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{"categories": GroupMenu(categories, items)})
}

// GroupMenu buckets items by category name. A category missing from the
// categories table sorts with order 0.
func GroupMenu(categories []models.Category, items []models.MenuItem) []MenuCategory {
	orderByName := make(map[string]float64, len(categories))
	for _, cat := range categories {
		orderByName[cat.Name] = cat.Order
	}

	groups := make(map[string]*MenuCategory)
	var names []string
	for _, item := range items {
		g, ok := groups[item.Category]
		if !ok {
			g = &MenuCategory{
				Name:  item.Category,
				Slug:  Slugify(item.Category),
				Order: orderByName[item.Category],
			}
			groups[item.Category] = g
			names = append(names, item.Category)
		}
		g.Items = append(g.Items, item)
	}

	out := make([]MenuCategory, 0, len(names))
	for _, name := range names {
		out = append(out, *groups[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		sort.SliceStable(out[i].Items, func(a, b int) bool {
			return out[i].Items[a].Order < out[i].Items[b].Order
		})
	}
	return out
}

// GetAllMenuItems -> GET /menu/items[?category=]
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	q := mc.DB.Order("display_order ASC").Order("name ASC")
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetMenuItemByID -> GET /menu/items/:item_id
func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	var item models.MenuItem
	if err := mc.DB.First(&item, "id = ?", c.Param("item_id")).Error; err != nil {
		respondLookupError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// CreateMenuItem -> POST /admin/menu/items
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var in menuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if in.Price == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price is required"))
		return
	}

	var item models.MenuItem
	if err := in.apply(&item); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenuItem -> PUT /admin/menu/items/:item_id
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	var in menuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, "id = ?", c.Param("item_id")).Error; err != nil {
		respondLookupError(c, err)
		return
	}
	if err := in.apply(&item); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// DeleteMenuItem -> DELETE /admin/menu/items/:item_id
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id := c.Param("item_id")
	res := mc.DB.Delete(&models.MenuItem{}, "id = ?", id)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{"id": id})
}

// ReorderMenuItems -> POST /admin/menu/order
func (mc *MenuController) ReorderMenuItems(c *gin.Context) {
	var entries []OrderEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := applyOrder(mc.DB, &models.MenuItem{}, entries); err != nil {
		respondLookupError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated successfully", nil)
}

func respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errNotFound) {
		utils.RespondError(c, http.StatusNotFound, errNotFound)
		return
	}
	utils.RespondError(c, http.StatusInternalServerError, err)
}
