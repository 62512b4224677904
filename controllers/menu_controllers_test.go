package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kebab-storefront/models"
	"gorm.io/gorm"
)

func setupCatalogRouter(db *gorm.DB) http.Handler {
	r := newEngine()
	menuCtrl := NewMenuController(db)
	categoryCtrl := NewMenuCategoryController(db)
	slideCtrl := NewHeroSlideController(db)

	r.GET("/menu", menuCtrl.GetMenu)
	r.GET("/menu/items", menuCtrl.GetAllMenuItems)
	r.GET("/menu/items/:item_id", menuCtrl.GetMenuItemByID)
	r.POST("/admin/menu/items", menuCtrl.CreateMenuItem)
	r.PUT("/admin/menu/items/:item_id", menuCtrl.UpdateMenuItem)
	r.DELETE("/admin/menu/items/:item_id", menuCtrl.DeleteMenuItem)
	r.POST("/admin/menu/order", menuCtrl.ReorderMenuItems)

	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.POST("/admin/categories", categoryCtrl.CreateCategory)
	r.PUT("/admin/categories/:cat_id", categoryCtrl.UpdateCategory)
	r.DELETE("/admin/categories/:cat_id", categoryCtrl.DeleteCategory)
	r.POST("/admin/categories/order", categoryCtrl.ReorderCategories)

	r.GET("/hero-slides", slideCtrl.GetAllHeroSlides)
	r.GET("/hero-slides/:slide_id", slideCtrl.GetHeroSlideByID)
	r.POST("/admin/hero-slides", slideCtrl.CreateHeroSlide)
	r.PUT("/admin/hero-slides/:slide_id", slideCtrl.UpdateHeroSlide)
	r.DELETE("/admin/hero-slides/:slide_id", slideCtrl.DeleteHeroSlide)
	return r
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "kebabs-y-wraps", Slugify("Kebabs  y Wraps"))
	assert.Equal(t, "bebidas", Slugify(" Bebidas "))
	assert.Equal(t, "", Slugify(""))
}

func TestGroupMenu(t *testing.T) {
	categories := []models.Category{
		{Name: "Bebidas", Order: 2},
		{Name: "Kebabs Especiales", Order: 1},
	}
	items := []models.MenuItem{
		{Name: "Limonada", Category: "Bebidas", Order: 2},
		{Name: "Agua", Category: "Bebidas", Order: 1},
		{Name: "Kebab Mixto", Category: "Kebabs Especiales", Order: 1},
		{Name: "Baklava", Category: "Postres", Order: 1},
	}

	menu := GroupMenu(categories, items)
	require.Len(t, menu, 3)

	// Postres has no category row, so it sorts with order 0
	assert.Equal(t, "Postres", menu[0].Name)
	assert.Equal(t, float64(0), menu[0].Order)
	assert.Equal(t, "Kebabs Especiales", menu[1].Name)
	assert.Equal(t, "kebabs-especiales", menu[1].Slug)
	assert.Equal(t, "Bebidas", menu[2].Name)

	require.Len(t, menu[2].Items, 2)
	assert.Equal(t, "Agua", menu[2].Items[0].Name)
	assert.Equal(t, "Limonada", menu[2].Items[1].Name)
}

func TestMenuItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	r := setupCatalogRouter(db)

	w, env := doJSON(t, r, http.MethodPost, "/admin/menu/items", map[string]interface{}{
		"name":     "Kebab Classic",
		"price":    15000,
		"category": "Kebabs",
		"order":    1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.MenuItem
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Price.Equal(decimal.NewFromInt(15000)))

	w, _ = doJSON(t, r, http.MethodGet, "/menu/items/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodPut, "/admin/menu/items/"+created.ID, map[string]interface{}{"price": 16000})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.MenuItem
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(16000)))
	assert.Equal(t, "Kebab Classic", updated.Name)

	w, _ = doJSON(t, r, http.MethodGet, "/menu/items?category=Kebabs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)

	w, _ = doJSON(t, r, http.MethodDelete, "/admin/menu/items/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/menu/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, r, http.MethodDelete, "/admin/menu/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, r, http.MethodPut, "/admin/menu/items/"+created.ID, map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMenuItemValidation(t *testing.T) {
	db := setupTestDB(t)
	r := setupCatalogRouter(db)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing price", body: map[string]interface{}{"name": "Kebab", "category": "Kebabs"}},
		{name: "missing name", body: map[string]interface{}{"price": 1000, "category": "Kebabs"}},
		{name: "missing category", body: map[string]interface{}{"name": "Kebab", "price": 1000}},
		{name: "negative price", body: map[string]interface{}{"name": "Kebab", "category": "Kebabs", "price": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPost, "/admin/menu/items", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Status)
		})
	}
}

func TestGetMenuGroupsByCategory(t *testing.T) {
	db := setupTestDB(t)
	r := setupCatalogRouter(db)

	require.NoError(t, db.Create(&models.Category{Name: "Bebidas", Slug: "bebidas", Order: 2}).Error)
	require.NoError(t, db.Create(&models.Category{Name: "Kebabs", Slug: "kebabs", Order: 1}).Error)
	require.NoError(t, db.Create(&models.MenuItem{Name: "Ayran", Category: "Bebidas", Price: decimal.NewFromInt(5000)}).Error)
	require.NoError(t, db.Create(&models.MenuItem{Name: "Kebab Classic", Category: "Kebabs", Price: decimal.NewFromInt(15000)}).Error)

	w, env := doJSON(t, r, http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Categories []MenuCategory `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Categories, 2)
	assert.Equal(t, "Kebabs", data.Categories[0].Name)
	assert.Equal(t, "Bebidas", data.Categories[1].Name)
}

func TestReorderMenuItems(t *testing.T) {
	db := setupTestDB(t)
	r := setupCatalogRouter(db)

	a := models.MenuItem{Name: "A", Category: "Kebabs", Price: decimal.NewFromInt(1), Order: 1}
	b := models.MenuItem{Name: "B", Category: "Kebabs", Price: decimal.NewFromInt(1), Order: 2}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	w, _ := doJSON(t, r, http.MethodPost, "/admin/menu/order", []OrderEntry{{ID: a.ID, Order: 5}, {ID: b.ID, Order: 0.5}})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.MenuItem
	require.NoError(t, db.First(&got, "id = ?", a.ID).Error)
	assert.Equal(t, float64(5), got.Order)

	// an unknown id rolls the whole batch back
	w, _ = doJSON(t, r, http.MethodPost, "/admin/menu/order", []OrderEntry{{ID: a.ID, Order: 9}, {ID: "missing", Order: 1}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, db.First(&got, "id = ?", a.ID).Error)
	assert.Equal(t, float64(5), got.Order)
}

func TestCategoryRenameCarriesItems(t *testing.T) {
	db := setupTestDB(t)
	r := setupCatalogRouter(db)

	w, env := doJSON(t, r, http.MethodPost, "/admin/categories", map[string]interface{}{"name": "Kebabs Clasicos"})
	require.Equal(t, http.StatusCreated, w.Code)
	var cat models.Category
	require.NoError(t, json.Unmarshal(env.Data, &cat))
	assert.Equal(t, "kebabs-clasicos", cat.Slug)

	require.NoError(t, db.Create(&models.MenuItem{Name: "Doner", Category: "Kebabs Clasicos", Price: decimal.NewFromInt(1)}).Error)

	w, env = doJSON(t, r, http.MethodPut, "/admin/categories/"+cat.ID, map[string]interface{}{"name": "Kebabs"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &cat))
	assert.Equal(t, "kebabs", cat.Slug)

	var item models.MenuItem
	require.NoError(t, db.First(&item, "name = ?", "Doner").Error)
	assert.Equal(t, "Kebabs", item.Category)

	w, _ = doJSON(t, r, http.MethodPut, "/admin/categories/missing", map[string]interface{}{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/admin/categories", map[string]interface{}{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/admin/categories/order", []OrderEntry{{ID: cat.ID, Order: 3}})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/admin/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodDelete, "/admin/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHeroSlides(t *testing.T) {
	db := setupTestDB(t)
	r := setupCatalogRouter(db)

	w, env := doJSON(t, r, http.MethodPost, "/admin/hero-slides", map[string]interface{}{
		"title": "Martes de kebab",
		"image": "https://cdn.example.com/hero.jpg",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var slide models.HeroSlide
	require.NoError(t, json.Unmarshal(env.Data, &slide))
	assert.Equal(t, models.HeroSlideHorizontal, slide.Type)

	w, _ = doJSON(t, r, http.MethodPost, "/admin/hero-slides", map[string]interface{}{
		"image": "https://cdn.example.com/hero.jpg",
		"type":  "diagonal",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/admin/hero-slides", map[string]interface{}{"title": "no image"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, http.MethodPut, "/admin/hero-slides/"+slide.ID, map[string]interface{}{"type": "vertical"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &slide))
	assert.Equal(t, models.HeroSlideVertical, slide.Type)

	w, _ = doJSON(t, r, http.MethodGet, "/hero-slides/"+slide.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/hero-slides", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/admin/hero-slides/"+slide.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/hero-slides/"+slide.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
