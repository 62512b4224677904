package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/utils"
	"gorm.io/gorm"
)

type HeroSlideController struct {
	DB *gorm.DB
}

func NewHeroSlideController(db *gorm.DB) *HeroSlideController {
	return &HeroSlideController{DB: db}
}

type heroSlideInput struct {
	Title    *string  `json:"title"`
	Subtitle *string  `json:"subtitle"`
	Image    *string  `json:"image"`
	Type     *string  `json:"type"`
	Order    *float64 `json:"order"`
}

func (in heroSlideInput) apply(slide *models.HeroSlide) error {
	if in.Title != nil {
		slide.Title = *in.Title
	}
	if in.Subtitle != nil {
		slide.Subtitle = *in.Subtitle
	}
	if in.Image != nil {
		slide.Image = *in.Image
	}
	if in.Type != nil {
		slide.Type = *in.Type
	}
	if in.Order != nil {
		slide.Order = *in.Order
	}

	if slide.Type == "" {
		slide.Type = models.HeroSlideHorizontal
	}
	if slide.Type != models.HeroSlideHorizontal && slide.Type != models.HeroSlideVertical {
		return errors.New("type must be horizontal or vertical")
	}
	if slide.Image == "" {
		return errors.New("image is required")
	}
	return nil
}

// GetAllHeroSlides -> GET /hero-slides
func (hc *HeroSlideController) GetAllHeroSlides(c *gin.Context) {
	var slides []models.HeroSlide
	if err := hc.DB.Order("display_order ASC").Order("created_at ASC").Find(&slides).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of hero slides", slides)
}

// GetHeroSlideByID -> GET /hero-slides/:slide_id
func (hc *HeroSlideController) GetHeroSlideByID(c *gin.Context) {
	var slide models.HeroSlide
	if err := hc.DB.First(&slide, "id = ?", c.Param("slide_id")).Error; err != nil {
		respondLookupError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hero slide detail", slide)
}

// CreateHeroSlide -> POST /admin/hero-slides
func (hc *HeroSlideController) CreateHeroSlide(c *gin.Context) {
	var in heroSlideInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var slide models.HeroSlide
	if err := in.apply(&slide); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := hc.DB.Create(&slide).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Hero slide created", slide)
}

// UpdateHeroSlide -> PUT /admin/hero-slides/:slide_id
func (hc *HeroSlideController) UpdateHeroSlide(c *gin.Context) {
	var in heroSlideInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var slide models.HeroSlide
	if err := hc.DB.First(&slide, "id = ?", c.Param("slide_id")).Error; err != nil {
		respondLookupError(c, err)
		return
	}
	if err := in.apply(&slide); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := hc.DB.Save(&slide).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hero slide updated", slide)
}

// DeleteHeroSlide -> DELETE /admin/hero-slides/:slide_id
func (hc *HeroSlideController) DeleteHeroSlide(c *gin.Context) {
	id := c.Param("slide_id")
	res := hc.DB.Delete(&models.HeroSlide{}, "id = ?", id)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hero slide deleted", gin.H{"id": id})
}
