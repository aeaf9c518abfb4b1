package handler

import (
	"net/http"
	"strconv"

	"Campus_Community/internal/model"
	"Campus_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	svc *service.ListingService
}

func NewListingHandler(svc *service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// Create 发布商品：multipart 表单，照片必传
func (h *ListingHandler) Create(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	priceCents, err := strconv.ParseInt(c.PostForm("price_cents"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	photo, err := formImage(c, "photo", true)
	if err != nil {
		fail(c, err)
		return
	}
	listingID, err := h.svc.Create(c.Request.Context(), userID,
		c.PostForm("title"), c.PostForm("description"), c.PostForm("category"),
		priceCents, photo)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"listing_id": listingID})
}

func (h *ListingHandler) Destroy(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	listingID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.Destroy(c.Request.Context(), userID, listingID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ListingHandler) Get(c *gin.Context) {
	listingID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	listing, err := h.svc.Get(listingID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"listing": listing})
}

func (h *ListingHandler) BySeller(c *gin.Context) {
	sellerID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	listings, err := h.svc.BySeller(sellerID, queryInt(c, "page", 1), queryInt(c, "size", 20))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": listings})
}

// Search 商品检索：标题子串 + 品类 + 价格上限，零命中退推荐
func (h *ListingHandler) Search(c *gin.Context) {
	maxPrice := int64(0)
	if v := c.Query("max_price_cents"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
			return
		}
		maxPrice = parsed
	}
	result, err := h.svc.Search(c.Query("q"), c.Query("category"), maxPrice)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"matched": result.Matched, "count": result.Count, "items": result.Items})
}

func (h *ListingHandler) Categories(c *gin.Context) {
	ok(c, gin.H{"items": model.ListingCategories})
}
