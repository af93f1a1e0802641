package handlers

import (
	"net/http"
	"strings"

	"loja-backend/dtos"
	"loja-backend/services"

	"github.com/gin-gonic/gin"
)

const cartEmptiedMessage = "Item removido. Carrinho vazio e removido."

type CartHandler struct {
	Carts *services.CartService
}

// GetCart returns the cart of ?usuarioId, or every cart when it is omitted.
func (h *CartHandler) GetCart(c *gin.Context) {
	ownerID := strings.TrimSpace(c.Query("usuarioId"))
	if ownerID == "" {
		carts, err := h.Carts.ListCarts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, carts)
		return
	}

	cart, err := h.Carts.GetCart(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req dtos.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, created, err := h.Carts.AddItem(c.Request.Context(), req.UsuarioID, req.ProdutoID, *req.Quantidade)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req dtos.RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := h.Carts.RemoveItem(c.Request.Context(), req.UsuarioID, req.ProdutoID)
	if err != nil {
		respondError(c, err)
		return
	}
	if cart == nil {
		c.JSON(http.StatusOK, gin.H{"message": cartEmptiedMessage})
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req dtos.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := h.Carts.SetQuantity(c.Request.Context(), req.UsuarioID, req.ProdutoID, *req.Quantidade)
	if err != nil {
		respondError(c, err)
		return
	}
	if cart == nil {
		c.JSON(http.StatusOK, gin.H{"message": cartEmptiedMessage})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart takes the owner from the JSON body or from ?usuarioId.
func (h *CartHandler) ClearCart(c *gin.Context) {
	var req dtos.ClearCartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	if strings.TrimSpace(req.UsuarioID) == "" {
		req.UsuarioID = c.Query("usuarioId")
	}

	if err := h.Carts.ClearCart(c.Request.Context(), req.UsuarioID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Carrinho removido com sucesso"})
}
