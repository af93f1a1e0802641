package handlers

import (
	"errors"
	"net/http"
	"strings"

	"loja-backend/cart"
	"loja-backend/services"
	"loja-backend/store"
	"loja-backend/utils"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{services.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", ""},
	{cart.ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY", "Quantidade deve ser um número inteiro positivo"},
	{store.ErrInvalidID, http.StatusBadRequest, "INVALID_ID", "ID inválido"},
	{cart.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Produto não encontrado"},
	{cart.ErrCartNotFound, http.StatusNotFound, "CART_NOT_FOUND", "Carrinho não encontrado"},
	{cart.ErrItemNotFound, http.StatusNotFound, "ITEM_NOT_FOUND", "Item não encontrado no carrinho"},
	{services.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "Usuário não encontrado"},
	{store.ErrConflict, http.StatusConflict, "CONFLICT", "O recurso foi alterado por outra requisição, tente novamente"},
	{services.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN", "Email já cadastrado"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Senha incorreta"},
	{services.ErrReconcileUnsupported, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Sincronização indisponível para o armazenamento configurado"},
	{store.ErrUnavailable, http.StatusInternalServerError, "STORE_UNAVAILABLE", "Erro ao acessar o banco de dados"},
}

// respondError writes the {"error","code"} body for err and records err on
// the gin context for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = strings.TrimPrefix(err.Error(), m.target.Error()+": ")
		}
		c.JSON(m.status, gin.H{"error": msg, "code": m.code})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor", "code": "INTERNAL"})
}

func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err), "code": "INVALID_INPUT"})
}
