package dtos

import "github.com/shopspring/decimal"

// AddItemRequest is the body of POST /carrinho. Quantidade is a pointer so an
// explicit zero reaches the cart rules instead of failing binding.
type AddItemRequest struct {
	UsuarioID  string `json:"usuarioId" binding:"required"`
	ProdutoID  string `json:"produtoId" binding:"required"`
	Quantidade *int   `json:"quantidade" binding:"required"`
}

type RemoveItemRequest struct {
	UsuarioID string `json:"usuarioId" binding:"required"`
	ProdutoID string `json:"produtoId" binding:"required"`
}

type UpdateItemRequest struct {
	UsuarioID  string `json:"usuarioId" binding:"required"`
	ProdutoID  string `json:"produtoId" binding:"required"`
	Quantidade *int   `json:"quantidade" binding:"required"`
}

// ClearCartRequest is optional on DELETE /carrinho; the owner may come from
// the query string instead.
type ClearCartRequest struct {
	UsuarioID string `json:"usuarioId"`
}

type CreateProductRequest struct {
	Nome      string           `json:"nome" binding:"required"`
	Preco     *decimal.Decimal `json:"preco" binding:"required"`
	URLFoto   string           `json:"urlfoto" binding:"required"`
	Descricao string           `json:"descricao" binding:"required"`
}

type RegisterRequest struct {
	Nome  string `json:"nome" binding:"required"`
	Idade int    `json:"idade" binding:"required"`
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

type LoginRequest struct {
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}
