package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"loja-backend/middleware"
	"loja-backend/models"
	"loja-backend/services"
	"loja-backend/store"
	"loja-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.RegisterJSONTagNames(v)
	}
	os.Exit(m.Run())
}

type testEnv struct {
	store  *store.MemoryStore
	router *gin.Engine
	users  *services.UserService
}

// setupRouter wires every handler over a fresh in-memory store, mirroring the
// production route table.
func setupRouter() testEnv {
	s := store.NewMemoryStore(nil)
	carts := &CartHandler{Carts: services.NewCartService(services.CartServiceDeps{Carts: s, Products: s})}
	products := &ProductHandler{Products: services.NewProductService(s, nil)}
	users := services.NewUserService(services.UserServiceDeps{Users: s, BcryptCost: bcrypt.MinCost})
	auth := &AuthHandler{Users: users}

	r := gin.New()
	r.GET("/carrinho", carts.GetCart)
	r.POST("/carrinho", carts.AddToCart)
	r.POST("/carrinho/remover-item", carts.RemoveItem)
	r.PUT("/carrinho/atualizar", carts.UpdateCartItem)
	r.DELETE("/carrinho", carts.ClearCart)

	r.GET("/produtos", products.GetProducts)
	r.GET("/produtos/:id", products.GetProduct)
	r.POST("/produtos", products.CreateProduct)
	r.POST("/produtos/sincronizar", products.SyncProducts)

	r.GET("/usuarios", auth.ListUsers)
	r.POST("/usuarios", auth.Register)
	r.POST("/usuarios/login", auth.Login)
	r.GET("/usuarios/me", middleware.AuthMiddleware(), auth.GetProfile)

	return testEnv{store: s, router: r, users: users}
}

func (e testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func seedProduct(t *testing.T, s *store.MemoryStore, name, price string) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		UnitPrice:   decimal.RequireFromString(price),
		PhotoURL:    "http://img/" + name + ".png",
		Description: name,
	}
	if err := s.InsertProduct(context.Background(), &p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedTestUser(t *testing.T, users *services.UserService, email, password string) *models.User {
	t.Helper()
	u, err := users.Register(context.Background(), registerBody(email, password))
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authRequest(method, url string, body interface{}, token string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var result []interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["code"] != code {
		t.Errorf("expected code %s, got %v", code, resp["code"])
	}
	if msg, _ := resp["error"].(string); msg == "" {
		t.Error("expected a non-empty error message")
	}
}
