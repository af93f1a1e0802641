package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&Product{}, &Cart{}, &User{}); err != nil {
		t.Fatal(err)
	}
	return db
}

// ==================== BeforeCreate Hook Tests ====================

func TestUserBeforeCreateGeneratesID(t *testing.T) {
	db := setupTestDB(t)
	user := User{Email: "test@test.com", PasswordHash: "hash", Name: "Test"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID == "" {
		t.Error("ID should have been generated")
	}
}

func TestUserBeforeCreatePreservesID(t *testing.T) {
	db := setupTestDB(t)
	user := User{ID: "65f1c0ffee", Email: "preserve@test.com", PasswordHash: "hash", Name: "Test"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID != "65f1c0ffee" {
		t.Error("ID should have been preserved")
	}
}

func TestProductBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	prod := Product{Name: "Caneca", UnitPrice: decimal.RequireFromString("19.90")}
	if err := db.Create(&prod).Error; err != nil {
		t.Fatal(err)
	}
	if prod.ID == "" {
		t.Error("ID should have been generated")
	}

	var got Product
	if err := db.First(&got, "id = ?", prod.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !got.UnitPrice.Equal(prod.UnitPrice) {
		t.Errorf("expected price %s, got %s", prod.UnitPrice, got.UnitPrice)
	}
}

func TestCartItemsRoundTripThroughJSONColumn(t *testing.T) {
	db := setupTestDB(t)
	cart := Cart{
		OwnerID: "U",
		Items: []LineItem{
			{ProductID: "P1", Quantity: 2, UnitPrice: decimal.NewFromInt(10), Name: "Caneca"},
			{ProductID: "P2", Quantity: 1, UnitPrice: decimal.RequireFromString("49.90"), Name: "Camiseta"},
		},
		Total:   decimal.RequireFromString("69.90"),
		Version: 1,
	}
	if err := db.Create(&cart).Error; err != nil {
		t.Fatal(err)
	}

	var got Cart
	if err := db.First(&got, "owner_id = ?", "U").Error; err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 2 || got.Items[1].Name != "Camiseta" {
		t.Errorf("items not preserved in order: %+v", got.Items)
	}
	if !got.Items[1].UnitPrice.Equal(decimal.RequireFromString("49.9")) {
		t.Errorf("unexpected unit price %s", got.Items[1].UnitPrice)
	}
}

// ==================== Cart helpers ====================

func TestFindItem(t *testing.T) {
	c := &Cart{Items: []LineItem{{ProductID: "P1"}, {ProductID: "P2"}}}
	if i := c.FindItem("P2"); i != 1 {
		t.Errorf("expected 1, got %d", i)
	}
	if i := c.FindItem("P3"); i != -1 {
		t.Errorf("expected -1, got %d", i)
	}

	var nilCart *Cart
	if i := nilCart.FindItem("P1"); i != -1 {
		t.Errorf("expected -1 for nil cart, got %d", i)
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := &Cart{OwnerID: "U", Items: []LineItem{{ProductID: "P1", Quantity: 1}}, Version: 3}
	clone := c.Clone()
	clone.Items[0].Quantity = 9
	clone.Items = append(clone.Items, LineItem{ProductID: "P2"})

	if c.Items[0].Quantity != 1 || len(c.Items) != 1 {
		t.Error("mutating the clone changed the original")
	}
	if clone.Version != 3 {
		t.Error("clone should keep the version")
	}

	var nilCart *Cart
	if nilCart.Clone() != nil {
		t.Error("clone of nil should be nil")
	}
}

// ==================== JSON shape ====================

func TestJSONFieldNames(t *testing.T) {
	u := User{ID: "1", Name: "Maria", Age: 30, Email: "m@test.com", PasswordHash: "secret-hash", Role: RoleCustomer}
	b, _ := json.Marshal(u)
	if strings.Contains(string(b), "secret-hash") {
		t.Error("password hash must not be serialised")
	}
	for _, key := range []string{`"_id"`, `"nome"`, `"idade"`, `"email"`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("expected %s in %s", key, b)
		}
	}

	c := Cart{OwnerID: "U", Total: decimal.RequireFromString("20.00"), Version: 7}
	b, _ = json.Marshal(c)
	if strings.Contains(string(b), "7") {
		t.Errorf("version must not be serialised: %s", b)
	}
	if !strings.Contains(string(b), `"total":20`) {
		t.Errorf("expected total as a JSON number, got %s", b)
	}
}
