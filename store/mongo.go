package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loja-backend/cart"
	"loja-backend/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection = "produtos"
	cartsCollection    = "carrinhos"
	usersCollection    = "usuarios"
)

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"nome"`
	Price       bson.RawValue      `bson:"preco"`
	PhotoURL    string             `bson:"urlfoto"`
	Description string             `bson:"descricao"`
}

type lineItemDocument struct {
	ProductID string        `bson:"produtoId"`
	Quantity  int           `bson:"quantidade"`
	UnitPrice bson.RawValue `bson:"precoUnitario"`
	Name      string        `bson:"nome"`
}

type cartDocument struct {
	OwnerID       string             `bson:"usuarioId"`
	Items         []lineItemDocument `bson:"itens"`
	Total         bson.RawValue      `bson:"total"`
	LastUpdatedAt primitive.DateTime `bson:"dataAtualizacao"`
	Version       int64              `bson:"versao,omitempty"`
}

// userDocument also reads "senhaCript", the field older records used for the hash.
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"nome"`
	Age          int                `bson:"idade,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"senha,omitempty"`
	LegacyHash   string             `bson:"senhaCript,omitempty"`
	Role         string             `bson:"role,omitempty"`
}

type MongoStore struct {
	db       *mongo.Database
	products *mongo.Collection
	carts    *mongo.Collection
	users    *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:       db,
		products: db.Collection(productsCollection),
		carts:    db.Collection(cartsCollection),
		users:    db.Collection(usersCollection),
	}
}

// NewID returns an id the Mongo driver accepts for products and users.
func (s *MongoStore) NewID() string {
	return primitive.NewObjectID().Hex()
}

// EnsureIndexes creates the unique keys the compare-and-swap writes rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "usuarioId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc productDocument
	if err := s.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("find product", err)
	}
	return doc.toModel()
}

func (s *MongoStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	cur, err := s.products.Find(ctx, bson.M{})
	if err != nil {
		return nil, unavailable("list products", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("list products", err)
	}

	out := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *MongoStore) InsertProduct(ctx context.Context, p *models.Product) error {
	oid := primitive.NewObjectID()
	if p.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return ErrInvalidID
		}
		oid = parsed
	}

	price, err := decimalToRaw(p.UnitPrice)
	if err != nil {
		return err
	}
	doc := productDocument{
		ID:          oid,
		Name:        p.Name,
		Price:       price,
		PhotoURL:    p.PhotoURL,
		Description: p.Description,
	}
	if _, err := s.products.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return unavailable("insert product", err)
	}
	p.ID = oid.Hex()
	return nil
}

func (s *MongoStore) LoadCart(ctx context.Context, ownerID string) (*models.Cart, error) {
	var doc cartDocument
	if err := s.carts.FindOne(ctx, bson.M{"usuarioId": ownerID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load cart", err)
	}
	return doc.toModel()
}

func (s *MongoStore) ListCarts(ctx context.Context) ([]models.Cart, error) {
	cur, err := s.carts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "usuarioId", Value: 1}}))
	if err != nil {
		return nil, unavailable("list carts", err)
	}
	var docs []cartDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("list carts", err)
	}

	out := make([]models.Cart, 0, len(docs))
	for _, doc := range docs {
		c, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *MongoStore) SaveCart(ctx context.Context, c *models.Cart) error {
	doc, err := newCartDocument(c)
	if err != nil {
		return err
	}
	doc.Version = c.Version + 1

	if c.Version == 0 {
		_, err := s.carts.InsertOne(ctx, doc)
		if err == nil {
			c.Version = doc.Version
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return unavailable("insert cart", err)
		}
		// Carts written before versioning existed carry no "versao" field.
		res, err := s.carts.ReplaceOne(ctx, bson.M{"usuarioId": c.OwnerID, "versao": bson.M{"$exists": false}}, doc)
		if err != nil {
			return unavailable("replace cart", err)
		}
		if res.MatchedCount == 0 {
			return ErrConflict
		}
		c.Version = doc.Version
		return nil
	}

	res, err := s.carts.ReplaceOne(ctx, bson.M{"usuarioId": c.OwnerID, "versao": c.Version}, doc)
	if err != nil {
		return unavailable("replace cart", err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	c.Version = doc.Version
	return nil
}

func (s *MongoStore) DeleteCart(ctx context.Context, ownerID string, expectedVersion int64) error {
	filter := bson.M{"usuarioId": ownerID}
	switch {
	case expectedVersion == 0:
		filter["versao"] = bson.M{"$exists": false}
	case expectedVersion != AnyVersion:
		filter["versao"] = expectedVersion
	}

	res, err := s.carts.DeleteOne(ctx, filter)
	if err != nil {
		return unavailable("delete cart", err)
	}
	if res.DeletedCount > 0 {
		return nil
	}
	if expectedVersion == AnyVersion {
		return ErrNotFound
	}

	n, err := s.carts.CountDocuments(ctx, bson.M{"usuarioId": ownerID})
	if err != nil {
		return unavailable("delete cart", err)
	}
	if n > 0 {
		return ErrConflict
	}
	return ErrNotFound
}

func (s *MongoStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("find user", err)
	}
	u := doc.toModel()
	return &u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, unavailable("list users", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("list users", err)
	}

	out := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (s *MongoStore) InsertUser(ctx context.Context, u *models.User) error {
	oid := primitive.NewObjectID()
	if u.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return ErrInvalidID
		}
		oid = parsed
	}

	doc := userDocument{
		ID:           oid,
		Name:         u.Name,
		Age:          u.Age,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return unavailable("insert user", err)
	}
	u.ID = oid.Hex()
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (d productDocument) toModel() (*models.Product, error) {
	price, err := decimalFromRaw(d.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", d.ID.Hex(), err)
	}
	return &models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		UnitPrice:   price,
		PhotoURL:    d.PhotoURL,
		Description: d.Description,
	}, nil
}

func newCartDocument(c *models.Cart) (cartDocument, error) {
	doc := cartDocument{
		OwnerID:       c.OwnerID,
		Items:         make([]lineItemDocument, 0, len(c.Items)),
		LastUpdatedAt: primitive.NewDateTimeFromTime(c.LastUpdatedAt),
	}
	for _, it := range c.Items {
		price, err := decimalToRaw(it.UnitPrice)
		if err != nil {
			return cartDocument{}, err
		}
		doc.Items = append(doc.Items, lineItemDocument{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price,
			Name:      it.Name,
		})
	}
	total, err := decimalToRaw(cart.ComputeTotal(c.Items))
	if err != nil {
		return cartDocument{}, err
	}
	doc.Total = total
	return doc, nil
}

// toModel derives the total from the items instead of trusting the stored field.
func (d cartDocument) toModel() (*models.Cart, error) {
	c := &models.Cart{
		OwnerID:       d.OwnerID,
		Items:         make([]models.LineItem, 0, len(d.Items)),
		LastUpdatedAt: d.LastUpdatedAt.Time().UTC(),
		Version:       d.Version,
	}
	for _, it := range d.Items {
		price, err := decimalFromRaw(it.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("cart %s: %w", d.OwnerID, err)
		}
		c.Items = append(c.Items, models.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price,
			Name:      it.Name,
		})
	}
	c.Total = cart.ComputeTotal(c.Items)
	return c, nil
}

func (d userDocument) toModel() models.User {
	hash := d.PasswordHash
	if hash == "" {
		hash = d.LegacyHash
	}
	role := d.Role
	if role == "" {
		role = models.RoleCustomer
	}
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Age:          d.Age,
		Email:        d.Email,
		PasswordHash: hash,
		Role:         role,
	}
}

func decimalToRaw(d decimal.Decimal) (bson.RawValue, error) {
	d128, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return bson.RawValue{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	t, data, err := bson.MarshalValue(d128)
	if err != nil {
		return bson.RawValue{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return bson.RawValue{Type: t, Value: data}, nil
}

// decimalFromRaw accepts Decimal128 as written by this service as well as the
// plain numbers older documents hold.
func decimalFromRaw(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case 0, bsontype.Null:
		return decimal.Zero, nil
	case bsontype.Decimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.String:
		return decimal.NewFromString(v.StringValue())
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric type %s", v.Type)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
