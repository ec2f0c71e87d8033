package repositories_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"proshop/internal/models"
	"proshop/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens a private in-memory SQLite database for one test.
func newTestStore(t *testing.T) (*repositories.Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	store := repositories.NewGORMStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store, db
}

func createUser(t *testing.T, store *repositories.Store, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email}
	u.SetPassword("longenough1")
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func TestGORMUserRepository_CreateNormalizesAndHashes(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	u := createUser(t, store, "Ada", "ADA@x.com")

	stored, err := store.Users.FindByEmailWithPassword(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
	assert.Equal(t, "ada@x.com", stored.Email)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.NotEmpty(t, stored.Password)
	assert.NotEqual(t, "longenough1", stored.Password)
	assert.True(t, stored.MatchPassword("longenough1"))
}

func TestGORMUserRepository_DefaultReadsOmitPassword(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, store, "Ada", "ada@x.com")

	byID, err := store.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, byID.Password)

	byEmail, err := store.Users.FindByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Empty(t, byEmail.Password)

	all, err := store.Users.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Password)

	withPassword, err := store.Users.FindByEmailWithPassword(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, withPassword.Password)
}

func TestGORMUserRepository_SaveKeepsUnmodifiedHash(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, store, "Ada", "ada@x.com")

	before, err := store.Users.FindByEmailWithPassword(ctx, "ada@x.com")
	require.NoError(t, err)

	loaded, err := store.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	loaded.Name = "Ada Lovelace"
	require.NoError(t, store.Users.Save(ctx, loaded))

	after, err := store.Users.FindByEmailWithPassword(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", after.Name)
	assert.Equal(t, before.Password, after.Password)
}

func TestGORMUserRepository_SaveRehashesModifiedPassword(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, store, "Ada", "ada@x.com")

	loaded, err := store.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	loaded.SetPassword("anotherpassword")
	require.NoError(t, store.Users.Save(ctx, loaded))

	after, err := store.Users.FindByEmailWithPassword(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.True(t, after.MatchPassword("anotherpassword"))
	assert.False(t, after.MatchPassword("longenough1"))
}

func TestGORMUserRepository_InvalidEmailNeverWritten(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Name: "Ada", Email: "not-an-email"}
	u.SetPassword("longenough1")
	err := store.Users.Create(ctx, u)

	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("email"))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGORMUserRepository_DuplicateEmail(t *testing.T) {
	store, _ := newTestStore(t)
	createUser(t, store, "Ada", "ada@x.com")

	dup := &models.User{Name: "Other", Email: "Ada@X.com"}
	dup.SetPassword("longenough1")
	err := store.Users.Create(context.Background(), dup)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestGORMUserRepository_NotFound(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Users.FindByID(ctx, models.NewID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, store.Users.Delete(ctx, models.NewID()), repositories.ErrNotFound)
}

func seedProduct(t *testing.T, store *repositories.Store, name string, rating float64) *models.Product {
	t.Helper()
	p := models.NewSampleProduct(models.NewID())
	p.Name = name
	p.Rating = rating
	p.Price = 10
	p.CountInStock = 5
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p
}

func TestGORMProductRepository_FindPagesAndFilters(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedProduct(t, store, fmt.Sprintf("Phone %d", i), 0)
	}
	seedProduct(t, store, "Camera", 0)

	page, total, err := store.Products.Find(ctx, repositories.ProductQuery{Page: 2, PageSize: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Len(t, page, 2)

	phones, total, err := store.Products.Find(ctx, repositories.ProductQuery{Keyword: "pHoNe", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, phones, 5)
}

func TestGORMProductRepository_KeywordWildcardsAreLiteral(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, store, "Phone", 0)
	seedProduct(t, store, "100% Cotton Tee", 0)
	seedProduct(t, store, "snake_case mug", 0)

	tests := []struct {
		keyword string
		want    int64
	}{
		{"_", 1},
		{"%", 1},
		{"0% c", 1},
		{"e_c", 1},
		{`\`, 0},
		{"phone", 1},
	}
	for _, tt := range tests {
		_, total, err := store.Products.Find(ctx, repositories.ProductQuery{Keyword: tt.keyword, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, tt.want, total, "keyword %q", tt.keyword)
	}
}

func TestGORMProductRepository_Top(t *testing.T) {
	store, _ := newTestStore(t)
	seedProduct(t, store, "Low", 1)
	seedProduct(t, store, "High", 4.5)
	seedProduct(t, store, "Mid", 3)
	seedProduct(t, store, "Zero", 0)

	top, err := store.Products.Top(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "High", top[0].Name)
	assert.Equal(t, "Mid", top[1].Name)
	assert.Equal(t, "Low", top[2].Name)
}

func TestGORMProductRepository_UpdateAndDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Phone", 0)

	p.Name = "Phone Pro"
	p.CountInStock = 0
	require.NoError(t, store.Products.Update(ctx, p))

	got, err := store.Products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone Pro", got.Name)
	assert.Equal(t, 0, got.CountInStock)

	require.NoError(t, store.Products.Delete(ctx, p.ID))
	_, err = store.Products.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, store.Products.Delete(ctx, p.ID), repositories.ErrNotFound)
}

func TestGORMProductRepository_AddReview(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Phone", 0)

	review := models.Review{UserID: models.NewID(), Name: "Ada", Rating: 4, Comment: "Solid"}
	p.AddReview(review)
	require.NoError(t, store.Products.AddReview(ctx, p, &review))

	got, err := store.Products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Solid", got.Reviews[0].Comment)
	assert.Equal(t, 1, got.NumReviews)
	assert.InDelta(t, 4.0, got.Rating, 0.001)
}

func newOrder(userID string, productID string) *models.Order {
	o := &models.Order{
		UserID: userID,
		OrderItems: []models.OrderItem{
			{Name: "Phone", Qty: 2, Image: "/images/phone.jpg", Price: 60, ProductID: productID},
		},
		ShippingAddress: models.ShippingAddress{Address: "1 Main St", City: "Boston", PostalCode: "02101", Country: "USA"},
		PaymentMethod:   "PayPal",
	}
	o.ApplyPrices()
	return o
}

func TestGORMOrderRepository_Lifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	owner, other := models.NewID(), models.NewID()

	o := newOrder(owner, models.NewID())
	require.NoError(t, store.Orders.Create(ctx, o))
	require.NoError(t, store.Orders.Create(ctx, newOrder(other, models.NewID())))

	got, err := store.Orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.OrderItems, 1)
	assert.Equal(t, 2, got.OrderItems[0].Qty)
	assert.Equal(t, "Boston", got.ShippingAddress.City)
	assert.InDelta(t, o.TotalPrice, got.TotalPrice, 0.001)
	assert.False(t, got.IsPaid)

	mine, err := store.Orders.FindByUser(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := store.Orders.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	exists, err := store.Orders.ExistsByTransactionID(ctx, "TX-1")
	require.NoError(t, err)
	assert.False(t, exists)

	got.MarkPaid(models.PaymentResult{TransactionID: "TX-1", Status: "COMPLETED"}, got.CreatedAt)
	require.NoError(t, store.Orders.Update(ctx, got))

	paid, err := store.Orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "TX-1", paid.PaymentResult.TransactionID)

	exists, err = store.Orders.ExistsByTransactionID(ctx, "TX-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGORMOrderRepository_RejectsEmptyOrder(t *testing.T) {
	store, _ := newTestStore(t)
	o := newOrder(models.NewID(), models.NewID())
	o.OrderItems = nil

	var verrs models.ValidationErrors
	assert.ErrorAs(t, store.Orders.Create(context.Background(), o), &verrs)
}

func TestGORMProductRepository_HugePageIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	seedProduct(t, store, "Phone", 0)

	products, total, err := store.Products.Find(context.Background(), repositories.ProductQuery{Page: math.MaxInt, PageSize: 8})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Empty(t, products)
}
