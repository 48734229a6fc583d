package controllers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newControllerDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	config.DB = db
	return db
}

// seedCancellableOrder creates a placed order with one item and its wallet
// hold, the state an order is in right after checkout.
func seedCancellableOrder(t *testing.T, db *gorm.DB, stock int) (models.User, *models.Order, *models.Product) {
	t.Helper()

	user := models.User{Username: "buyer", Email: "buyer@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	product := models.Product{VendorID: 1, Title: "Copper wire", Price: 150, StockQuantity: stock, SKU: "CU-001"}
	require.NoError(t, db.Create(&product).Error)

	order := models.Order{
		OrderNumber: models.NewOrderNumber(),
		UserID:      user.ID,
		VendorID:    1,
		Subtotal:    300,
		TotalAmount: 300,
		OrderStatus: models.OrderStatusPlaced,
	}
	require.NoError(t, db.Create(&order).Error)

	item := models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 2, UnitPrice: 150, TotalPrice: 300}
	require.NoError(t, db.Create(&item).Error)

	wallet := models.Wallet{UserID: user.ID, CurrentBalance: 500, IsActive: true}
	require.NoError(t, db.Create(&wallet).Error)
	_, err := utils.HoldOrderAmount(db, &wallet, &order)
	require.NoError(t, err)

	return user, &order, &product
}

func performCancel(user models.User, orderID uint) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/orders/cancel", strings.NewReader(`{"reason":"changed my mind"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(orderID)}}
	c.Set("user", user)
	CancelOrder(c)
	return w
}

func TestCancelOrderRefundsAndRestoresStock(t *testing.T) {
	db := newControllerDB(t)
	user, order, product := seedCancellableOrder(t, db, 3)

	w := performCancel(user, order.ID)
	assert.Equal(t, 200, w.Code, w.Body.String())

	var reloadedProduct models.Product
	require.NoError(t, db.First(&reloadedProduct, product.ID).Error)
	assert.Equal(t, 5, reloadedProduct.StockQuantity, "cancelling must return the reserved stock")

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&wallet).Error)
	assert.Equal(t, 500.0, wallet.CurrentBalance)
	assert.Equal(t, 0.0, wallet.HeldAmount)

	var reloadedOrder models.Order
	require.NoError(t, db.First(&reloadedOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, reloadedOrder.OrderStatus)
	assert.Equal(t, models.EscrowStatusReleased, reloadedOrder.EscrowStatus)
}

func TestCancelOrderTwiceRefundsOnce(t *testing.T) {
	db := newControllerDB(t)
	user, order, product := seedCancellableOrder(t, db, 3)

	first := performCancel(user, order.ID)
	assert.Equal(t, 200, first.Code, first.Body.String())

	second := performCancel(user, order.ID)
	assert.Equal(t, 400, second.Code, "a cancelled order must not be cancellable again")

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&wallet).Error)
	assert.Equal(t, 500.0, wallet.CurrentBalance, "a repeated cancel must not refund twice")

	var refunds int64
	db.Model(&models.WalletTransaction{}).
		Where("order_id = ? AND transaction_type = ?", order.ID, models.TransactionTypeRefund).
		Count(&refunds)
	assert.Equal(t, int64(1), refunds)

	var reloadedProduct models.Product
	require.NoError(t, db.First(&reloadedProduct, product.ID).Error)
	assert.Equal(t, 5, reloadedProduct.StockQuantity, "stock must be restored exactly once")
}
