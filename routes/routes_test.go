package routes

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"stablebank/config"
	"stablebank/database"
	"stablebank/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{JWTSecret: "test-secret"}
	// The redis client is only dialed by the challenge/verify endpoints,
	// which are not exercised here.
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	return SetupRouter(cfg, db, rdb), cfg
}

func newTestAddress(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func result(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	res, _ := envelope["result"].(map[string]interface{})
	return res
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, "GET", "/health", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "OK")
}

func TestMortgageLifecycleOverHTTP(t *testing.T) {
	r, cfg := newTestRouter(t)
	borrower := newTestAddress(t)
	adminToken, err := utils.GenerateJWT("admin", "admin", cfg.JWTSecret)
	require.NoError(t, err)

	// Register and fund the borrower wallet
	w := doJSON(t, r, "POST", "/wallets", "", gin.H{"address": borrower})
	require.Equal(t, 201, w.Code, w.Body.String())

	w = doJSON(t, r, "POST", "/wallets/"+borrower+"/deposit", "", gin.H{"amount": "5000"})
	require.Equal(t, 200, w.Code, w.Body.String())

	// Apply for the mortgage
	w = doJSON(t, r, "POST", "/mortgages", "", gin.H{
		"borrower_wallet":  borrower,
		"property_value":   "500000",
		"loan_amount":      "400000",
		"interest_rate":    "4.5",
		"term_years":       30,
		"property_address": "221B Baker Street",
	})
	require.Equal(t, 201, w.Code, w.Body.String())
	mortgage := result(t, w)
	assert.Equal(t, "pending", mortgage["status"])
	id := fmt.Sprintf("%.0f", mortgage["id"].(float64))

	// Status changes require the admin token
	w = doJSON(t, r, "PATCH", "/mortgages/"+id+"/status", "", gin.H{"status": "approved"})
	assert.Equal(t, 401, w.Code)

	w = doJSON(t, r, "PATCH", "/mortgages/"+id+"/status", adminToken, gin.H{"status": "approved"})
	require.Equal(t, 200, w.Code, w.Body.String())
	w = doJSON(t, r, "PATCH", "/mortgages/"+id+"/status", adminToken, gin.H{"status": "active"})
	require.Equal(t, 200, w.Code, w.Body.String())

	// Invalid transition is rejected
	w = doJSON(t, r, "PATCH", "/mortgages/"+id+"/status", adminToken, gin.H{"status": "pending"})
	assert.Equal(t, 400, w.Code)

	// Make a payment
	w = doJSON(t, r, "POST", "/mortgages/"+id+"/payment", "", gin.H{
		"amount":         "2026.74",
		"wallet_address": borrower,
	})
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"remaining_payments":359`)

	// Payment from a stranger is forbidden
	w = doJSON(t, r, "POST", "/mortgages/"+id+"/payment", "", gin.H{
		"amount":         "2026.74",
		"wallet_address": newTestAddress(t),
	})
	assert.Equal(t, 403, w.Code)

	// History and schedule
	w = doJSON(t, r, "GET", "/mortgages/"+id+"/payments", "", nil)
	assert.Equal(t, 200, w.Code)

	w = doJSON(t, r, "GET", "/mortgages/"+id+"/schedule", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"payment_number":360`)

	// Listing by borrower
	w = doJSON(t, r, "GET", "/mortgages/user/"+borrower, "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestMortgageValidationOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	// LTV 82% is over the cap
	w := doJSON(t, r, "POST", "/mortgages", "", gin.H{
		"borrower_wallet":  newTestAddress(t),
		"property_value":   "500000",
		"loan_amount":      "410000",
		"interest_rate":    "4.5",
		"term_years":       30,
		"property_address": "1 Main Street",
	})
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "80%")

	w = doJSON(t, r, "GET", "/mortgages/9999", "", nil)
	assert.Equal(t, 404, w.Code)
}

func TestWalletEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	address := newTestAddress(t)

	w := doJSON(t, r, "POST", "/wallets", "", gin.H{"address": address})
	require.Equal(t, 201, w.Code)

	// Duplicate registration
	w = doJSON(t, r, "POST", "/wallets", "", gin.H{"address": address})
	assert.Equal(t, 400, w.Code)

	w = doJSON(t, r, "POST", "/wallets/"+address+"/deposit", "", gin.H{"amount": "250"})
	require.Equal(t, 200, w.Code)

	// Overdrawn withdrawal fails and leaves the balance alone
	w = doJSON(t, r, "POST", "/wallets/"+address+"/withdraw", "", gin.H{"amount": "300"})
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "nsufficient")

	w = doJSON(t, r, "GET", "/wallets/"+address, "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":"250"`)

	w = doJSON(t, r, "GET", "/wallets/"+address+"/transactions?type=deposit", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = doJSON(t, r, "GET", "/wallets/"+newTestAddress(t), "", nil)
	assert.Equal(t, 404, w.Code)
}
