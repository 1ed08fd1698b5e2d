package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Murilo2811/relm-care-plus/internal/middleware"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_relm"
	JWTSecret  = "relm-care-test-jwt-secret"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "relm")
	password := getEnv("DB_PASSWORD", "relm")
	dbname := getEnv("DB_NAME", "relm_care")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// Create a unique test schema for isolation
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.Store{},
		&entity.User{},
		&entity.Claim{},
		&entity.ClaimEvent{},
		&entity.ClaimAttachment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// Cleanup on test completion
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name string, role entity.Role, storeID string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"uid":      userID,
		"name":     name,
		"email":    userID + "@test.com",
		"role":     string(role),
		"store_id": storeID,
		"iss":      "relm-care-plus",
		"iat":      now.Unix(),
		"exp":      now.Add(24 * time.Hour).Unix(),
		"jti":      fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// AdminToken returns a token for a default admin test user
func AdminToken() string {
	return GenerateTestToken("test-admin-001", "Test Admin", entity.RoleAdmin, "")
}

// StoreToken returns a token for a store-bound test user
func StoreToken(storeID string) string {
	return GenerateTestToken("test-store-001", "Test Store User", entity.RoleStore, storeID)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedStore creates a test store in the database
func SeedStore(t *testing.T, db *gorm.DB, tradeName string, aliases ...string) *entity.Store {
	t.Helper()
	store := &entity.Store{
		ID:        uuid.New().String()[:32],
		TradeName: tradeName,
		LegalName: tradeName + " Ltda",
		CNPJ:      fmt.Sprintf("%014d", time.Now().UnixNano()%100000000000000),
		Aliases:   aliases,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("Failed to seed test store: %v", err)
	}
	return store
}

// SeedUser creates a test user in the database
func SeedUser(t *testing.T, db *gorm.DB, name string, role entity.Role, storeID *string) *entity.User {
	t.Helper()
	id := uuid.New().String()[:32]
	user := &entity.User{
		ID:        id,
		Name:      name,
		Email:     id[:8] + "@test.com",
		Role:      role,
		StoreID:   storeID,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedClaim creates a test claim in the database
func SeedClaim(t *testing.T, db *gorm.DB, status entity.ClaimStatus, storeID *string) *entity.Claim {
	t.Helper()
	now := time.Now()
	linkStatus := entity.LinkPendingReview
	if storeID != nil && *storeID != "" {
		linkStatus = entity.LinkLinkedAuto
	}
	claim := &entity.Claim{
		ID:                 uuid.New().String()[:32],
		ProtocolNumber:     fmt.Sprintf("HB-%s-%04d", now.Format("20060102"), now.UnixNano()%9000+1000),
		CustomerName:       "Maria da Silva",
		CustomerPhone:      "11987654321",
		CustomerEmail:      "maria@example.com",
		ItemType:           "bicicleta",
		ProductDescription: "Bicicleta aro 29 com defeito no quadro",
		PurchaseStoreName:  "Loja Teste",
		PurchaseStoreCity:  "São Paulo",
		PurchaseStoreState: "SP",
		StoreID:            storeID,
		LinkStatus:         linkStatus,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := db.Create(claim).Error; err != nil {
		t.Fatalf("Failed to seed test claim: %v", err)
	}
	return claim
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
