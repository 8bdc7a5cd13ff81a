package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginProfile(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()

	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"username": "amara",
		"email":    "amara@example.com",
		"password": "s3cretpass",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"username": "amara",
		"password": "s3cretpass",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	recorder = doJSON(t, router, http.MethodGet, "/auth/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var profile struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &profile))
	assert.Equal(t, "amara", profile.Username)
	assert.Equal(t, "customer", profile.Role)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()

	body := gin.H{"username": "amara", "email": "amara@example.com", "password": "s3cretpass"}
	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	createTestUser(t, db, "amara")

	recorder := doJSON(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"username": "amara",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()

	recorder := doJSON(t, router, http.MethodGet, "/cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/cart/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
