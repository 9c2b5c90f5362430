package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resto/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestFormatValidationErrors(t *testing.T) {
	type createIngredient struct {
		Name string `json:"name" binding:"required,min=1,max=255"`
		Unit string `json:"unit" binding:"required,min=1,max=32"`
	}

	SetupValidator()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/ingredients", func(c *gin.Context) {
		var req createIngredient
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})

	t.Run("returns field details for invalid input", func(t *testing.T) {
		body := strings.NewReader(`{"name": ""}`)
		req := httptest.NewRequest("POST", "/ingredients", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)

		// Field names come from the JSON tag, not the struct field
		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "unit")
	})

	t.Run("passes valid input through", func(t *testing.T) {
		body := strings.NewReader(`{"name": "Arborio Rice", "unit": "kg"}`)
		req := httptest.NewRequest("POST", "/ingredients", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestValidationMessage(t *testing.T) {
	type ruleSet struct {
		Required string `binding:"required"`
		Min      string `binding:"min=5"`
		Max      string `binding:"max=3"`
		UUID     string `binding:"uuid"`
		OneOf    string `binding:"oneof=asc desc"`
		GT       int    `binding:"gt=0"`
	}

	v := validator.New()
	// gin declares its rules under the binding tag, not validator's default
	v.SetTagName("binding")
	err := v.Struct(ruleSet{Max: "long", UUID: "nope", OneOf: "sideways", GT: -1})
	require.Error(t, err)

	expected := map[string]string{
		"Required": "This field is required",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 3 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: asc desc",
		"GT":       "Must be greater than 0",
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	seen := map[string]bool{}
	for _, e := range validationErrs {
		want, known := expected[e.StructField()]
		require.True(t, known, "unexpected failed field %s", e.StructField())
		assert.Equal(t, want, validationMessage(e))
		seen[e.StructField()] = true
	}
	assert.Len(t, seen, len(expected))
}
