package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestStruct struct {
	Name  string `json:"nome" validate:"required,min=2"`
	Login string `json:"login" validate:"required"`
	Count int    `validate:"gte=0"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		err := vh.ValidateStruct(&TestStruct{Name: "Joao", Login: "joao"})
		assert.NoError(t, err)
	})

	t.Run("fields reported by json name", func(t *testing.T) {
		err := vh.ValidateStruct(&TestStruct{Name: "J", Count: -1})
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		require.Len(t, validationErrors, 3)
		assert.Equal(t, "nome", validationErrors[0].Field())
		assert.Equal(t, "login", validationErrors[1].Field())
		assert.Equal(t, "Count", validationErrors[2].Field())
	})
}

func TestValidationHelper_Validate(t *testing.T) {
	vh := NewValidationHelper()

	assert.NoError(t, vh.Validate(&TestStruct{Name: "Joao", Login: "joao"}))

	err := vh.Validate(&TestStruct{Name: "Joao"})
	assert.ErrorIs(t, err, models.ErrValidation)
	var vErr *models.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Validation failed", vErr.Message)
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("wrapped validation errors become details", func(t *testing.T) {
		vh := NewValidationHelper()
		validationErr := vh.Validate(&TestStruct{Name: "J"})
		require.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, fmt.Errorf("create entry: %w", validationErr))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Validation failed", response.Error)
		assert.Contains(t, response.Details, "nome")
		assert.Contains(t, response.Details, "login")
		assert.Equal(t, "Field Validation Failed on 'min' tag", response.Details["nome"])
	})

	t.Run("plain error is not a panic", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, errors.New("inicio must not be after fim"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Invalid request", response.Error)
		assert.Nil(t, response.Details)
	})
}

func TestAsPersistence(t *testing.T) {
	assert.NoError(t, asPersistence("op", nil))

	notFound := fmt.Errorf("entry 1: %w", models.ErrNotFound)
	assert.Same(t, notFound, asPersistence("op", notFound))

	err := asPersistence("insert entry", errors.New("connection refused"))
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("data", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 31}, d)

	for _, value := range []string{"0000-01-01", "2024-02-30", "01/01/2024"} {
		_, err := parseDate("data", value)
		assert.ErrorIs(t, err, models.ErrValidation, value)
	}
}
