package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	id := uuid.New()

	token, err := GenerateJWT(id, "owner@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWT_RejectsExpiredAndForeignTokens(t *testing.T) {
	SetJWTSecret("test-secret")

	expired, err := GenerateJWT(uuid.New(), "a@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	SetJWTSecret("other-secret")
	foreign, err := GenerateJWT(uuid.New(), "a@example.com", time.Hour)
	require.NoError(t, err)
	SetJWTSecret("test-secret")
	_, err = ValidateJWT(foreign)
	assert.Error(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: uuid.NewString()})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateJWT(raw)
	assert.Error(t, err)
}

func TestGenerateInvoiceNumber(t *testing.T) {
	issued := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	num, err := GenerateInvoiceNumber(issued)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^INV-20240309-[A-Z0-9]{6}$`), num)
}

func TestValidateStruct_Phone(t *testing.T) {
	type form struct {
		Phone string `json:"phoneNo" validate:"required,phone"`
	}

	valid := []string{"+91 98765 43210", "(555) 123-4567", "5551234"}
	for _, phone := range valid {
		assert.NoError(t, ValidateStruct(&form{Phone: phone}), phone)
	}

	invalid := []string{"abc", "12", "+1 555 CALL NOW", "------"}
	for _, phone := range invalid {
		err := ValidateStruct(&form{Phone: phone})
		require.Error(t, err, phone)
		errs := GetValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, "phoneNo", errs[0].Field)
	}
}

func TestValidateStruct_NotBlank(t *testing.T) {
	type form struct {
		Name string `validate:"notblank"`
	}
	assert.Error(t, ValidateStruct(&form{Name: "   "}))
	assert.NoError(t, ValidateStruct(&form{Name: "Acme"}))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Paginate(items, PaginationParams{Page: 1, Limit: 2}))
	assert.Equal(t, []int{5}, Paginate(items, PaginationParams{Page: 3, Limit: 2}))
	assert.Empty(t, Paginate(items, PaginationParams{Page: 4, Limit: 2}))

	result := CreatePaginationResult(items, int64(len(items)), PaginationParams{Page: 1, Limit: 2})
	assert.Equal(t, 3, result.TotalPages)
}
