package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validUser() User {
	return User{
		UID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		City: "Toronto", Province: "ON", PhoneNumber: "555-0100",
	}
}

func TestUserValidate(t *testing.T) {
	u := validUser()
	require.NoError(t, u.Validate())

	u.City = "   "
	err := u.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "city", ve.Field)
}

func TestProductPrice(t *testing.T) {
	base := Product{Title: "Bike", Description: "Blue", Location: "Ottawa", UserID: "u1", ImageURL: "data:image/png;base64,AA=="}

	for _, price := range []float64{0, -5} {
		p := base
		p.Price = price
		assert.ErrorIs(t, p.Validate(), ErrValidation, "price %v", price)
	}
	p := base
	p.Price = 0.01
	assert.NoError(t, p.Validate())
}

func TestProductValidateFieldsIgnoresImage(t *testing.T) {
	p := Product{Title: "Bike", Description: "Blue", Location: "Ottawa", UserID: "u1", Price: 10}
	assert.NoError(t, p.ValidateFields())
	assert.ErrorIs(t, p.Validate(), ErrValidation)
}

func TestUserPatch(t *testing.T) {
	p := UserPatch{City: ptr("Montreal")}
	require.NoError(t, p.Validate())
	assert.Equal(t, map[string]any{"city": "Montreal"}, p.Columns())

	p = UserPatch{FirstName: ptr("")}
	assert.ErrorIs(t, p.Validate(), ErrValidation)

	assert.Empty(t, UserPatch{}.Columns())
}

func TestProductPatch(t *testing.T) {
	p := ProductPatch{Price: ptr(12.5)}
	require.NoError(t, p.Validate())
	assert.Equal(t, map[string]any{"price": 12.5}, p.Columns())

	assert.ErrorIs(t, ProductPatch{Price: ptr(0.0)}.Validate(), ErrValidation)
	assert.ErrorIs(t, ProductPatch{Title: ptr(" ")}.Validate(), ErrValidation)
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&StoreError{Op: "create user", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store create user: disk full", err.Error())
}
