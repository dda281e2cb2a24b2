package paymentref_test

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evgen-Mutagen/paymentref/pkg/paymentref"
)

type reference string

type invoice struct {
	Reference string    `validate:"required,paymentref"`
	Alias     reference `validate:"omitempty,paymentref"`
}

type badField struct {
	Number int `validate:"paymentref"`
}

func TestRegisterValidation(t *testing.T) {
	v := validator.New()
	require.NoError(t, paymentref.RegisterValidation(v))

	t.Run("valid references", func(t *testing.T) {
		assert.NoError(t, v.Struct(invoice{Reference: "+++090/9337/55493+++"}))
		assert.NoError(t, v.Struct(invoice{Reference: "6100000000000003", Alias: "***090933755493***"}))
	})

	t.Run("invalid reference reports the tag", func(t *testing.T) {
		err := v.Struct(invoice{Reference: "+++090/9337/55494+++"})
		require.Error(t, err)

		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, 1)
		assert.Equal(t, "Reference", verrs[0].Field())
		assert.Equal(t, paymentref.Tag, verrs[0].Tag())
	})

	t.Run("named string type", func(t *testing.T) {
		err := v.Struct(invoice{Reference: "6100000000000003", Alias: "7100000000000003"})
		assert.Error(t, err)
	})

	t.Run("non-string field fails", func(t *testing.T) {
		assert.Error(t, v.Struct(badField{Number: 42}))
	})

	t.Run("var", func(t *testing.T) {
		assert.NoError(t, v.Var("06100000000000003", paymentref.Tag))
		assert.Error(t, v.Var("garbage", paymentref.Tag))
	})
}
