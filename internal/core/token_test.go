package core_test

import (
	"errors"
	"testing"
	"time"

	"arms-backoffice/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct() *core.Product {
	return &core.Product{
		ID:              7,
		Name:            "Пистолет ТТ",
		Type:            "Оружие",
		Subtype:         "Пистолеты",
		Characteristics: map[string]any{"калибр": "7,62 мм"},
		Price:           decimal.NewFromInt(25),
		ProductionCost:  decimal.NewFromInt(10),
	}
}

func TestUnitTokenSigner_RoundTrip(t *testing.T) {
	signer := core.NewUnitTokenSigner("secret")

	token, err := signer.Sign(testProduct(), "serial-1", time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ProductID)
	assert.Equal(t, "Пистолет ТТ", claims.Name)
	assert.Equal(t, "Оружие", claims.ProductType)
	assert.Equal(t, "Пистолеты", claims.ProductSubtype)
	assert.Equal(t, "serial-1", claims.SerialNumber)
	assert.Equal(t, "25", claims.Price)
	assert.Equal(t, "10", claims.ProductionCost)
	assert.Equal(t, "7,62 мм", claims.Characteristics["калибр"])
}

func TestUnitTokenSigner_RejectsForeignSignature(t *testing.T) {
	token, err := core.NewUnitTokenSigner("secret-a").Sign(testProduct(), "serial-1", time.Now())
	require.NoError(t, err)

	_, err = core.NewUnitTokenSigner("secret-b").Parse(token)
	assert.Error(t, err)
}

func TestUnitTokenSigner_MissingKey(t *testing.T) {
	signer := core.NewUnitTokenSigner("")
	assert.False(t, signer.Ready())

	_, err := signer.Sign(testProduct(), "serial-1", time.Now())
	var config *core.ConfigurationError
	assert.True(t, errors.As(err, &config))
}
