package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/config"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreDriver:     config.DriverFile,
		StorePath:       t.TempDir(),
		StoreName:       "Corner Shop",
		Currency:        "EUR",
		VATRate:         decimal.NewFromInt(20),
		InvoiceSequence: "global",
	}
}

func execute(t *testing.T, c *config.Config, args ...string) (string, error) {
	t.Helper()
	cfg, cfgErr, jsonOut = c, nil, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDemoPersistsAcrossCommands(t *testing.T) {
	c := testConfig(t)

	out, err := execute(t, c, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog: 3 new products")
	assert.Contains(t, out, "INV-")

	out, err = execute(t, c, "sale", "list", "--json")
	require.NoError(t, err)
	var list []models.Sale
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Sequence)
	assert.Equal(t, 2, list[1].Sequence)

	out, err = execute(t, c, "debt", "list", "--json")
	require.NoError(t, err)
	var debts []models.Debt
	require.NoError(t, json.Unmarshal([]byte(out), &debts))
	require.Len(t, debts, 1)
	assert.Equal(t, models.DebtStatusPending, debts[0].Status)

	out, err = execute(t, c, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog: 0 new products, 3 already present")

	out, err = execute(t, c, "export", "sales", "--delimiter", "semicolon")
	require.NoError(t, err)
	assert.Contains(t, out, ";mixed;")
	assert.Contains(t, out, "INV-")
}

func TestStockCommands(t *testing.T) {
	c := testConfig(t)

	out, err := execute(t, c, "product", "add", "PEN", "Blue pen", "--price", "1.20", "--quantity", "3", "--min", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "added PEN")

	_, err = execute(t, c, "stock", "adjust", "--", "PEN", "-5")
	assert.True(t, errors.Is(err, repository.ErrInsufficientStock), "got %v", err)

	out, err = execute(t, c, "stock", "adjust", "--reason", "lost", "--", "PEN", "-3")
	require.NoError(t, err)
	assert.Contains(t, out, "now 0")

	out, err = execute(t, c, "stock", "out", "--json")
	require.NoError(t, err)
	var products []models.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "PEN", products[0].SKU)

	out, err = execute(t, c, "product", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "SKU")
	assert.Contains(t, out, "out")
}

func TestCommandsNeedConfiguration(t *testing.T) {
	_, err := execute(t, nil, "product", "list")
	require.Error(t, err)

	cfgErr = errors.New("VAT_RATE must be a number")
	err = withLedger(productListCmd, nil)
	require.ErrorContains(t, err, "VAT_RATE")
	cfgErr = nil
}

func TestInvalidArguments(t *testing.T) {
	c := testConfig(t)

	_, err := execute(t, c, "export", "passwords")
	require.Error(t, err)

	_, err = execute(t, c, "sale", "cancel", "not-a-uuid")
	require.ErrorContains(t, err, "invalid sale id")

	_, err = execute(t, c, "stock", "adjust", "PEN", "many")
	require.ErrorContains(t, err, "invalid delta")
}
