package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

func TestReceiptGenerator_GenerateAndFetch(t *testing.T) {
	gen, err := NewReceiptGenerator(t.TempDir(), "Oficina Central")
	require.NoError(t, err)

	doc := ports.ReceiptDocument{
		Requisition:   entity.Requisition{ID: "req-1", Number: "SR-20250801-ABCDEF12", Urgency: "alta"},
		RequesterName: "Ana",
		ApproverName:  "Luis",
		Lines:         []ports.ReceiptLine{{ItemName: "Papel bond", ItemUUID: "0f1e2d3c-aaaa", Quantity: 4}},
		IssuedAt:      time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	ref, err := gen.GenerateRequisitionReceipt(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "SR-20250801-ABCDEF12.pdf", ref)

	body, err := gen.Fetch(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestReceiptGenerator_FetchRechazaRutas(t *testing.T) {
	gen, err := NewReceiptGenerator(t.TempDir(), "")
	require.NoError(t, err)

	for _, ref := range []string{"", "../secreto.pdf", "a/b.pdf", "x.txt"} {
		_, err := gen.Fetch(context.Background(), ref)
		assert.ErrorIs(t, err, ErrInvalidRef, ref)
	}
	_, err = gen.Fetch(context.Background(), "no-existe.pdf")
	assert.Error(t, err)
}

func TestLabelGenerator(t *testing.T) {
	gen := NewLabelGenerator("https://inventario.local/i/", "Oficina Central")
	body, err := gen.GenerateItemLabel(context.Background(), entity.Item{
		UUID: "7d9c", Name: "Proyector", UnitValue: decimal.NewFromInt(1250000),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "25.000", formatMoney("25000"))
	assert.Equal(t, "1.000.000", formatMoney("1000000"))
	assert.Equal(t, "999", formatMoney("999"))
}
