// Package pdf genera con Maroto v2 los documentos imprimibles del inventario:
// el comprobante de una requisición aprobada y la etiqueta QR de un ítem.
//
// Layout del comprobante (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Organización         │  N° Requisición + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITANTE / APROBADOR / URGENCIA                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Ítem | Código | Cantidad                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + firmas                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// newDocument documento base con márgenes y fuente comunes.
func newDocument(size pagesize.Type, title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(size).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

func render(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// sectionTitle fila con un rótulo en color primario.
func sectionTitle(label string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

// keyValue fila "Rótulo: valor" a todo el ancho.
func keyValue(label, value string) core.Row {
	return row.New(5).Add(
		col.New(3).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: 0.5})),
		col.New(9).Add(text.New(nonEmpty(value, "-"), props.Text{Size: 8, Top: 0.5, Color: colorGray})),
	)
}

// headerCell celda de cabecera de tabla sobre fondo primario.
func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorWhite, Top: 2, Left: 1, Right: 1,
	})).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
