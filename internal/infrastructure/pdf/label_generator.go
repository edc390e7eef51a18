package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

var _ ports.LabelGenerator = (*LabelGenerator)(nil)

// LabelGenerator etiqueta imprimible con el QR del token público del ítem.
// BaseURL se antepone al token para que el QR abra la ficha del ítem.
type LabelGenerator struct {
	BaseURL      string
	Organization string
}

// NewLabelGenerator construye el generador de etiquetas.
func NewLabelGenerator(baseURL, organization string) *LabelGenerator {
	return &LabelGenerator{BaseURL: baseURL, Organization: organization}
}

// GenerateItemLabel devuelve el PDF de la etiqueta.
func (g *LabelGenerator) GenerateItemLabel(ctx context.Context, item entity.Item) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := newDocument(pagesize.A5, "Etiqueta "+item.Name, g.Organization)

	m.AddRows(row.New(10).Add(col.New(12).Add(
		text.New(nonEmpty(g.Organization, "Inventario"), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Center, Color: colorPrimary, Top: 2,
		}),
	)))
	m.AddRows(row.New(80).Add(
		col.New(2),
		col.New(8).Add(code.NewQr(g.BaseURL+item.UUID, props.Rect{Percent: 100, Center: true})),
		col.New(2),
	))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(item.Name, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 2}),
	)))
	m.AddRows(
		keyValue("Serie:", item.SerialNumber),
		keyValue("Categoría:", item.Category),
		keyValue("Valor unitario:", "$"+formatMoney(item.UnitValue.StringFixed(0))),
		keyValue("Token:", item.UUID),
	)
	return render(m)
}
