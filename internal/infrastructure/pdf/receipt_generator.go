package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
)

var _ ports.ReceiptArtifactGenerator = (*ReceiptGenerator)(nil)

// ErrInvalidRef referencia de artefacto con formato inválido.
var ErrInvalidRef = errors.New("pdf: referencia de comprobante inválida")

// ReceiptGenerator genera el comprobante de una requisición aprobada y lo
// guarda en Dir. La referencia devuelta es el nombre del archivo.
type ReceiptGenerator struct {
	Dir          string
	Organization string
}

// NewReceiptGenerator construye el generador; crea el directorio si no existe.
func NewReceiptGenerator(dir, organization string) (*ReceiptGenerator, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("pdf: crear directorio de comprobantes: %w", err)
	}
	return &ReceiptGenerator{Dir: dir, Organization: organization}, nil
}

// GenerateRequisitionReceipt arma el PDF y lo escribe en disco.
func (g *ReceiptGenerator) GenerateRequisitionReceipt(ctx context.Context, doc ports.ReceiptDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := g.Render(doc)
	if err != nil {
		return "", err
	}
	ref := doc.Requisition.Number + ".pdf"
	if err := os.WriteFile(filepath.Join(g.Dir, ref), body, 0o640); err != nil {
		return "", fmt.Errorf("pdf: guardar comprobante: %w", err)
	}
	return ref, nil
}

// Fetch lee el comprobante guardado bajo ref.
func (g *ReceiptGenerator) Fetch(_ context.Context, ref string) ([]byte, error) {
	if ref == "" || ref != filepath.Base(ref) || !strings.HasSuffix(ref, ".pdf") {
		return nil, ErrInvalidRef
	}
	body, err := os.ReadFile(filepath.Join(g.Dir, ref))
	if err != nil {
		return nil, fmt.Errorf("pdf: leer comprobante %s: %w", ref, err)
	}
	return body, nil
}

// Render genera los bytes del comprobante sin tocar disco.
func (g *ReceiptGenerator) Render(doc ports.ReceiptDocument) ([]byte, error) {
	req := doc.Requisition
	m := newDocument(pagesize.A4, "Comprobante de requisición "+req.Number, g.Organization)

	m.AddRows(receiptHeader(g.Organization, req.Number, doc.IssuedAt.Format("02/01/2006 15:04")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle("DATOS DE LA SOLICITUD"))
	m.AddRows(
		keyValue("Solicitante:", doc.RequesterName),
		keyValue("Aprobado por:", doc.ApproverName),
		keyValue("Urgencia:", req.Urgency),
		keyValue("Observaciones:", req.Notes),
	)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(row.New(8).Add(
		headerCell("#", 1, align.Center),
		headerCell("Ítem", 6, align.Left),
		headerCell("Código", 3, align.Left),
		headerCell("Cantidad", 2, align.Right),
	))
	for i, l := range doc.Lines {
		m.AddRows(row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(l.ItemName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(shortToken(l.ItemUUID), props.Text{Size: 7, Top: 1.5, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(strconv.Itoa(l.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(receiptFooter(req.Number, req.ID))

	return render(m)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func receiptHeader(org, number, issued string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(org, "Inventario"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Oficina de suministros", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE REQUISICIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Emitido: "+issued, props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

// receiptFooter QR de verificación y espacio para firmas de entrega y recibo.
func receiptFooter(number, id string) core.Row {
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(number+"|"+id, props.Rect{Percent: 90, Center: true})),
		col.New(4).Add(
			text.New("______________________", props.Text{Size: 9, Align: align.Center, Top: 28}),
			text.New("Entregado por", props.Text{Size: 8, Align: align.Center, Top: 33, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("______________________", props.Text{Size: 9, Align: align.Center, Top: 28}),
			text.New("Recibido por", props.Text{Size: 8, Align: align.Center, Top: 33, Color: colorGray}),
		),
	)
}

func shortToken(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}
