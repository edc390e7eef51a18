// Package ports define los puertos de salida que usan los motores de la capa
// de aplicación. Cada adaptador de infraestructura implementa uno de ellos.
package ports

import (
	"context"
	"time"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una unidad de trabajo serializable, pasando
// repositorios atados a ella. Si fn devuelve error no se persiste nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// Clock fuente de tiempo inyectable; los periodos se derivan de su lectura.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapta una función a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reloj de pared en UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// CustodianDirectory consulta de sólo lectura de usuarios y ubicaciones.
// Devuelve (nil, nil) si la entidad no existe.
type CustodianDirectory interface {
	User(ctx context.Context, id string) (*entity.User, error)
	Location(ctx context.Context, id string) (*entity.Location, error)
}

// EventSink recibe un evento por transición confirmada. La entrega es externa.
type EventSink interface {
	Publish(ctx context.Context, event entity.DomainEvent) error
}

// ReceiptLine línea despachable del comprobante de requisición.
type ReceiptLine struct {
	ItemName string
	ItemUUID string
	Quantity int
}

// ReceiptDocument datos para el comprobante de una requisición aprobada.
type ReceiptDocument struct {
	Requisition   entity.Requisition
	RequesterName string
	ApproverName  string
	Lines         []ReceiptLine
	IssuedAt      time.Time
}

// ReceiptArtifactGenerator produce el comprobante durable de una requisición
// aprobada. El núcleo sólo guarda la referencia devuelta.
type ReceiptArtifactGenerator interface {
	GenerateRequisitionReceipt(ctx context.Context, doc ReceiptDocument) (ref string, err error)
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// LabelGenerator genera la etiqueta QR de un ítem.
type LabelGenerator interface {
	GenerateItemLabel(ctx context.Context, item entity.Item) ([]byte, error)
}

// DirectoryInvalidator descarta copias en caché de un custodio tras modificarlo.
// kind es entity.CustodianUser o entity.CustodianLocation.
type DirectoryInvalidator interface {
	Forget(ctx context.Context, kind, id string)
}
