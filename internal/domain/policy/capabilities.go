// Package policy concentra la matriz de capacidades: quién puede ejecutar cada
// transición según su rol y su relación con la entidad afectada.
package policy

import (
	"fmt"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// Action transición o lectura sujeta a autorización.
type Action string

// Acciones de requisición.
const (
	RequisitionCreate         Action = "requisition.create"
	RequisitionRead           Action = "requisition.read"
	RequisitionCancel         Action = "requisition.cancel"
	RequisitionOfficeApprove  Action = "requisition.office_approve"
	RequisitionAssignApprover Action = "requisition.assign_approver"
	RequisitionApprove        Action = "requisition.approve"
	RequisitionMarkReady      Action = "requisition.mark_ready"
	RequisitionFulfill        Action = "requisition.fulfill"
	RequisitionReject         Action = "requisition.reject"          // sin aprobador asignado
	RequisitionRejectAssigned Action = "requisition.reject_assigned" // con aprobador asignado
)

// Acciones de custodia e inventario.
const (
	ReceiptIssue       Action = "receipt.issue"
	ReceiptReturn      Action = "receipt.return"
	ReceiptReport      Action = "receipt.report_incident"
	ReceiptRecover     Action = "receipt.recover"
	ReceiptReturnFound Action = "receipt.return_found"
	ReceiptReassign    Action = "receipt.reassign"
	ReceiptBulkClear   Action = "receipt.bulk_clear"
	ReceiptFormalize   Action = "receipt.formalize"
	ReceiptReissue     Action = "receipt.reissue"
	ReceiptRead        Action = "receipt.read"
	ItemManage         Action = "item.manage"
	StockAdjust        Action = "stock.adjust"
)

// Relation vínculo del actor con la entidad sobre la que actúa.
type Relation string

const (
	Any              Relation = "any"               // basta el rol
	Requester        Relation = "requester"         // creó la requisición
	TargetOffice     Relation = "target_office"     // es la oficina destino (o no hay destino)
	AssignedApprover Relation = "assigned_approver" // es el aprobador asignado
	Custodian        Relation = "custodian"         // es el custodio nombrado en el recibo
	PersonnelOf      Relation = "personnel_of"      // es el responsable de la ubicación custodia
)

var allRoles = []string{entity.RoleRequester, entity.RoleSupply, entity.RoleApprover, entity.RoleAdmin}

// matrix (acción, rol) → relaciones suficientes. Una entrada Any no exige vínculo.
var matrix = map[Action]map[string][]Relation{
	RequisitionCreate: every(Any),
	RequisitionRead: {
		entity.RoleRequester: {Requester},
		entity.RoleSupply:    {Any},
		entity.RoleApprover:  {Any},
		entity.RoleAdmin:     {Any},
	},
	RequisitionCancel:        every(Requester),
	RequisitionOfficeApprove: {entity.RoleSupply: {TargetOffice}},
	RequisitionAssignApprover: {
		entity.RoleSupply: {TargetOffice},
		entity.RoleAdmin:  {Any},
	},
	RequisitionApprove: {
		entity.RoleApprover: {AssignedApprover},
		entity.RoleAdmin:    {AssignedApprover},
	},
	RequisitionMarkReady: {
		entity.RoleSupply:   {TargetOffice},
		entity.RoleApprover: {AssignedApprover},
		entity.RoleAdmin:    {AssignedApprover},
	},
	RequisitionFulfill: {
		entity.RoleSupply: {TargetOffice},
		entity.RoleAdmin:  {Any},
	},
	RequisitionReject: {
		entity.RoleSupply: {TargetOffice},
		entity.RoleAdmin:  {Any},
	},
	RequisitionRejectAssigned: {
		entity.RoleApprover: {AssignedApprover},
		entity.RoleAdmin:    {AssignedApprover},
	},

	ReceiptIssue:  {entity.RoleSupply: {Any}, entity.RoleAdmin: {Any}},
	ReceiptReturn: {entity.RoleSupply: {Any}, entity.RoleAdmin: {Any}},
	ReceiptReport: {
		entity.RoleRequester: {Custodian, PersonnelOf},
		entity.RoleSupply:    {Custodian, PersonnelOf},
		entity.RoleApprover:  {Custodian, PersonnelOf},
		entity.RoleAdmin:     {Any},
	},
	ReceiptRecover:     {entity.RoleAdmin: {Any}},
	ReceiptReturnFound: every(Any),
	ReceiptReassign:    {entity.RoleAdmin: {Any}},
	ReceiptBulkClear:   {entity.RoleAdmin: {Any}},
	ReceiptFormalize:   {entity.RoleAdmin: {Any}},
	ReceiptReissue:     {entity.RoleSupply: {Any}, entity.RoleAdmin: {Any}},
	ReceiptRead: {
		entity.RoleRequester: {Custodian, PersonnelOf},
		entity.RoleSupply:    {Any},
		entity.RoleApprover:  {Any},
		entity.RoleAdmin:     {Any},
	},
	ItemManage:  {entity.RoleSupply: {Any}, entity.RoleAdmin: {Any}},
	StockAdjust: {entity.RoleSupply: {Any}, entity.RoleAdmin: {Any}},
}

func every(rels ...Relation) map[string][]Relation {
	m := make(map[string][]Relation, len(allRoles))
	for _, r := range allRoles {
		m[r] = rels
	}
	return m
}

// Allowed consulta la matriz sin construir error.
func Allowed(action Action, role string, held ...Relation) bool {
	for _, need := range matrix[action][role] {
		if need == Any {
			return true
		}
		for _, h := range held {
			if h == need {
				return true
			}
		}
	}
	return false
}

// Authorize devuelve domain.ErrForbidden (envuelto con contexto) si el rol y las
// relaciones del actor no habilitan la acción.
func Authorize(action Action, role string, held ...Relation) error {
	if Allowed(action, role, held...) {
		return nil
	}
	return fmt.Errorf("%w: rol %q sin capacidad para %s", domain.ErrForbidden, role, action)
}
