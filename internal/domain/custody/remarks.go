// Package custody reúne la lógica pura de custodia: sobres de recuperación,
// elegibilidad de reemisión y la vista efectiva de custodia.
package custody

import (
	"time"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// PriorIncidents historial de incidentes cerrados que arrastran las observaciones actuales.
func PriorIncidents(r entity.Remarks) []entity.IncidentRecord {
	if r.Recovery != nil {
		return r.Recovery.History
	}
	return nil
}

// NewIncident construye el incidente numerándolo a continuación del historial previo.
func NewIncident(current entity.Remarks, in entity.Incident) *entity.Incident {
	prev := PriorIncidents(current)
	inc := in
	inc.Number = len(prev) + 1
	inc.PreviousIncidents = append([]entity.IncidentRecord(nil), prev...)
	inc.RepeatIncident = len(prev) > 0
	return &inc
}

// RecoveryEnvelope reescribe las observaciones de un recibo LOST/DAMAGED al
// recuperarse. El incidente original queda anidado y se agrega al historial,
// que nunca se sobrescribe.
func RecoveryEnvelope(status string, current entity.Remarks, info entity.RecoveryInfo) entity.Remarks {
	prior := PriorIncidents(current)
	if current.Recovery == nil && current.Incident != nil {
		prior = current.Incident.PreviousIncidents
	}
	history := append([]entity.IncidentRecord(nil), prior...)
	env := &entity.RecoveryEnvelope{
		Recovered:      true,
		OriginalStatus: status,
		OriginalNote:   current.Note,
		Info:           info,
	}
	if current.Incident != nil {
		orig := *current.Incident
		env.OriginalIncident = &orig
		history = append(history, entity.IncidentRecord{
			Number:   orig.Number,
			Incident: stripHistory(orig),
			Recovery: info,
		})
		env.History = history
	} else {
		env.History = append(history, entity.IncidentRecord{
			Number:   len(history) + 1,
			Incident: entity.Incident{Type: status},
			Recovery: info,
		})
	}
	env.IncidentCount = len(env.History)
	return entity.Remarks{Note: info.Notes, Recovery: env}
}

func stripHistory(in entity.Incident) entity.Incident {
	in.PreviousIncidents = nil
	return in
}

// RecoveryInfoAt datos de recuperación con marca de tiempo del procesamiento.
func RecoveryInfoAt(actorID, recoveredBy, notes string, recoveryDate, now time.Time) entity.RecoveryInfo {
	if recoveredBy == "" {
		recoveredBy = actorID
	}
	if recoveryDate.IsZero() {
		recoveryDate = now
	}
	return entity.RecoveryInfo{
		Notes:        notes,
		RecoveredBy:  recoveredBy,
		RecoveryDate: recoveryDate,
		RecoveredAt:  now,
		ProcessedBy:  actorID,
	}
}
