package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Location ubicación física (oficina, bodega, unidad) que puede custodiar ítems.
// Personnel es el responsable de registro; sin él la ubicación no puede recibir custodia.
type Location struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Personnel     string    `json:"personnel,omitempty"`
	PersonnelID   string    `json:"personnel_id,omitempty"` // usuario responsable, si existe
	PersonnelCode string    `json:"personnel_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasPersonnel la ubicación tiene responsable de registro.
func (l *Location) HasPersonnel() bool { return l != nil && (l.Personnel != "" || l.PersonnelID != "") }

// PersonnelCodePrefix prefijo "NIA-PERS-{LOC}-" derivado de las letras del
// nombre (hasta 4). Con menos de 3 letras se usa GEN.
func PersonnelCodePrefix(locationName string) string {
	var b strings.Builder
	for _, r := range locationName {
		if b.Len() == 4 {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	code := b.String()
	if len(code) < 3 {
		code = "GEN"
	}
	return "NIA-PERS-" + code + "-"
}

// PersonnelCode código correlativo del responsable de registro.
func PersonnelCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}
