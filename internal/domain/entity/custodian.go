package entity

// Tipos de custodio.
const (
	CustodianUser     = "USER"
	CustodianLocation = "LOCATION"
)

// Custodian identifica a quien responde por un ítem: un usuario o una ubicación.
type Custodian struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// UserCustodian custodio de tipo usuario.
func UserCustodian(id string) Custodian { return Custodian{Kind: CustodianUser, ID: id} }

// LocationCustodian custodio de tipo ubicación.
func LocationCustodian(id string) Custodian { return Custodian{Kind: CustodianLocation, ID: id} }

// Valid exige exactamente un lado: tipo conocido e ID no vacío.
func (c Custodian) Valid() bool {
	return (c.Kind == CustodianUser || c.Kind == CustodianLocation) && c.ID != ""
}

// Pointer convierte el custodio al puntero de custodia del ítem.
func (c Custodian) Pointer() CustodyPointer {
	switch c.Kind {
	case CustodianUser:
		return CustodyPointer{UserID: c.ID}
	case CustodianLocation:
		return CustodyPointer{LocationID: c.ID}
	}
	return CustodyPointer{}
}

func (c Custodian) String() string { return c.Kind + ":" + c.ID }

// CustodyPointer atribución actual de un ítem. A lo sumo un lado no vacío.
type CustodyPointer struct {
	UserID     string `json:"user_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
}

// IsEmpty el ítem no está asignado a nadie.
func (p CustodyPointer) IsEmpty() bool { return p.UserID == "" && p.LocationID == "" }

// Valid falso si ambos lados están presentes (dato histórico corrupto).
func (p CustodyPointer) Valid() bool { return p.UserID == "" || p.LocationID == "" }

// Custodian devuelve el custodio del puntero; ok=false si está vacío o es inválido.
func (p CustodyPointer) Custodian() (Custodian, bool) {
	if !p.Valid() {
		return Custodian{}, false
	}
	if p.UserID != "" {
		return UserCustodian(p.UserID), true
	}
	if p.LocationID != "" {
		return LocationCustodian(p.LocationID), true
	}
	return Custodian{}, false
}

// Matches el puntero apunta exactamente a c.
func (p CustodyPointer) Matches(c Custodian) bool {
	return p == c.Pointer()
}
