package domain

import "time"

// Node is a ReDIB network node, the unit of independent review authority.
// Nodes are never hard-deleted while historical applications reference their
// equipment; they are deactivated instead.
type Node struct {
	ID                 int32     `json:"id"`
	Name               string    `json:"name"`
	Code               string    `json:"code"`
	Location           string    `json:"location"`
	ContactEmail       string    `json:"contact_email"`
	AcknowledgmentText string    `json:"acknowledgment_text"`
	IsActive           bool      `json:"is_active"`
	CreatedOn          time.Time `json:"created_on"`
	UpdatedOn          time.Time `json:"updated_on"`
}

type EquipmentCategory string

const (
	EquipmentMRI       EquipmentCategory = "mri"
	EquipmentPET       EquipmentCategory = "pet"
	EquipmentCT        EquipmentCategory = "ct"
	EquipmentPETCT     EquipmentCategory = "pet_ct"
	EquipmentPETMRI    EquipmentCategory = "pet_mri"
	EquipmentCyclotron EquipmentCategory = "cyclotron"
	EquipmentSPECT     EquipmentCategory = "spect"
	EquipmentOptical   EquipmentCategory = "optical"
	EquipmentOther     EquipmentCategory = "other"
)

type Equipment struct {
	ID          int32             `json:"id"`
	NodeID      int32             `json:"node_id"`
	Name        string            `json:"name"`
	Category    EquipmentCategory `json:"category"`
	Description string            `json:"description"`
	IsActive    bool              `json:"is_active"`
	CreatedOn   time.Time         `json:"created_on"`
	UpdatedOn   time.Time         `json:"updated_on"`
}
