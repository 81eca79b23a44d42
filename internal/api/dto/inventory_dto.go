package dto

// InventoryUpdateRequest payload. Units is a signed adjustment.
type InventoryUpdateRequest struct {
	BloodGroup string `json:"bloodGroup" validate:"required,bloodgroup"`
	Units      int    `json:"units" validate:"ne=0"`
}
