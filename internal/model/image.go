package model

// ImageRef points at a blob held by the external asset store. The service never
// reads the blob; it only keeps the reference.
type ImageRef struct {
	ID         string  `gorm:"type:varchar(64)" json:"id" validate:"required"`
	URL        string  `gorm:"type:text" json:"url" validate:"required,url"`
	ExternalID *string `gorm:"type:varchar(255)" json:"externalId,omitempty"`
}
