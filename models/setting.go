package models

type Setting struct {
	ID             int    `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:100" json:"name"`
	Company        string `gorm:"size:150" json:"company"`
	Logo           string `gorm:"size:255" json:"logo"`
	Maintenance    bool   `gorm:"not null;default:false" json:"maintenance"`
	ClosedRegister bool   `gorm:"not null;default:false" json:"closed_register"`
	SupportLink    string `gorm:"size:255" json:"support_link"`
}
