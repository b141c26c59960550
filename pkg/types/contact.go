package types

// Contact is embedded into orders and frozen at creation time.
type Contact struct {
	Name  string `gorm:"column:contact_name;not null" json:"name"`
	Email string `gorm:"column:contact_email;not null" json:"email"`
	Phone string `gorm:"column:contact_phone;not null" json:"phone"`
}

// ShippingAddress is the destination snapshot. Pin is exactly six ASCII
// digits; every other field is required-non-empty.
type ShippingAddress struct {
	Address string `gorm:"column:ship_address;not null" json:"address"`
	City    string `gorm:"column:ship_city;not null" json:"city"`
	State   string `gorm:"column:ship_state;not null" json:"state"`
	Pin     string `gorm:"column:ship_pin;not null" json:"pin"`
}
