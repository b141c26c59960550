package enums

// PaymentMethod selects how the buyer settles the order.
type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "COD"
	PaymentMethodRazorpay PaymentMethod = "RAZORPAY"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodRazorpay
}

func (m PaymentMethod) String() string {
	return string(m)
}
