package enums

// ProductStatusFilter is the status knob accepted by the product listing.
type ProductStatusFilter string

const (
	ProductStatusAny      ProductStatusFilter = ""
	ProductStatusActive   ProductStatusFilter = "active"
	ProductStatusInactive ProductStatusFilter = "inactive"
)

func (f ProductStatusFilter) String() string {
	return string(f)
}
