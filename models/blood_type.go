package models

// BloodType is one of the 8 ABO/Rh blood types.
type BloodType string

const (
	BloodONeg  BloodType = "O-"
	BloodOPos  BloodType = "O+"
	BloodANeg  BloodType = "A-"
	BloodAPos  BloodType = "A+"
	BloodBNeg  BloodType = "B-"
	BloodBPos  BloodType = "B+"
	BloodABNeg BloodType = "AB-"
	BloodABPos BloodType = "AB+"
)

// donorCompatibility maps a requested blood type to the donor types that
// may donate to it. O- donates to everyone, AB+ receives from everyone.
var donorCompatibility = map[BloodType][]BloodType{
	BloodONeg:  {BloodONeg},
	BloodOPos:  {BloodONeg, BloodOPos},
	BloodANeg:  {BloodONeg, BloodANeg},
	BloodAPos:  {BloodONeg, BloodOPos, BloodANeg, BloodAPos},
	BloodBNeg:  {BloodONeg, BloodBNeg},
	BloodBPos:  {BloodONeg, BloodOPos, BloodBNeg, BloodBPos},
	BloodABNeg: {BloodONeg, BloodANeg, BloodBNeg, BloodABNeg},
	BloodABPos: {BloodONeg, BloodOPos, BloodANeg, BloodAPos, BloodBNeg, BloodBPos, BloodABNeg, BloodABPos},
}

// CompatibleDonorTypes returns the donor blood types compatible with the
// given requested type. An unknown type yields an empty slice, so no match
// is attempted for it.
func CompatibleDonorTypes(requested BloodType) []BloodType {
	types, ok := donorCompatibility[requested]
	if !ok {
		return nil
	}
	out := make([]BloodType, len(types))
	copy(out, types)
	return out
}
