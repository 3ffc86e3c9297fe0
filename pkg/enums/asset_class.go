package enums

import "fmt"

// AssetClass selects the storage policy applied to an uploaded file.
type AssetClass string

const (
	AssetClassProduct AssetClass = "product"
	AssetClassAvatar  AssetClass = "avatar"
	AssetClassInvoice AssetClass = "invoice"
)

var validAssetClasses = []AssetClass{
	AssetClassProduct,
	AssetClassAvatar,
	AssetClassInvoice,
}

// AssetClasses returns every known class.
func AssetClasses() []AssetClass {
	out := make([]AssetClass, len(validAssetClasses))
	copy(out, validAssetClasses)
	return out
}

// String implements fmt.Stringer.
func (c AssetClass) String() string {
	return string(c)
}

// IsValid reports whether the value is a known AssetClass.
func (c AssetClass) IsValid() bool {
	for _, candidate := range validAssetClasses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseAssetClass converts raw input into an AssetClass.
func ParseAssetClass(value string) (AssetClass, error) {
	for _, candidate := range validAssetClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset class %q", value)
}
