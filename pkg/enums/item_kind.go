package enums

// ItemKind distinguishes purchasable classes in the catalog.
type ItemKind string

const (
	ItemKindCourse ItemKind = "course"
	ItemKindModel  ItemKind = "model"
)

func (k ItemKind) Valid() bool {
	switch k {
	case ItemKindCourse, ItemKindModel:
		return true
	}
	return false
}
