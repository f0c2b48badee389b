package definitions

// maxShopTabs caps tabs per shop; the wire encoding uses a signed byte for
// the tab index, so a lower arbitrary limit is applied.
const maxShopTabs = 100

// ShopType distinguishes normal currency shops from COMP shops.
type ShopType string

// Shop types.
const (
	ShopNormal ShopType = "normal"
	ShopCOMP   ShopType = "comp"
)

// ShopProduct is one purchasable entry in a shop tab.
type ShopProduct struct {
	ProductID uint32
	// BasePrice is the listed price before any modifiers.
	BasePrice uint32
	// Trend selects the price fluctuation behavior. Zero means static.
	Trend uint8
}

// ShopTab groups products under a named tab.
type ShopTab struct {
	Name     string
	Products []*ShopProduct
}

// Shop is a vendor definition.
type Shop struct {
	ShopID uint32
	Type   ShopType
	Tabs   []*ShopTab
}
