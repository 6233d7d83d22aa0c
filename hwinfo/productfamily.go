package hwinfo

// ProductFamily is the closed enumeration of hardware product families the
// driver knows how to drive. Factory tables (for example the command queue
// creation table) are keyed by it.
type ProductFamily int

//go:generate go tool enumer -type ProductFamily productfamily.go

const (
	ProductUnknown ProductFamily = iota
	ProductSKL
	ProductICLLP
	ProductTGLLP
	ProductDG1
	ProductADLS

	// MaxProduct bounds the valid family values.
	MaxProduct
)
