package catalog

// printifyProductsResponse is the paginated envelope of the products listing
type printifyProductsResponse struct {
	CurrentPage int               `json:"current_page"`
	LastPage    int               `json:"last_page"`
	Data        []printifyProduct `json:"data"`
}

// printifyProduct is the subset of the Printify product payload the
// storefront needs
type printifyProduct struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Visible  bool              `json:"visible"`
	Images   []printifyImage   `json:"images"`
	Variants []printifyVariant `json:"variants"`
}

type printifyImage struct {
	Src       string `json:"src"`
	IsDefault bool   `json:"is_default"`
}

// printifyVariant carries the price in minor currency units
type printifyVariant struct {
	ID        int64 `json:"id"`
	Price     int64 `json:"price"`
	IsEnabled bool  `json:"is_enabled"`
	IsDefault bool  `json:"is_default"`
}
