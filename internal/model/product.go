package model

// Product is a catalog entry as served by the remote API.
type Product struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"image_url"`
	Category    string   `json:"category"`
	Available   bool     `json:"available"`
	PriceRange  string   `json:"price_range,omitempty"`
}

// Thumbnail returns the first image URL, or "" if the product has none.
func (p Product) Thumbnail() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}
