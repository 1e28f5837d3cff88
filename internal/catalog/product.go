package catalog

import "strings"

// Product is one active catalog row after normalisation.
type Product struct {
	ID            int64             `json:"id" validate:"gt=0"`
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	PriceCents    int64             `json:"price_cents" validate:"gte=0"`
	Sizes         string            `json:"sizes"`
	Stock         int64             `json:"stock"`
	Colors        []string          `json:"colors"`
	Image         string            `json:"image"`
	ImageColorMap map[string]string `json:"image_color_map"`
}

// HasColors reports whether the product offers colour variants.
func (p Product) HasColors() bool {
	return len(p.Colors) > 0
}

// ResolveImage picks the image for a colour: exact key, then a case and
// whitespace-insensitive key, then the base image. Empty when nothing is set.
func ResolveImage(p Product, color string) string {
	if color != "" {
		if img, ok := p.ImageColorMap[color]; ok && img != "" {
			return img
		}
		norm := strings.ToLower(strings.TrimSpace(color))
		for k, v := range p.ImageColorMap {
			if strings.ToLower(strings.TrimSpace(k)) == norm && v != "" {
				return v
			}
		}
	}
	return p.Image
}
