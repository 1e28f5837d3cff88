package catalog

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Row is one raw record from a catalog source, keyed by column header.
type Row map[string]any

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	validate     = newValidator()
	activeTokens = map[string]struct{}{"1": {}, "true": {}, "vrai": {}, "yes": {}, "oui": {}}
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// NormalizeKey lowercases a header and collapses whitespace runs into underscores.
func NormalizeKey(k string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(k)), "_")
}

func normalizeRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[NormalizeKey(k)] = v
	}
	return out
}

// IsActive reports whether the row's active flag is a truthy token. Rows without the column are active.
func IsActive(r Row) bool {
	v, ok := r["active"]
	if !ok || v == nil {
		return true
	}
	_, truthy := activeTokens[strings.ToLower(strings.TrimSpace(cellString(v)))]
	return truthy
}

// ParseRow converts a normalised row into a Product.
func ParseRow(raw Row) (Product, error) {
	r := normalizeRow(raw)

	id, err := intField(r, "id", true)
	if err != nil {
		return Product{}, err
	}
	price, err := intField(r, "price_cents", false)
	if err != nil {
		return Product{}, err
	}
	stock, err := intField(r, "stock", false)
	if err != nil {
		return Product{}, err
	}

	p := Product{
		ID:            id,
		Name:          strings.TrimSpace(cellString(r["name"])),
		Category:      strings.TrimSpace(cellString(r["category"])),
		PriceCents:    price,
		Sizes:         strings.TrimSpace(cellString(r["sizes"])),
		Stock:         stock,
		Colors:        parseColors(cellString(r["colors"])),
		Image:         DirectImageURL(cellString(r["image_url"])),
		ImageColorMap: parseImageColorMap(cellString(r["image_color_map_json"])),
	}
	if err := validate.Struct(p); err != nil {
		return Product{}, fmt.Errorf("invalid product row: %w", err)
	}
	return p, nil
}

// ParseRows keeps active, well-formed rows and reports how many were skipped as malformed.
func ParseRows(rows []Row) ([]Product, []error) {
	products := make([]Product, 0, len(rows))
	var skipped []error
	for i, raw := range rows {
		if !IsActive(normalizeRow(raw)) {
			continue
		}
		p, err := ParseRow(raw)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		products = append(products, p)
	}
	return products, skipped
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return fmt.Sprint(t)
	}
}

func intField(r Row, key string, required bool) (int64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("%s is required", key)
		}
		return 0, nil
	}
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return decimal.NewFromFloat(t).IntPart(), nil
	}
	s := strings.TrimSpace(cellString(v))
	if s == "" {
		return 0, fmt.Errorf("%s is empty", key)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %q", key, s)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%s is not an integer: %q", key, s)
	}
	return d.IntPart(), nil
}

func parseColors(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(val, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// parseImageColorMap reads a JSON object of colour -> image reference. Invalid JSON yields an empty map.
func parseImageColorMap(val string) map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(val) == "" {
		return out
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return out
	}
	for k, v := range data {
		out[strings.TrimSpace(k)] = DirectImageURL(strings.TrimSpace(cellString(v)))
	}
	return out
}
