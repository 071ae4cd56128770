package attrdump

import "strings"

// Attribute names the post field extracted during a crawl.
type Attribute string

// Attributes carried by every post element of the API.
const (
	AttributeFileURL    Attribute = "file_url"
	AttributeSampleURL  Attribute = "sample_url"
	AttributePreviewURL Attribute = "preview_url"
	AttributeID         Attribute = "id"
	AttributeSource     Attribute = "source"
)

// Attributes returns every supported attribute.
func Attributes() []Attribute {
	return []Attribute{
		AttributeFileURL,
		AttributeSampleURL,
		AttributePreviewURL,
		AttributeID,
		AttributeSource,
	}
}

// Validate returns EINVALID if a is not a supported attribute.
func (a Attribute) Validate() error {
	for _, known := range Attributes() {
		if a == known {
			return nil
		}
	}
	return Errorf(EINVALID, "unsupported attribute %q", string(a))
}

// ParseAttribute returns the attribute for name.
// Matching is case-insensitive and accepts dashes in place of underscores.
func ParseAttribute(name string) (Attribute, error) {
	a := Attribute(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}
