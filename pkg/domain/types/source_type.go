package types

import "fmt"

// SourceType represents the origin kind of a knowledge source
type SourceType string

const (
	SourceTypeWebsite  SourceType = "website"
	SourceTypeDocument SourceType = "document"
	SourceTypeManual   SourceType = "manual"
)

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeWebsite, SourceTypeDocument, SourceTypeManual:
		return true
	default:
		return false
	}
}

func (s SourceType) String() string {
	return string(s)
}

// ParseSourceType parses a string into a SourceType
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid source type: %s", s)
	}
	return st, nil
}
