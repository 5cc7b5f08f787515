package calculator

import (
	"strings"

	"StockScope/internal/model"
)

// Field selects which bar value an average is computed over.
type Field string

const (
	FieldOpen   Field = "open"
	FieldHigh   Field = "high"
	FieldLow    Field = "low"
	FieldClose  Field = "close"
	FieldVolume Field = "volume"
)

// ParseField accepts a case-insensitive field name; empty means close.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FieldClose, nil
	}
	if err := f.validate(); err != nil {
		return "", err
	}
	return f, nil
}

func (f Field) validate() error {
	switch f {
	case FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume:
		return nil
	}
	return &ParamError{Param: "field", Value: string(f), Reason: "must be one of open, high, low, close, volume"}
}

func (f Field) extract(series model.Series) []float64 {
	values := make([]float64, len(series))
	for i, b := range series {
		switch f {
		case FieldOpen:
			values[i] = b.Open
		case FieldHigh:
			values[i] = b.High
		case FieldLow:
			values[i] = b.Low
		case FieldVolume:
			values[i] = float64(b.Volume)
		default:
			values[i] = b.Close
		}
	}
	return values
}
