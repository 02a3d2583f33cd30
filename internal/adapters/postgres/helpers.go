package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// nullText creates a pgtype.Text with empty string handling
func nullText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// textValue unwraps a nullable text column to its Go zero value
func textValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// nullNumeric converts an optional decimal to pgtype.Numeric
func nullNumeric(d *decimal.Decimal) (pgtype.Numeric, error) {
	n := pgtype.Numeric{}
	if d == nil {
		return n, nil
	}
	if err := n.Scan(d.String()); err != nil {
		return n, fmt.Errorf("convert amount: %w", err)
	}
	return n, nil
}

// numericValue converts a nullable pgtype.Numeric back to an optional decimal
func numericValue(n pgtype.Numeric) (*decimal.Decimal, error) {
	if !n.Valid {
		return nil, nil
	}
	str, err := n.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal numeric: %w", err)
	}
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	dec, err := decimal.NewFromString(string(str))
	if err != nil {
		return nil, fmt.Errorf("parse numeric: %w", err)
	}
	return &dec, nil
}

// encodeMetadata serializes audit metadata for the jsonb column. Nil maps
// are stored as an empty object so reads never deal with SQL NULL.
func encodeMetadata(metadata map[string]string) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return encoded, nil
}

// decodeMetadata reads the jsonb column permissively. Rows written by earlier
// versions may hold non-string values; those are stringified rather than
// failing the whole read, and anything unparseable yields an empty map.
func decodeMetadata(raw []byte) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}

	var typed map[string]string
	if err := json.Unmarshal(raw, &typed); err == nil {
		return typed
	}

	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return map[string]string{}
	}
	metadata := make(map[string]string, len(loose))
	for key, value := range loose {
		switch v := value.(type) {
		case string:
			metadata[key] = v
		case float64:
			metadata[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			metadata[key] = strconv.FormatBool(v)
		case nil:
			metadata[key] = ""
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			metadata[key] = string(encoded)
		}
	}
	return metadata
}
