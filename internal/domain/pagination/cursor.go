package pagination

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
)

// Cursor points at the last row of a page. Only ID is authoritative: the
// sort value is resolved again from storage when the cursor is used, Value
// is informational for clients.
type Cursor struct {
	ID    id.ID `json:"id"`
	Value any   `json:"value"`
}

// Token encodes c as an opaque URL-safe string.
func (c Cursor) Token() string {
	data, err := json.Marshal(c)
	if err != nil {
		// Only unsupported Value types fail, fall back to the id alone.
		data, _ = json.Marshal(Cursor{ID: c.ID})
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// ParseToken decodes a token produced by Token.
func ParseToken(token string) (Cursor, error) {
	var c Cursor
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return c, apperror.NewValidation("malformed cursor").WithDetail("cursor", token).WithCause(err)
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, apperror.NewValidation("malformed cursor").WithDetail("cursor", token).WithCause(err)
	}
	if id.IsNil(c.ID) {
		return c, apperror.NewValidation("malformed cursor").WithDetail("cursor", token)
	}
	return c, nil
}
