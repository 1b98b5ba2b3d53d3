package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/saju-admin-api/internal/gyeokguk"
)

// RoleShape records which wire shape a RoleSlots value was decoded from.
type RoleShape int

const (
	RoleShapeAbsent RoleShape = iota
	RoleShapeList
	RoleShapeSlots
)

// RoleSlots is the canonical four-slot role mapping of a judgment. Any of the
// three wire shapes (null, legacy ordered list, first..fourth object) decode into
// it; Shape only remembers the source so display code can keep legacy lists flat.
// Legacy lists longer than the slot count keep their tail in Overflow for
// display; it never reaches the slot mapping.
type RoleSlots struct {
	Values   [gyeokguk.MaxRoleSlots]string
	Shape    RoleShape
	Overflow []string
}

type roleSlotsWire struct {
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
	Third  string `json:"third,omitempty"`
	Fourth string `json:"fourth,omitempty"`
}

// NewRoleSlots builds a canonical mapping from ordered values; extra values are dropped.
func NewRoleSlots(values ...string) RoleSlots {
	var r RoleSlots
	for i := 0; i < len(values) && i < gyeokguk.MaxRoleSlots; i++ {
		r.Values[i] = values[i]
	}
	if !r.IsEmpty() {
		r.Shape = RoleShapeSlots
	}
	return r
}

// IsEmpty reports whether no slot or overflow entry carries a value.
func (r RoleSlots) IsEmpty() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	for _, v := range r.Overflow {
		if v != "" {
			return false
		}
	}
	return true
}

// Truncate keeps only the first n slots and returns the canonical mapping.
func (r RoleSlots) Truncate(n int) RoleSlots {
	var out RoleSlots
	for i := 0; i < n && i < gyeokguk.MaxRoleSlots; i++ {
		out.Values[i] = r.Values[i]
	}
	if !out.IsEmpty() {
		out.Shape = RoleShapeSlots
	}
	return out
}

// Canonical returns r re-tagged as the first..fourth mapping.
func (r RoleSlots) Canonical() RoleSlots {
	return r.Truncate(gyeokguk.MaxRoleSlots)
}

// UnmarshalJSON accepts null, a legacy ordered list or the slot mapping.
func (r *RoleSlots) UnmarshalJSON(data []byte) error {
	*r = RoleSlots{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '[':
		var list []*string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("decode role list: %w", err)
		}
		for i, v := range list {
			value := ""
			if v != nil {
				value = *v
			}
			if i < gyeokguk.MaxRoleSlots {
				r.Values[i] = value
				continue
			}
			r.Overflow = append(r.Overflow, value)
		}
		r.Shape = RoleShapeList
	case '{':
		var mapping map[string]*string
		if err := json.Unmarshal(trimmed, &mapping); err != nil {
			return fmt.Errorf("decode role mapping: %w", err)
		}
		for key, v := range mapping {
			idx, ok := gyeokguk.SlotIndex(key)
			if !ok || v == nil {
				continue
			}
			r.Values[idx] = *v
		}
		r.Shape = RoleShapeSlots
	default:
		return fmt.Errorf("unsupported roles shape: %s", string(trimmed))
	}
	if r.IsEmpty() {
		*r = RoleSlots{}
	}
	return nil
}

// MarshalJSON emits null when empty, the legacy list when decoded from one and
// the slot mapping otherwise.
func (r RoleSlots) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return []byte("null"), nil
	}
	if r.Shape == RoleShapeList {
		all := append(r.Values[:], r.Overflow...)
		last := 0
		for i, v := range all {
			if v != "" {
				last = i + 1
			}
		}
		return json.Marshal(all[:last])
	}
	return json.Marshal(roleSlotsWire{
		First:  r.Values[0],
		Second: r.Values[1],
		Third:  r.Values[2],
		Fourth: r.Values[3],
	})
}

// Value stores the canonical mapping in a jsonb column.
func (r RoleSlots) Value() (driver.Value, error) {
	canonical := r.Canonical()
	if canonical.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(canonical)
}

// Scan decodes any stored shape.
func (r *RoleSlots) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = RoleSlots{}
		return nil
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported roles column type %T", src)
	}
}
