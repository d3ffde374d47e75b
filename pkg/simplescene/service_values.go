package simplescene

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/iancoleman/orderedmap"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Typed value operations.
//
// Reads absorb a missing attribute into the type's default; every other
// failure, including a missing node, propagates. Writes ensure the backing
// attribute exists with the declared storage type before touching it, so the
// first write on a fresh node also creates the slot.

func (s *service) GetString(ctx context.Context, nodeID uuid.UUID, attr string) (string, error) {
	a, err := s.typedAttribute(ctx, nodeID, attr, AttrTypeString, "get_string")
	if err != nil || a == nil {
		return "", err
	}
	return a.StringValue, nil
}

func (s *service) SetString(ctx context.Context, nodeID uuid.UUID, attr string, value *string) error {
	if value == nil {
		return s.setScalar(ctx, nodeID, attr, AttrTypeString, "set_string", nil)
	}
	v := *value
	return s.setScalar(ctx, nodeID, attr, AttrTypeString, "set_string", func(a *Attribute) {
		a.StringValue = v
	})
}

func (s *service) GetInt(ctx context.Context, nodeID uuid.UUID, attr string) (int64, error) {
	a, err := s.typedAttribute(ctx, nodeID, attr, AttrTypeInt, "get_int")
	if err != nil {
		return 0, err
	}
	if a == nil {
		return MissingInt, nil
	}
	return a.IntValue, nil
}

func (s *service) SetInt(ctx context.Context, nodeID uuid.UUID, attr string, value *int64) error {
	if value == nil {
		return s.setScalar(ctx, nodeID, attr, AttrTypeInt, "set_int", nil)
	}
	v := *value
	return s.setScalar(ctx, nodeID, attr, AttrTypeInt, "set_int", func(a *Attribute) {
		a.IntValue = v
	})
}

func (s *service) GetFloat(ctx context.Context, nodeID uuid.UUID, attr string) (float64, error) {
	a, err := s.typedAttribute(ctx, nodeID, attr, AttrTypeFloat, "get_float")
	if err != nil {
		return 0, err
	}
	if a == nil {
		return MissingFloat, nil
	}
	return a.FloatValue, nil
}

func (s *service) SetFloat(ctx context.Context, nodeID uuid.UUID, attr string, value *float64) error {
	if value == nil {
		return s.setScalar(ctx, nodeID, attr, AttrTypeFloat, "set_float", nil)
	}
	v := *value
	return s.setScalar(ctx, nodeID, attr, AttrTypeFloat, "set_float", func(a *Attribute) {
		a.FloatValue = v
	})
}

// typedAttribute fetches an attribute expected to hold the given type. A
// missing attribute returns (nil, nil); a type mismatch is an error.
func (s *service) typedAttribute(ctx context.Context, nodeID uuid.UUID, name string, typ AttrType, op string) (*Attribute, error) {
	a, err := s.repository.GetAttribute(ctx, nodeID, name)
	if err != nil {
		if errors.Is(err, ErrAttributeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if a.Type != typ {
		return nil, &AttributeError{NodeID: nodeID, Attr: name, Op: op, Err: ErrAttributeType}
	}
	return a, nil
}

// setScalar ensures the attribute exists with the declared type and applies
// the write. A nil write means ensure-only: the attribute is created when
// missing and nothing is written.
func (s *service) setScalar(ctx context.Context, nodeID uuid.UUID, name string, typ AttrType, op string, write func(*Attribute)) error {
	attr, err := s.EnsureAttribute(ctx, nodeID, name, typ)
	if err != nil {
		return err
	}
	if write == nil {
		return nil
	}
	if attr.Type != typ {
		return &AttributeError{NodeID: nodeID, Attr: name, Op: op, Err: ErrAttributeType}
	}

	updated := *attr
	write(&updated)
	updated.UpdatedAt = time.Now().UTC()

	if s.hooks != nil {
		if err := s.hooks.executeBeforeAttributeSet(ctx, &updated); err != nil {
			return &AttributeError{NodeID: nodeID, Attr: name, Op: op, Err: err}
		}
	}

	if err := s.repository.SetAttribute(ctx, &updated); err != nil {
		s.fireError(ctx, op, err)
		return &AttributeError{
			NodeID: nodeID,
			Attr:   name,
			Op:     op,
			Err:    err,
		}
	}

	// Fire event
	if s.eventSink != nil {
		if err := s.eventSink.AttributeSet(ctx, &updated); err != nil {
			// Log error but don't fail the operation
		}
	}

	if s.hooks != nil {
		if err := s.hooks.executeAfterAttributeSet(ctx, &updated); err != nil {
			return &AttributeError{NodeID: nodeID, Attr: name, Op: op, Err: err}
		}
	}

	return nil
}

// JSON document operations

func (s *service) GetJSON(ctx context.Context, nodeID uuid.UUID, attr string) (*orderedmap.OrderedMap, error) {
	doc := orderedmap.New()

	a, err := s.typedAttribute(ctx, nodeID, attr, AttrTypeString, "get_json")
	if err != nil {
		return nil, err
	}
	if a == nil || a.StringValue == "" {
		return doc, nil
	}

	if err := json.Unmarshal([]byte(a.StringValue), doc); err != nil {
		return nil, &AttributeError{NodeID: nodeID, Attr: attr, Op: "get_json", Err: err}
	}
	return doc, nil
}

func (s *service) SetJSON(ctx context.Context, nodeID uuid.UUID, attr string, doc *orderedmap.OrderedMap) error {
	// A nil document stores an empty one; "null" never hits the attribute.
	text := "{}"
	if doc != nil {
		b, err := json.Marshal(doc)
		if err != nil {
			return &AttributeError{NodeID: nodeID, Attr: attr, Op: "set_json", Err: err}
		}
		text = string(b)
	}
	return s.setScalar(ctx, nodeID, attr, AttrTypeString, "set_json", func(a *Attribute) {
		a.StringValue = text
	})
}

func (s *service) GetJSONPath(ctx context.Context, nodeID uuid.UUID, attr, path string) (gjson.Result, error) {
	a, err := s.typedAttribute(ctx, nodeID, attr, AttrTypeString, "get_json_path")
	if err != nil {
		return gjson.Result{}, err
	}
	raw := "{}"
	if a != nil && a.StringValue != "" {
		raw = a.StringValue
	}
	return gjson.Get(raw, path), nil
}

func (s *service) SetJSONPath(ctx context.Context, nodeID uuid.UUID, attr, path string, value interface{}) error {
	attrRec, err := s.EnsureAttribute(ctx, nodeID, attr, AttrTypeString)
	if err != nil {
		return err
	}
	if attrRec.Type != AttrTypeString {
		return &AttributeError{NodeID: nodeID, Attr: attr, Op: "set_json_path", Err: ErrAttributeType}
	}

	raw := attrRec.StringValue
	if raw == "" {
		raw = "{}"
	}
	out, err := sjson.Set(raw, path, value)
	if err != nil {
		return &AttributeError{NodeID: nodeID, Attr: attr, Op: "set_json_path", Err: err}
	}

	return s.setScalar(ctx, nodeID, attr, AttrTypeString, "set_json_path", func(a *Attribute) {
		a.StringValue = out
	})
}

func (s *service) DeleteJSONPath(ctx context.Context, nodeID uuid.UUID, attr, path string) error {
	a, err := s.typedAttribute(ctx, nodeID, attr, AttrTypeString, "delete_json_path")
	if err != nil {
		return err
	}
	if a == nil || a.StringValue == "" {
		return nil
	}

	out, err := sjson.Delete(a.StringValue, path)
	if err != nil {
		return &AttributeError{NodeID: nodeID, Attr: attr, Op: "delete_json_path", Err: err}
	}
	if out == a.StringValue {
		return nil
	}

	return s.setScalar(ctx, nodeID, attr, AttrTypeString, "delete_json_path", func(na *Attribute) {
		na.StringValue = out
	})
}
