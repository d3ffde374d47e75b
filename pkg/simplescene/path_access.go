package simplescene

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/tendant/simple-scene/pkg/simplescene/attrpath"
)

// GetPath reads the value addressed by a dotted sub-attribute path such as
// "sequence[0].data". The root segment names a message attribute on the
// node; the rest of the path addresses into its document. A bare root
// returns the whole document.
func GetPath(ctx context.Context, svc Service, nodeID uuid.UUID, path string) (gjson.Result, error) {
	p, err := attrpath.Parse(path)
	if err != nil {
		return gjson.Result{}, err
	}
	sub := p.JSONPath()
	if sub == "" {
		sub = "@this"
	}
	return svc.GetJSONPath(ctx, nodeID, p.Root().Name, sub)
}

// SetPath writes the value addressed by a dotted sub-attribute path,
// creating the root message attribute as needed. The path must reach into
// the document; replacing a document wholesale is SetJSON's job.
func SetPath(ctx context.Context, svc Service, nodeID uuid.UUID, path string, value interface{}) error {
	p, err := attrpath.Parse(path)
	if err != nil {
		return err
	}
	sub := p.JSONPath()
	if sub == "" {
		return fmt.Errorf("path %q does not address a sub-attribute", path)
	}
	return svc.SetJSONPath(ctx, nodeID, p.Root().Name, sub, value)
}

// DeletePath removes the value addressed by a dotted sub-attribute path.
// Missing attributes and missing sub-values are no-ops.
func DeletePath(ctx context.Context, svc Service, nodeID uuid.UUID, path string) error {
	p, err := attrpath.Parse(path)
	if err != nil {
		return err
	}
	sub := p.JSONPath()
	if sub == "" {
		return fmt.Errorf("path %q does not address a sub-attribute", path)
	}
	return svc.DeleteJSONPath(ctx, nodeID, p.Root().Name, sub)
}
