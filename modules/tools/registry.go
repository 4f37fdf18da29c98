// Package tools defines every operation the server exposes. Each operation
// is a request struct decoded from the caller's arguments, validated, then
// executed against the Splitwise service or the resolver.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/modules/resolver"
	"github.com/guarzo/splitwise-mcp/modules/splitwise"
)

// Env carries the collaborators a request may use.
type Env struct {
	Service  splitwise.SplitwiseService
	Resolver *resolver.Resolver
}

// Request is one decoded tool call.
type Request interface {
	Validate() error
	Execute(ctx context.Context, env *Env) (any, error)
}

// ParamType is the JSON type of a tool argument.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
)

// Param describes one tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Items is the JSON schema of array elements.
	Items map[string]any
}

// Definition is one entry of the tool catalogue.
type Definition struct {
	Name        string
	Description string
	Params      []Param
	New         func() Request
}

// ErrUnknownTool is returned by Invoke for a name not in the catalogue.
var ErrUnknownTool = errors.New("unknown tool")

// Registry holds the catalogue and the environment requests run in.
type Registry struct {
	defs   []Definition
	byName map[string]Definition
	env    *Env
}

// NewRegistry builds a Registry over the full catalogue.
func NewRegistry(env *Env) *Registry {
	defs := Catalogue()
	byName := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}
	return &Registry{defs: defs, byName: byName, env: env}
}

// Definitions lists the catalogue in registration order.
func (r *Registry) Definitions() []Definition {
	return r.defs
}

// Invoke decodes args into the named request, validates and executes it.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	def, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	req, err := Decode(def, args)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req.Execute(ctx, r.env)
}

// Decode checks required arguments and fills a fresh request from args.
func Decode(def Definition, args map[string]any) (Request, error) {
	for _, p := range def.Params {
		if !p.Required {
			continue
		}
		v, present := args[p.Name]
		if s, isString := v.(string); !present || v == nil || (isString && strings.TrimSpace(s) == "") {
			return nil, common.NewValidationError(p.Name, "%s is required", p.Name)
		}
	}

	req := def.New()
	if len(args) == 0 {
		return req, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  req,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(args); err != nil {
		return nil, &common.ValidationError{Message: "invalid arguments: " + err.Error()}
	}
	return req, nil
}

// Catalogue lists every tool.
func Catalogue() []Definition {
	var defs []Definition
	defs = append(defs, userTools()...)
	defs = append(defs, expenseTools()...)
	defs = append(defs, groupTools()...)
	defs = append(defs, friendTools()...)
	defs = append(defs, notificationTools()...)
	defs = append(defs, resolutionTools()...)
	defs = append(defs, commentTools()...)
	defs = append(defs, referenceTools()...)
	defs = append(defs, arithmeticTools()...)
	return defs
}

// noArgs is embedded by requests that take no validation.
type noArgs struct{}

func (noArgs) Validate() error { return nil }

// putString and putInt add optional values to a payload, skipping nil pointers.
func putString(data map[string]any, key string, v *string) {
	if v != nil {
		data[key] = *v
	}
}

func putInt(data map[string]any, key string, v *int64) {
	if v != nil {
		data[key] = *v
	}
}

// putParam and putIntParam do the same for query parameters.
func putParam(params map[string]string, key string, v *string) {
	if v != nil {
		params[key] = *v
	}
}

func putIntParam(params map[string]string, key string, v *int64) {
	if v != nil {
		params[key] = strconv.FormatInt(*v, 10)
	}
}
