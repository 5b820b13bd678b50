// Package tools defines the arithmetic tools served by the demo MCP servers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Operands are the tool arguments. Both are optional; a missing operand takes
// the default advertised in the tool's input schema.
type Operands struct {
	A float64 `json:"a,omitempty" jsonschema:"the first operand"`
	B float64 `json:"b,omitempty" jsonschema:"the second operand"`
}

// Result echoes the operands next to the computed value.
type Result struct {
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Result float64 `json:"result" jsonschema:"the computed value"`
}

// AddNumbers returns a + b.
func AddNumbers(a, b float64) Result {
	return Result{A: a, B: b, Result: a + b}
}

// MultiplyNumbers returns a * b.
func MultiplyNumbers(a, b float64) Result {
	return Result{A: a, B: b, Result: a * b}
}

// Descriptor names a binary arithmetic tool and its defaults.
type Descriptor struct {
	Name        string
	Description string
	DefaultA    float64
	DefaultB    float64
	Apply       func(a, b float64) Result
}

var (
	Add = Descriptor{
		Name:        "add_numbers",
		Description: "Add two numbers",
		DefaultA:    10.0,
		DefaultB:    5.0,
		Apply:       AddNumbers,
	}

	Multiply = Descriptor{
		Name:        "sse_multiply_numbers",
		Description: "Multiply two numbers",
		DefaultA:    2.0,
		DefaultB:    3.5,
		Apply:       MultiplyNumbers,
	}
)

// Tool builds the MCP tool with an input schema inferred from Operands and
// the descriptor's defaults attached to each property.
func (d Descriptor) Tool() (*mcp.Tool, error) {
	schema, err := jsonschema.For[Operands](nil)
	if err != nil {
		return nil, fmt.Errorf("inferring input schema for %s: %w", d.Name, err)
	}
	for name, def := range map[string]float64{"a": d.DefaultA, "b": d.DefaultB} {
		prop, ok := schema.Properties[name]
		if !ok {
			return nil, fmt.Errorf("input schema for %s has no property %q", d.Name, name)
		}
		prop.Default = json.RawMessage(strconv.FormatFloat(def, 'g', -1, 64))
	}

	return &mcp.Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: schema,
	}, nil
}

// Handler adapts Apply to the typed MCP tool handler signature.
func (d Descriptor) Handler(logger *zap.Logger) mcp.ToolHandlerFor[Operands, Result] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req *mcp.CallToolRequest, input Operands) (
		*mcp.CallToolResult,
		Result,
		error,
	) {
		res := d.Apply(input.A, input.B)
		logger.Debug("tool called",
			zap.String("tool", d.Name),
			zap.Float64("a", res.A),
			zap.Float64("b", res.B),
			zap.Float64("result", res.Result))
		return nil, res, nil
	}
}

// Register adds the tool to server.
func Register(server *mcp.Server, d Descriptor, logger *zap.Logger) error {
	tool, err := d.Tool()
	if err != nil {
		return err
	}
	mcp.AddTool(server, tool, d.Handler(logger))
	return nil
}

// NewServer creates an MCP server exposing the single tool d.
func NewServer(name string, d Descriptor, logger *zap.Logger) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{Name: name, Version: "v1.0.0"}, nil)
	if err := Register(server, d, logger); err != nil {
		return nil, err
	}
	return server, nil
}

// NewAddServer creates the "AddNumbers" server exposing add_numbers.
func NewAddServer(logger *zap.Logger) (*mcp.Server, error) {
	return NewServer("AddNumbers", Add, logger)
}

// NewMultiplyServer creates the "MultiplyNumbers" server exposing sse_multiply_numbers.
func NewMultiplyServer(logger *zap.Logger) (*mcp.Server, error) {
	return NewServer("MultiplyNumbers", Multiply, logger)
}
