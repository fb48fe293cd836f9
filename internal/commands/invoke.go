package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
)

// OperationName identifies a Surface operation at the invocation boundary.
type OperationName string

// Operations exposed through Invoke.
const (
	OperationCheckInstalled    OperationName = OperationName("check_installed")
	OperationValidatePath      OperationName = OperationName("validate_path")
	OperationDetectServer      OperationName = OperationName("detect_server")
	OperationListRepositories  OperationName = OperationName("list_repositories")
	OperationListAllChangesets OperationName = OperationName("list_all_changesets")
)

const (
	unknownOperationTemplateConstant  = "unknown operation: %s"
	invalidArgumentsTemplateConstant  = "invalid arguments for %s: %v"
	trailingArgumentsTemplateConstant = "invalid arguments for %s: unexpected data after the arguments object"
	emptyArgumentsObjectConstant      = "{}"
)

// InvocationResponse is the boundary shape returned to a frontend: either a result or the error text.
type InvocationResponse struct {
	Result any    `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the invocation produced a result.
func (response InvocationResponse) Succeeded() bool {
	return len(response.Error) == 0
}

type invocationHandler func(surface *Surface, executionContext context.Context, rawArguments []byte) (any, error)

var invocationHandlers = map[OperationName]invocationHandler{
	OperationCheckInstalled: func(surface *Surface, executionContext context.Context, rawArguments []byte) (any, error) {
		return decodeAndRun(executionContext, OperationCheckInstalled, rawArguments, surface.CheckInstalled)
	},
	OperationValidatePath: func(surface *Surface, executionContext context.Context, rawArguments []byte) (any, error) {
		return decodeAndRun(executionContext, OperationValidatePath, rawArguments, surface.ValidatePath)
	},
	OperationDetectServer: func(surface *Surface, executionContext context.Context, rawArguments []byte) (any, error) {
		return decodeAndRun(executionContext, OperationDetectServer, rawArguments, surface.DetectServer)
	},
	OperationListRepositories: func(surface *Surface, executionContext context.Context, rawArguments []byte) (any, error) {
		return decodeAndRun(executionContext, OperationListRepositories, rawArguments, surface.ListRepositories)
	},
	OperationListAllChangesets: func(surface *Surface, executionContext context.Context, rawArguments []byte) (any, error) {
		return decodeAndRun(executionContext, OperationListAllChangesets, rawArguments, surface.ListAllChangesets)
	},
}

// OperationNames lists the operations accepted by Invoke in sorted order.
func OperationNames() []OperationName {
	operationNames := make([]OperationName, 0, len(invocationHandlers))
	for operationName := range invocationHandlers {
		operationNames = append(operationNames, operationName)
	}
	slices.Sort(operationNames)
	return operationNames
}

// Invoke runs the named operation with JSON-encoded arguments. Failures, including unknown operations
// and malformed arguments, are reported through InvocationResponse.Error.
func (surface *Surface) Invoke(executionContext context.Context, operationName string, rawArguments []byte) InvocationResponse {
	handler, known := invocationHandlers[OperationName(operationName)]
	if !known {
		return InvocationResponse{Error: fmt.Sprintf(unknownOperationTemplateConstant, operationName)}
	}

	result, invocationError := handler(surface, executionContext, rawArguments)
	if invocationError != nil {
		return InvocationResponse{Error: invocationError.Error()}
	}
	return InvocationResponse{Result: result}
}

func decodeAndRun[Request any, Result any](executionContext context.Context, operation OperationName, rawArguments []byte, run func(context.Context, Request) (Result, error)) (any, error) {
	var request Request
	if decodeError := decodeArguments(operation, rawArguments, &request); decodeError != nil {
		return nil, decodeError
	}
	return run(executionContext, request)
}

func decodeArguments(operation OperationName, rawArguments []byte, target any) error {
	trimmedArguments := bytes.TrimSpace(rawArguments)
	if len(trimmedArguments) == 0 {
		trimmedArguments = []byte(emptyArgumentsObjectConstant)
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmedArguments))
	decoder.DisallowUnknownFields()
	if decodeError := decoder.Decode(target); decodeError != nil {
		return fmt.Errorf(invalidArgumentsTemplateConstant, operation, decodeError)
	}
	if decoder.More() {
		return fmt.Errorf(trailingArgumentsTemplateConstant, operation)
	}
	return nil
}
