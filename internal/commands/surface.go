package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/plastic-deck/internal/history"
	"github.com/temirov/plastic-deck/internal/plasticcli"
	"github.com/temirov/plastic-deck/internal/utils"
)

const (
	requestFieldTagConstant               = "json"
	operationStartedMessageConstant       = "operation started"
	operationCompletedMessageConstant     = "operation completed"
	operationFailedMessageConstant        = "operation failed"
	invocationIdentifierFieldConstant     = "invocation_id"
	operationFieldConstant                = "operation"
	durationFieldConstant                 = "duration"
	clientNotConfiguredMessageConstant    = "plastic client not configured"
	validatorNotConfiguredMessageConstant = "path validator not configured"
	collectorNotConfiguredMessageConstant = "changeset collector not configured"
	requestFieldNameConstant              = "request"
	invalidRequestMessageConstant         = "invalid request"
)

var (
	// ErrClientNotConfigured indicates a surface was constructed without a Plastic SCM client.
	ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
	// ErrPathValidatorNotConfigured indicates a surface was constructed without a path validator.
	ErrPathValidatorNotConfigured = errors.New(validatorNotConfiguredMessageConstant)
	// ErrCollectorNotConfigured indicates a surface was constructed without a changeset collector.
	ErrCollectorNotConfigured = errors.New(collectorNotConfiguredMessageConstant)
)

// PlasticClient exposes the single-command Plastic SCM queries.
type PlasticClient interface {
	CheckInstalled(executionContext context.Context, selection plasticcli.ExecutableSelection) bool
	DetectServer(executionContext context.Context, selection plasticcli.ExecutableSelection) (string, error)
	ListRepositories(executionContext context.Context, server string, selection plasticcli.ExecutableSelection) ([]plasticcli.RepositoryRef, error)
}

// ExecutablePathValidator resolves and checks a user-supplied cm location.
type ExecutablePathValidator interface {
	ValidatePath(executionContext context.Context, candidatePath string) (string, error)
}

// ChangesetCollector merges the history of every repository on a server.
type ChangesetCollector interface {
	Collect(executionContext context.Context, request history.CollectionRequest) ([]plasticcli.ChangesetRecord, error)
}

// InvocationIdentifierGenerator produces correlation identifiers for log entries.
type InvocationIdentifierGenerator func() string

// SurfaceDependencies groups the collaborators of a Surface.
type SurfaceDependencies struct {
	Client                PlasticClient
	PathValidator         ExecutablePathValidator
	Collector             ChangesetCollector
	Logger                *zap.Logger
	DefaultExecutablePath string
	OperationTimeout      time.Duration
	IdentifierGenerator   InvocationIdentifierGenerator
}

// Surface exposes the five Plastic SCM operations with request validation, logging, and timeouts.
type Surface struct {
	client                PlasticClient
	pathValidator         ExecutablePathValidator
	collector             ChangesetCollector
	logger                *zap.Logger
	requestValidator      *validator.Validate
	defaultExecutablePath string
	operationTimeout      time.Duration
	identifierGenerator   InvocationIdentifierGenerator
}

// NewSurface constructs a Surface. A nil logger discards log output and a nil generator uses random UUIDs.
func NewSurface(dependencies SurfaceDependencies) (*Surface, error) {
	if dependencies.Client == nil {
		return nil, ErrClientNotConfigured
	}
	if dependencies.PathValidator == nil {
		return nil, ErrPathValidatorNotConfigured
	}
	if dependencies.Collector == nil {
		return nil, ErrCollectorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	identifierGenerator := dependencies.IdentifierGenerator
	if identifierGenerator == nil {
		identifierGenerator = uuid.NewString
	}

	return &Surface{
		client:                dependencies.Client,
		pathValidator:         dependencies.PathValidator,
		collector:             dependencies.Collector,
		logger:                logger,
		requestValidator:      utils.NewStructValidator(requestFieldTagConstant),
		defaultExecutablePath: strings.TrimSpace(dependencies.DefaultExecutablePath),
		operationTimeout:      dependencies.OperationTimeout,
		identifierGenerator:   identifierGenerator,
	}, nil
}

// CheckInstalled reports whether the selected cm runs its version query successfully.
func (surface *Surface) CheckInstalled(executionContext context.Context, request CheckInstalledRequest) (bool, error) {
	return runOperation(surface, executionContext, OperationCheckInstalled, request, func(operationContext context.Context, validatedRequest CheckInstalledRequest) (bool, error) {
		return surface.client.CheckInstalled(operationContext, surface.selectExecutable(validatedRequest.ExecutablePath)), nil
	})
}

// ValidatePath resolves a cm executable or installation directory and returns the verified executable path.
func (surface *Surface) ValidatePath(executionContext context.Context, request ValidatePathRequest) (string, error) {
	request.ExecutablePath = strings.TrimSpace(request.ExecutablePath)
	return runOperation(surface, executionContext, OperationValidatePath, request, func(operationContext context.Context, validatedRequest ValidatePathRequest) (string, error) {
		return surface.pathValidator.ValidatePath(operationContext, executablePathHomeDirectoryExpander.Expand(validatedRequest.ExecutablePath))
	})
}

// DetectServer discovers the Plastic Cloud server the user is logged in to.
func (surface *Surface) DetectServer(executionContext context.Context, request DetectServerRequest) (string, error) {
	return runOperation(surface, executionContext, OperationDetectServer, request, func(operationContext context.Context, validatedRequest DetectServerRequest) (string, error) {
		return surface.client.DetectServer(operationContext, surface.selectExecutable(validatedRequest.ExecutablePath))
	})
}

// ListRepositories lists the repositories hosted on the requested server.
func (surface *Surface) ListRepositories(executionContext context.Context, request ListRepositoriesRequest) ([]plasticcli.RepositoryRef, error) {
	request.Server = strings.TrimSpace(request.Server)
	return runOperation(surface, executionContext, OperationListRepositories, request, func(operationContext context.Context, validatedRequest ListRepositoriesRequest) ([]plasticcli.RepositoryRef, error) {
		return surface.client.ListRepositories(operationContext, validatedRequest.Server, surface.selectExecutable(validatedRequest.ExecutablePath))
	})
}

// ListAllChangesets merges the recent changesets of every repository on the requested server, newest first.
func (surface *Surface) ListAllChangesets(executionContext context.Context, request ListAllChangesetsRequest) ([]plasticcli.ChangesetRecord, error) {
	request.Server = strings.TrimSpace(request.Server)
	return runOperation(surface, executionContext, OperationListAllChangesets, request, func(operationContext context.Context, validatedRequest ListAllChangesetsRequest) ([]plasticcli.ChangesetRecord, error) {
		return surface.collector.Collect(operationContext, history.CollectionRequest{
			Server:     validatedRequest.Server,
			Limit:      validatedRequest.Limit,
			Executable: surface.selectExecutable(validatedRequest.ExecutablePath),
		})
	})
}

func (surface *Surface) selectExecutable(requestedPath string) plasticcli.ExecutableSelection {
	executablePath := strings.TrimSpace(requestedPath)
	if len(executablePath) == 0 {
		executablePath = surface.defaultExecutablePath
	}
	return plasticcli.NewExecutableSelection(executablePathHomeDirectoryExpander.Expand(executablePath))
}

func (surface *Surface) validateRequest(request any) error {
	validationError := surface.requestValidator.Struct(request)
	if validationError == nil {
		return nil
	}
	violations := utils.FieldViolations(validationError)
	if len(violations) == 0 {
		return plasticcli.InvalidInputError{FieldName: requestFieldNameConstant, Message: invalidRequestMessageConstant}
	}
	return plasticcli.InvalidInputError{FieldName: violations[0].Field, Message: violations[0].Describe()}
}

func runOperation[Request any, Result any](surface *Surface, executionContext context.Context, operation OperationName, request Request, execute func(context.Context, Request) (Result, error)) (Result, error) {
	var zeroResult Result
	if executionContext == nil {
		executionContext = context.Background()
	}

	operationLogger := surface.logger.With(
		zap.String(invocationIdentifierFieldConstant, surface.identifierGenerator()),
		zap.String(operationFieldConstant, string(operation)),
	)

	if validationError := surface.validateRequest(request); validationError != nil {
		operationLogger.Warn(operationFailedMessageConstant, zap.Error(validationError))
		return zeroResult, validationError
	}

	operationContext := executionContext
	if surface.operationTimeout > 0 {
		var cancel context.CancelFunc
		operationContext, cancel = context.WithTimeout(executionContext, surface.operationTimeout)
		defer cancel()
	}

	startTime := time.Now()
	operationLogger.Debug(operationStartedMessageConstant)

	result, operationError := execute(operationContext, request)
	if operationError != nil {
		operationLogger.Warn(operationFailedMessageConstant, zap.Duration(durationFieldConstant, time.Since(startTime)), zap.Error(operationError))
		return zeroResult, operationError
	}

	operationLogger.Debug(operationCompletedMessageConstant, zap.Duration(durationFieldConstant, time.Since(startTime)))
	return result, nil
}
