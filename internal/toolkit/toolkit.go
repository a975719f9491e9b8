package toolkit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/banksim/internal/bankdb"
)

// Handler executes one tool call against the bound container using
// validated arguments.
type Handler func(ctx context.Context, db *bankdb.DB, args Args) (string, error)

// Predicate evaluates one assertion against the bound container.
type Predicate func(db *bankdb.DB, args Args) (bool, error)

// Tool is a registered agent-callable operation.
type Tool struct {
	Name        string
	Description string
	Kind        Kind
	Params      []Param

	handler Handler
}

// Assertion is a registered state predicate.
type Assertion struct {
	Name        string
	Description string
	Params      []Param

	predicate Predicate
}

// Call is one tool invocation request.
type Call struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Result is the normalized outcome of Execute.
type Result struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
}

// Toolkit is the set of banking tools bound to one container.
// It is not safe for concurrent use.
type Toolkit struct {
	db         *bankdb.DB
	tools      map[string]Tool
	assertions map[string]Assertion
	readOnly   bool
	logger     *slog.Logger
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithReadOnly rejects every WRITE tool with ErrWriteDenied before it
// runs.
func WithReadOnly() Option {
	return func(tk *Toolkit) {
		tk.readOnly = true
	}
}

// WithLogger sets the logger used for per-call debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(tk *Toolkit) {
		if logger != nil {
			tk.logger = logger
		}
	}
}

// New binds the built-in banking tools and assertions to db.
// The binding is fixed for the toolkit's lifetime.
func New(db *bankdb.DB, opts ...Option) *Toolkit {
	tk := &Toolkit{
		db:         db,
		tools:      make(map[string]Tool),
		assertions: make(map[string]Assertion),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(tk)
	}

	for _, t := range append(readTools(), writeTools()...) {
		tk.register(t)
	}
	for _, a := range assertions() {
		tk.registerAssertion(a)
	}
	return tk
}

func (tk *Toolkit) register(t Tool) {
	if t.Name == "" || t.handler == nil || !t.Kind.Valid() {
		panic(fmt.Sprintf("toolkit: malformed tool %q", t.Name))
	}
	if _, dup := tk.tools[t.Name]; dup {
		panic(fmt.Sprintf("toolkit: duplicate tool %q", t.Name))
	}
	tk.tools[t.Name] = t
}

func (tk *Toolkit) registerAssertion(a Assertion) {
	if a.Name == "" || a.predicate == nil {
		panic(fmt.Sprintf("toolkit: malformed assertion %q", a.Name))
	}
	if _, dup := tk.assertions[a.Name]; dup {
		panic(fmt.Sprintf("toolkit: duplicate assertion %q", a.Name))
	}
	tk.assertions[a.Name] = a
}

// Tools lists the agent-callable tools sorted by name.
func (tk *Toolkit) Tools() []Definition {
	out := make([]Definition, 0, len(tk.tools))
	for _, t := range tk.tools {
		out = append(out, Definition{
			Name:        t.Name,
			Description: t.Description,
			Kind:        t.Kind,
			Params:      cloneParams(t.Params),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Assertions lists the assertion predicates sorted by name.
func (tk *Toolkit) Assertions() []Definition {
	out := make([]Definition, 0, len(tk.assertions))
	for _, a := range tk.assertions {
		out = append(out, Definition{
			Name:        a.Name,
			Description: a.Description,
			Params:      cloneParams(a.Params),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Kind returns the classification of a registered tool.
func (tk *Toolkit) Kind(name string) (Kind, bool) {
	t, ok := tk.tools[name]
	if !ok {
		return "", false
	}
	return t.Kind, true
}

// Invoke runs a tool by name and returns its text result.
//
// Errors:
//   - ErrToolUnregistered for an unknown name
//   - ErrInvalidArguments for unknown, missing or mistyped arguments
//   - ErrWriteDenied for a WRITE tool on a read-only toolkit
//   - *bankdb.ValidationError when a write would break an invariant;
//     the container is unchanged
func (tk *Toolkit) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" {
		return "", ErrToolNameEmpty
	}

	t, ok := tk.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrToolUnregistered, name)
	}
	if err := validateArgs(t.Params, args); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
	}
	if t.Kind == KindWrite && tk.readOnly {
		return "", fmt.Errorf("%w: %q", ErrWriteDenied, name)
	}

	tk.logger.Debug("invoking tool", "tool", name, "kind", t.Kind)
	content, err := t.handler(ctx, tk.db, Args(args))
	if err != nil {
		tk.logger.Debug("tool failed", "tool", name, "error", err)
		return "", err
	}
	return content, nil
}

// Execute runs a call and returns a normalized Result.
//
// Unknown or empty tool names return a zero Result and an error. Any
// other failure returns both a Result with IsError set and the error
// message as Content, and the error itself, so callers can record the
// outcome without losing the error.
func (tk *Toolkit) Execute(ctx context.Context, call Call) (Result, error) {
	if call.Name == "" {
		return Result{}, fmt.Errorf("%w: call %q", ErrToolNameEmpty, call.ID)
	}
	kind, ok := tk.Kind(call.Name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrToolUnregistered, call.Name)
	}

	result := Result{CallID: call.ID, Name: call.Name, Kind: kind}
	content, err := tk.Invoke(ctx, call.Name, call.Arguments)
	if err != nil {
		result.Content = err.Error()
		result.IsError = true
		return result, err
	}
	result.Content = content
	return result, nil
}

// Check evaluates an assertion by name. Unknown names return
// ErrToolUnregistered and bad arguments ErrInvalidArguments. A record
// that does not exist makes the assertion false, not an error.
func (tk *Toolkit) Check(name string, args map[string]any) (bool, error) {
	a, ok := tk.assertions[name]
	if !ok {
		return false, fmt.Errorf("%w: assertion %q", ErrToolUnregistered, name)
	}
	if err := validateArgs(a.Params, args); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
	}
	return a.predicate(tk.db, Args(args))
}

func cloneParams(params []Param) []Param {
	out := make([]Param, len(params))
	copy(out, params)
	return out
}
