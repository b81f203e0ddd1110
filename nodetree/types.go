package nodetree

import "time"

// SampleContext carries inputs needed when evaluating a value expression.
type SampleContext struct {
	// Inputs are named values visible to expressions (uv coordinates,
	// object attributes, upstream channel values).
	Inputs   map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Layer and Channel label where the sample originates; used for
	// error reporting and logging only.
	Layer   string
	Channel string
}

func (ctx SampleContext) withDefaultNow() SampleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx SampleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx SampleContext) withDefaultMaps() SampleContext {
	if ctx.Inputs == nil {
		ctx.Inputs = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx SampleContext) withDefaults() SampleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx SampleContext) sourceLabel() string {
	if ctx.Layer == "" && ctx.Channel == "" {
		return "unknown"
	}
	if ctx.Channel == "" {
		return ctx.Layer
	}
	return ctx.Layer + "/" + ctx.Channel
}

func (ctx SampleContext) sourceBinding() map[string]any {
	if ctx.Layer == "" && ctx.Channel == "" {
		return nil
	}
	return map[string]any{
		"layer":   ctx.Layer,
		"channel": ctx.Channel,
	}
}

// Evaluator executes value-node expressions against a sample context.
type Evaluator interface {
	Evaluate(ctx SampleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledExpr, error)
}

// CompiledExpr represents a reusable expression program.
type CompiledExpr interface {
	Evaluate(ctx SampleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
