package output

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var (
	exprPattern     = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	variablePattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_\.]*)\}`)
)

// TemplateEngine renders row templates. It supports simple variables such as
// {name} or {arguments.count} and expr expressions such as {{len(path)}}.
type TemplateEngine struct {
	mu           sync.Mutex
	programCache map[string]*vm.Program
}

// NewTemplateEngine creates a new template engine.
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		programCache: make(map[string]*vm.Program),
	}
}

// Render renders a template string with the given data. Expressions are
// evaluated before variables.
func (t *TemplateEngine) Render(template string, data map[string]any) (string, error) {
	if template == "" {
		return "", nil
	}
	if data == nil {
		data = make(map[string]any)
	}

	var lastErr error
	result := exprPattern.ReplaceAllStringFunc(template, func(match string) string {
		value, err := t.evaluate(strings.TrimSpace(match[2:len(match)-2]), data)
		if err != nil {
			lastErr = err
			return match
		}
		return formatCell(value)
	})
	if lastErr != nil {
		return "", fmt.Errorf("failed to evaluate expression: %w", lastErr)
	}

	result = variablePattern.ReplaceAllStringFunc(result, func(match string) string {
		value, err := resolveVariable(match[1:len(match)-1], data)
		if err != nil {
			lastErr = err
			return match
		}
		return formatCell(value)
	})
	if lastErr != nil {
		return "", fmt.Errorf("failed to resolve variable: %w", lastErr)
	}
	return result, nil
}

func (t *TemplateEngine) evaluate(expression string, data map[string]any) (any, error) {
	t.mu.Lock()
	program, ok := t.programCache[expression]
	t.mu.Unlock()

	if !ok {
		var err error
		program, err = expr.Compile(expression)
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression '%s': %w", expression, err)
		}
		t.mu.Lock()
		t.programCache[expression] = program
		t.mu.Unlock()
	}

	result, err := expr.Run(program, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute expression '%s': %w", expression, err)
	}
	return result, nil
}

// resolveVariable resolves a dotted path like "arguments.count".
func resolveVariable(path string, data map[string]any) (any, error) {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot access field '%s' on non-map type", part)
		}
		current, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("variable '%s' not found", path)
		}
	}
	return current, nil
}

// TextFormatter renders each record of Tabular data on its own line using a
// row template.
type TextFormatter struct {
	engine *TemplateEngine
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{engine: NewTemplateEngine()}
}

// Name returns the formatter name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders data one row per line.
func (f *TextFormatter) Format(w io.Writer, data any, config *FormatConfig) error {
	if config == nil {
		config = NewFormatConfig()
	}
	t, ok := data.(Tabular)
	if !ok {
		_, err := fmt.Fprintln(w, data)
		return err
	}

	template := config.Template
	if template == "" {
		template = t.RowTemplate()
	}
	for _, rec := range t.Records() {
		line, err := f.engine.Render(template, rec)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
