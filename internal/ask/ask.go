// Package ask implements `please ask`: it collects a variable, an expression
// using it and a value for this run, records a reusable template in the open
// build, then runs the expression once so the user sees the result.
package ask

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	ErrInvalidVariableName = errors.New("invalid variable name")
	// ErrCommandFailed is returned when the live run of the expression fails.
	// The template has already been recorded at that point.
	ErrCommandFailed = errors.New("ask command failed")
	// ErrEmptyExpression is returned when no expression is given.
	ErrEmptyExpression = errors.New("expression is empty")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name can be assigned by the shell's `read`.
func ValidName(name string) bool {
	return identRe.MatchString(name)
}

// State is a step of the ask interaction.
type State int

const (
	Idle State = iota
	PromptingName
	PromptingExpression
	PromptingValue
	Executing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PromptingName:
		return "prompting-name"
	case PromptingExpression:
		return "prompting-expression"
	case PromptingValue:
		return "prompting-value"
	case Executing:
		return "executing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Answers holds the values collected from the user. Non-empty fields given
// to a Handler up front skip the matching prompt.
type Answers struct {
	Name       string
	Expression string
	Value      string
	HasValue   bool // Value was supplied, even if empty
}

// Recorder receives the template lines; builder.Builder implements it.
type Recorder interface {
	RecordAsk(lines []string) error
}

// Runner executes an expression with extra environment variables. stdin is
// whatever input the prompts have not consumed.
type Runner interface {
	Run(ctx context.Context, expr string, env []string, stdin io.Reader) error
}

// Result is what one ask produced.
type Result struct {
	Answers  Answers
	Template []string
}

// Handler runs one ask interaction. It is single use.
type Handler struct {
	In       io.Reader
	Out      io.Writer
	Recorder Recorder
	Runner   Runner
	// Prompt is shown to whoever runs the finished script.
	Prompt string
	Preset Answers
	// MaxAttempts bounds re-prompts for an invalid variable name (default 3).
	MaxAttempts int

	state State
	in    *bufio.Reader
}

// State returns the current step.
func (h *Handler) State() State { return h.state }

// Run walks Idle → PromptingName → PromptingExpression → PromptingValue →
// Executing → Idle. The template is recorded before the expression runs, so
// a failing expression still leaves it in the build.
func (h *Handler) Run(ctx context.Context) (*Result, error) {
	defer func() { h.state = Idle }()
	h.in = bufio.NewReader(h.In)
	ans := h.Preset

	h.state = PromptingName
	name, err := h.promptName(ans.Name)
	if err != nil {
		return nil, err
	}
	ans.Name = name

	h.state = PromptingExpression
	if ans.Expression == "" {
		ans.Expression, err = h.readLine(fmt.Sprintf("Please enter the expression for the variable `%s`: ", name))
		if err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(ans.Expression) == "" {
		return nil, ErrEmptyExpression
	}

	h.state = PromptingValue
	if !ans.HasValue {
		ans.Value, err = h.readLine(fmt.Sprintf("Please enter the value for the variable `%s`: ", name))
		if err != nil {
			return nil, err
		}
		ans.HasValue = true
	}

	h.state = Executing
	tmpl := Template(h.Prompt, ans.Name, ans.Expression)
	if err := h.Recorder.RecordAsk(tmpl); err != nil {
		return nil, err
	}
	res := &Result{Answers: ans, Template: tmpl}

	env := []string{ans.Name + "=" + ans.Value}
	if err := h.Runner.Run(ctx, ans.Expression, env, h.in); err != nil {
		return res, fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}
	return res, nil
}

func (h *Handler) promptName(preset string) (string, error) {
	if preset != "" {
		if !ValidName(preset) {
			return "", fmt.Errorf("%w: %q", ErrInvalidVariableName, preset)
		}
		return preset, nil
	}
	attempts := h.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	var last string
	for i := 0; i < attempts; i++ {
		name, err := h.readLine("Please enter variable name: ")
		if err != nil {
			return "", err
		}
		if ValidName(name) {
			return name, nil
		}
		last = name
		fmt.Fprintf(h.Out, "%q is not a valid variable name (letters, digits and _, not starting with a digit)\n", name)
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVariableName, last)
}

func (h *Handler) readLine(prompt string) (string, error) {
	fmt.Fprint(h.Out, prompt)
	line, err := h.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading answer: input closed")
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Template returns the script lines for an ask: a `read` binding name from
// the user, then the expression.
func Template(prompt, name, expr string) []string {
	p := strings.TrimSpace(prompt)
	if p != "" {
		p += " "
	}
	return []string{
		fmt.Sprintf(`read -p "%s" %s`, quote(p), name),
		expr,
	}
}

// quote escapes s for use inside a double-quoted shell string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return r.Replace(s)
}
