package runner

import (
	"context"
	"os/exec"

	"github.com/itsmostafa/wingman/internal/document"
)

// pythonDriver feeds stdin line by line to an interactive console, so bare
// expressions echo their value the way they would at a >>> prompt.
// A dedented line after a compound statement closes it first, as the blank
// line typed at a prompt would; clauses, closing brackets and the definition
// under a decorator continue it.
const pythonDriver = `import code, re, sys
console = code.InteractiveConsole()
continues = re.compile(r"(else|elif|except|finally)\b|[)\]}]")
more = False
prev = ""
for line in sys.stdin.read().splitlines():
    if more and line[:1].strip() and not continues.match(line) and not prev.startswith("@"):
        console.push("")
    more = console.push(line)
    prev = line
if more:
    console.push("")
`

// PythonRunner implements Runner for CPython
type PythonRunner struct {
	argv []string
}

// Name returns the interpreter name
func (p *PythonRunner) Name() string {
	return p.argv[0]
}

// Language returns the execution language
func (p *PythonRunner) Language() string {
	return document.LanguagePython
}

// Command creates the python command
func (p *PythonRunner) Command(ctx context.Context) *exec.Cmd {
	args := append(append([]string{}, p.argv[1:]...), "-u", "-c", pythonDriver)
	return exec.CommandContext(ctx, p.argv[0], args...)
}

// Script returns the code unchanged; the driver does the line splitting.
func (p *PythonRunner) Script(code string) string {
	return code + "\n"
}
