package script

import (
	"errors"

	"go.uber.org/zap"

	"github.com/gnolang/weave/internal/editor"
)

// Run applies b to e. A failure is reported once to the monitor of e, with
// the innermost failing statement as context, and returned.
func Run(b *Block, e *editor.Editor) error {
	err := b.Apply(e)
	if err == nil {
		return nil
	}
	var aerr *ApplyError
	if !errors.As(err, &aerr) {
		aerr = &ApplyError{Statement: b.Source(), Pos: b.Start(), Err: err}
		err = aerr
	}
	fields := []zap.Field{
		zap.String("statement", aerr.Statement),
		zap.Int("line", aerr.Pos.Line),
	}
	if aerr.Point != "" {
		fields = append(fields, zap.String("point", aerr.Point))
	}
	e.Monitor().Report(aerr.Err, fields...)
	return err
}

// Execute parses src and runs it on e.
func Execute(src string, e *editor.Editor) error {
	b, err := Parse(src)
	if err != nil {
		return err
	}
	return Run(b, e)
}
