package runtime

import (
	"context"
	"log/slog"
	"path"

	"github.com/risor-io/risor/object"
)

// issueObject converts an Issue to the Risor map scripts index with
// issue["kind"], issue["archive"], issue["class"], issue["text"], and
// issue["notes"].
func issueObject(is Issue) *object.Map {
	notes := make([]object.Object, len(is.Notes))
	for i, n := range is.Notes {
		notes[i] = object.NewString(n)
	}
	return object.NewMap(map[string]object.Object{
		"kind":    object.NewString(is.Kind),
		"archive": object.NewString(is.Archive),
		"class":   object.NewString(is.Class),
		"text":    object.NewString(is.Text),
		"notes":   object.NewList(notes),
	})
}

// globBuiltin is glob(pattern, name): shell-style matching where * spans
// dots, so "com.sun.*" matches every class below com.sun.
var globBuiltin = object.NewBuiltin("glob", func(ctx context.Context, args ...object.Object) object.Object {
	if len(args) != 2 {
		return object.NewArgsError("glob", 2, len(args))
	}
	pattern, ok := args[0].(*object.String)
	if !ok {
		return object.Errorf("glob: expected string pattern, got %s", args[0].Type())
	}
	name, ok := args[1].(*object.String)
	if !ok {
		return object.Errorf("glob: expected string name, got %s", args[1].Type())
	}
	matched, err := path.Match(pattern.Value(), name.Value())
	if err != nil {
		return object.Errorf("glob: %v", err)
	}
	return object.NewBool(matched)
})

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
	script string
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "filter", l.script)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "filter", l.script)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "filter", l.script)
}
