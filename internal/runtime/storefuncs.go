package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/jarlink/internal/store"
)

// WithStore exposes stored runs to the script through the known, runs,
// and db_query globals.
func WithStore(s *store.Store) FilterOption {
	return func(f *Filter) {
		if f.globals == nil {
			f.globals = make(map[string]any)
		}
		f.globals["known"] = makeKnownFn(s)
		f.globals["runs"] = makeRunsFn(s)
		f.globals["db_query"] = makeDBQueryFn(s)
	}
}

// makeKnownFn creates known(run, issue): true when the run recorded a
// finding with the issue's archive, class, kind, and text. An empty run
// selects the latest run; known is false when there is none.
func makeKnownFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("known", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("known", 2, len(args))
		}
		runArg, err := toString(args[0])
		if err != nil {
			return object.Errorf("known: %v", err)
		}
		m, err := extractMap(args[1])
		if err != nil {
			return object.Errorf("known: %v", err)
		}

		var run *store.Run
		if runArg == "" {
			run, err = s.LatestRun()
		} else {
			run, err = s.RunByID(runArg)
		}
		if errors.Is(err, store.ErrRunNotFound) && runArg == "" {
			return object.NewBool(false)
		}
		if err != nil {
			return object.Errorf("known: %v", err)
		}

		var n int
		err = s.DB().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM findings WHERE run_id = ? AND archive = ? AND headline = ? AND kind = ? AND text = ?",
			run.ID, getString(m, "archive"), getString(m, "class"), getString(m, "kind"), getString(m, "text"),
		).Scan(&n)
		if err != nil {
			return object.Errorf("known: %v", err)
		}
		return object.NewBool(n > 0)
	})
}

// makeRunsFn creates runs(): the stored runs, newest first, as maps.
func makeRunsFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("runs", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("runs", 0, len(args))
		}
		runs, err := s.Runs()
		if err != nil {
			return object.Errorf("runs: %v", err)
		}
		results := make([]object.Object, len(runs))
		for i, r := range runs {
			results[i] = object.NewMap(map[string]object.Object{
				"id":       object.NewString(r.ID),
				"strategy": object.NewString(r.Strategy),
				"release":  object.NewInt(int64(r.Release)),
				"archives": object.NewInt(int64(r.Archives)),
				"issues":   object.NewInt(int64(r.Issues)),
			})
		}
		return object.NewList(results)
	})
}

// makeDBQueryFn creates db_query(sql, args...), which runs a read-only
// SELECT and returns a list of maps (column name to value).
func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("db_query: expected at least 1 argument (sql), got %d", len(args))
		}
		sqlStr, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlStr)), "SELECT") {
			return object.Errorf("db_query: only SELECT queries are allowed")
		}

		var queryArgs []any
		for _, arg := range args[1:] {
			switch v := arg.(type) {
			case *object.Int:
				queryArgs = append(queryArgs, v.Value())
			case *object.Float:
				queryArgs = append(queryArgs, v.Value())
			case *object.String:
				queryArgs = append(queryArgs, v.Value())
			case *object.Bool:
				queryArgs = append(queryArgs, v.Value())
			case *object.NilType:
				queryArgs = append(queryArgs, nil)
			default:
				queryArgs = append(queryArgs, arg.Inspect())
			}
		}

		rows, err := s.DB().QueryContext(ctx, sqlStr, queryArgs...)
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return object.Errorf("db_query: columns: %v", err)
		}
		results := []object.Object{}
		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return object.Errorf("db_query: scan: %v", err)
			}
			row := make(map[string]object.Object, len(cols))
			for i, col := range cols {
				row[col] = sqlValueToObject(values[i])
			}
			results = append(results, object.NewMap(row))
		}
		if err := rows.Err(); err != nil {
			return object.Errorf("db_query: rows: %v", err)
		}
		return object.NewList(results)
	})
}

func sqlValueToObject(v any) object.Object {
	switch val := v.(type) {
	case nil:
		return object.Nil
	case int64:
		return object.NewInt(val)
	case float64:
		return object.NewFloat(val)
	case string:
		return object.NewString(val)
	case bool:
		return object.NewBool(val)
	case []byte:
		return object.NewString(string(val))
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	if s, ok := m[key].(*object.String); ok {
		return s.Value()
	}
	return ""
}

func toString(obj object.Object) (string, error) {
	s, ok := obj.(*object.String)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", obj.Type())
	}
	return s.Value(), nil
}
