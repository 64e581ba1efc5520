package internal

import (
	"fmt"
	"math"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// DatasetsName is the global through which cells reach the dataset provider
const DatasetsName = "datasets"

// allowedBuiltins returns the helpers seeded into every execution context on top
// of the language's own pure builtins (len, range, sorted, min, max, zip, print...).
func allowedBuiltins() starlark.StringDict {
	return starlark.StringDict{
		"abs":    starlark.NewBuiltin("abs", builtinAbs),
		"sum":    starlark.NewBuiltin("sum", builtinSum),
		"mean":   starlark.NewBuiltin("mean", builtinMean),
		"map":    starlark.NewBuiltin("map", builtinMap),
		"filter": starlark.NewBuiltin("filter", builtinFilter),
		"round":  starlark.NewBuiltin("round", builtinRound),
	}
}

func builtinAbs(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x); err != nil {
		return nil, err
	}
	switch x := x.(type) {
	case starlark.Int:
		if x.Sign() < 0 {
			return starlark.MakeInt(0).Sub(x), nil
		}
		return x, nil
	case starlark.Float:
		return starlark.Float(math.Abs(float64(x))), nil
	default:
		return nil, fmt.Errorf("%s: got %s, want int or float", b.Name(), x.Type())
	}
}

func builtinSum(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var iterable starlark.Iterable
	var start starlark.Value = starlark.MakeInt(0)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "iterable", &iterable, "start?", &start); err != nil {
		return nil, err
	}
	total := start
	iter := iterable.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		next, err := starlark.Binary(syntax.PLUS, total, x)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		total = next
	}
	return total, nil
}

func builtinMean(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var iterable starlark.Iterable
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &iterable); err != nil {
		return nil, err
	}
	var total float64
	var n int
	iter := iterable.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		f, ok := starlark.AsFloat(x)
		if !ok {
			return nil, fmt.Errorf("%s: got %s, want numbers", b.Name(), x.Type())
		}
		total += f
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: empty sequence", b.Name())
	}
	return starlark.Float(total / float64(n)), nil
}

func builtinMap(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fn starlark.Callable
	var iterable starlark.Iterable
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &fn, &iterable); err != nil {
		return nil, err
	}
	var out []starlark.Value
	iter := iterable.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		y, err := starlark.Call(thread, fn, starlark.Tuple{x}, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return starlark.NewList(out), nil
}

func builtinFilter(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fn starlark.Value
	var iterable starlark.Iterable
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &fn, &iterable); err != nil {
		return nil, err
	}
	callable, isCallable := fn.(starlark.Callable)
	if fn != starlark.None && !isCallable {
		return nil, fmt.Errorf("%s: got %s, want callable or None", b.Name(), fn.Type())
	}
	var out []starlark.Value
	iter := iterable.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		keep := x.Truth()
		if isCallable {
			y, err := starlark.Call(thread, callable, starlark.Tuple{x}, nil)
			if err != nil {
				return nil, err
			}
			keep = y.Truth()
		}
		if keep {
			out = append(out, x)
		}
	}
	return starlark.NewList(out), nil
}

func builtinRound(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	var ndigits int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "x", &x, "ndigits?", &ndigits); err != nil {
		return nil, err
	}
	f, ok := starlark.AsFloat(x)
	if !ok {
		return nil, fmt.Errorf("%s: got %s, want int or float", b.Name(), x.Type())
	}
	scale := math.Pow(10, float64(ndigits))
	return starlark.Float(math.Round(f*scale) / scale), nil
}

// datasetsModule exposes a DatasetProvider to cells as a read-only value
type datasetsModule struct {
	provider DatasetProvider
}

var (
	_ starlark.HasAttrs = (*datasetsModule)(nil)

	datasetsMethods = map[string]func(m *datasetsModule, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error){
		"get":     (*datasetsModule).get,
		"names":   (*datasetsModule).names,
		"preview": (*datasetsModule).preview,
		"summary": (*datasetsModule).summary,
	}
)

func newDatasetsModule(provider DatasetProvider) *datasetsModule {
	return &datasetsModule{provider: provider}
}

func (m *datasetsModule) String() string        { return "<datasets>" }
func (m *datasetsModule) Type() string          { return "datasets" }
func (m *datasetsModule) Freeze()               {}
func (m *datasetsModule) Truth() starlark.Bool  { return starlark.True }
func (m *datasetsModule) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: datasets") }

func (m *datasetsModule) Attr(name string) (starlark.Value, error) {
	method, ok := datasetsMethods[name]
	if !ok {
		return nil, nil
	}
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if m.provider == nil {
			return nil, fmt.Errorf("%s: no dataset provider configured", b.Name())
		}
		return method(m, b, args, kwargs)
	}), nil
}

func (m *datasetsModule) AttrNames() []string {
	names := make([]string, 0, len(datasetsMethods))
	for name := range datasetsMethods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *datasetsModule) names(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	var out []starlark.Value
	for _, ref := range m.provider.List() {
		out = append(out, starlark.String(ref.Name))
	}
	return starlark.NewList(out), nil
}

func (m *datasetsModule) get(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	ref, err := m.provider.Get(name)
	if err != nil {
		return nil, err
	}
	d := starlark.NewDict(4)
	_ = d.SetKey(starlark.String("name"), starlark.String(ref.Name))
	_ = d.SetKey(starlark.String("path"), starlark.String(ref.Path))
	_ = d.SetKey(starlark.String("format"), starlark.String(ref.Format))
	_ = d.SetKey(starlark.String("description"), starlark.String(ref.Description))
	return d, nil
}

func (m *datasetsModule) preview(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	limit := DefaultPreviewLimit
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "limit?", &limit); err != nil {
		return nil, err
	}
	preview, err := m.provider.Preview(name, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]starlark.Value, 0, len(preview.Rows))
	for _, row := range preview.Rows {
		rows = append(rows, stringList(row))
	}
	d := starlark.NewDict(2)
	_ = d.SetKey(starlark.String("headers"), stringList(preview.Headers))
	_ = d.SetKey(starlark.String("rows"), starlark.NewList(rows))
	return d, nil
}

func (m *datasetsModule) summary(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	summary, err := m.provider.Summary(name)
	if err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(summary))
	for column := range summary {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	out := starlark.NewDict(len(summary))
	for _, column := range columns {
		stats := summary[column]
		d := starlark.NewDict(5)
		_ = d.SetKey(starlark.String("min"), starlark.Float(stats.Min))
		_ = d.SetKey(starlark.String("max"), starlark.Float(stats.Max))
		_ = d.SetKey(starlark.String("mean"), starlark.Float(stats.Mean))
		_ = d.SetKey(starlark.String("median"), starlark.Float(stats.Median))
		_ = d.SetKey(starlark.String("count"), starlark.Float(stats.Count))
		_ = out.SetKey(starlark.String(column), d)
	}
	return out, nil
}

func stringList(values []string) *starlark.List {
	out := make([]starlark.Value, len(values))
	for i, v := range values {
		out[i] = starlark.String(v)
	}
	return starlark.NewList(out)
}
