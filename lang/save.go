package lang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5/util"
)

// SaveExt is appended to save names that do not already carry it.
const SaveExt = ".save"

// saveFile is the on-disk form of a save.
type saveFile struct {
	Variables map[string]any `json:"variables"`
	Inventory []string       `json:"inventory"`
}

func (in *Interpreter) savePath(name string) string {
	if !strings.HasSuffix(name, SaveExt) {
		name += SaveExt
	}

	return path.Join(in.saveDir, name)
}

func (in *Interpreter) saveExists(p string) bool {
	_, err := in.fs.Stat(p)

	return err == nil
}

// SaveGame writes the current variables and inventory to the named save
// file, creating the save directory if needed, and returns its path.
// Variables holding values with no JSON form (infinite or NaN floats) are
// left out.
func (in *Interpreter) SaveGame(name string) (string, error) {
	p := in.savePath(name)

	data, err := in.marshalSave()
	if err != nil {
		return p, err
	}

	if err := in.fs.MkdirAll(in.saveDir, 0o755); err != nil {
		return p, err
	}

	return p, util.WriteFile(in.fs, p, data, 0o644)
}

func (in *Interpreter) marshalSave() ([]byte, error) {
	sf := saveFile{
		Variables: make(map[string]any, len(in.vars)),
		Inventory: append([]string{}, in.inventory...),
	}

	for k, v := range in.vars {
		if j, ok := toJSON(v); ok {
			sf.Variables[k] = j
		}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(sf); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// toJSON converts v for encoding. Numbers are written with their display
// text so that floats keep a decimal point and integers keep full
// precision.
func toJSON(v Value) (any, bool) {
	switch v := v.(type) {
	case Int:
		return json.Number(v.Big().String()), true
	case Float:
		f := float64(v)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, false
		}

		return json.Number(formatFloat(f)), true
	case Str:
		return string(v), true
	case Bool:
		return bool(v), true
	case Null:
		return nil, true
	case *List:
		out := make([]any, len(v.Elems))

		for i, e := range v.Elems {
			j, ok := toJSON(e)
			if !ok {
				return nil, false
			}

			out[i] = j
		}

		return out, true
	}

	return nil, false
}

// LoadGame reads the named save file, merges its variables into the
// current environment, and replaces the inventory. It returns the path
// read.
func (in *Interpreter) LoadGame(name string) (string, error) {
	p := in.savePath(name)

	data, err := util.ReadFile(in.fs, p)
	if err != nil {
		return p, err
	}

	var sf struct {
		Variables map[string]any `json:"variables"`
		Inventory []any          `json:"inventory"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(&sf); err != nil {
		return p, err
	}

	vars := make(map[string]Value, len(sf.Variables))

	for k, j := range sf.Variables {
		v, err := fromJSON(j)
		if err != nil {
			return p, fmt.Errorf("variable '%s': %w", k, err)
		}

		vars[k] = v
	}

	inv := make([]string, 0, len(sf.Inventory))
	for _, item := range sf.Inventory {
		v, err := fromJSON(item)
		if err != nil {
			return p, fmt.Errorf("inventory: %w", err)
		}

		inv = append(inv, Display(v))
	}

	for k, v := range vars {
		in.vars[k] = v
	}

	in.inventory = inv

	return p, nil
}

func fromJSON(j any) (Value, error) {
	switch j := j.(type) {
	case nil:
		return Nil, nil
	case bool:
		return Bool(j), nil
	case string:
		return Str(j), nil
	case json.Number:
		s := j.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, ok := new(big.Int).SetString(s, 10); ok {
				return Int{n}, nil
			}
		}

		f, err := j.Float64()
		if err != nil {
			return nil, err
		}

		return Float(f), nil
	case []any:
		elems := make([]Value, len(j))

		for i, e := range j {
			v, err := fromJSON(e)
			if err != nil {
				return nil, err
			}

			elems[i] = v
		}

		return NewList(elems...), nil
	}

	return nil, fmt.Errorf("unsupported value of type %T", j)
}
