package pins

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Merge reads each constraint file in order and folds it into a single
// mapping, later files overwriting earlier entries for the same normalized
// key. Caller-supplied overrides are applied last, with the highest
// precedence. The merge is last-write-wins and purely positional.
//
// Each file is opened, fully decoded and closed before the next one is
// read. Any malformed file fails the whole call with a
// ConstraintParseError; no partial mapping is ever returned.
func Merge(files []string, overrides map[string]string) (Mapping, error) {
	merged := Mapping{}

	for _, path := range files {
		entries, err := readConstraintFile(path)
		if err != nil {
			return nil, err
		}
		for name, expr := range entries {
			merged[name] = expr
		}
	}

	for name, expr := range overrides {
		merged[NormalizeName(name)] = expr
	}

	return merged, nil
}

func readConstraintFile(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConstraintParseError{Path: path, Err: err}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConstraintParseError{Path: path, Err: err}
	}

	entries := make(Mapping, len(raw))
	for name, value := range raw {
		expr, err := pinExpression(value)
		if err != nil {
			return nil, &ConstraintParseError{
				Path: path,
				Err:  fmt.Errorf("package %q: %w", name, err),
			}
		}
		entries[NormalizeName(name)] = expr
	}
	return entries, nil
}

// pinExpression coerces a decoded YAML value into an opaque pin string.
// Scalars are accepted; a null value means "no constraint". Mappings and
// sequences are rejected.
func pinExpression(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("pin expression must be a scalar, got %T", value)
	}
}
