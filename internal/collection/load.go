package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"github.com/hashicorp/go-multierror"
)

// LoadResult contains the collections loaded from a directory.
type LoadResult struct {
	Specs     []*Spec
	FileCount int
}

// Lookup finds a collection by name or by table.
func (r *LoadResult) Lookup(name string) (*Spec, bool) {
	for _, s := range r.Specs {
		if s.Name == name || s.Table == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns the collection names in sorted order.
func (r *LoadResult) Names() []string {
	names := make([]string, len(r.Specs))
	for i, s := range r.Specs {
		names[i] = s.Name
	}
	sort.Strings(names)
	return names
}

// LoadDir loads every collection from the CUE package in dir, compiles
// and validates it. All compile and validation errors are collected; the
// result holds the collections that passed.
func LoadDir(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("specs directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(cueFiles) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", formatCUEError(inst.Err))
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", formatCUEError(err))
	}

	result := &LoadResult{FileCount: len(cueFiles)}
	errs := compileAll(value, result)
	if len(result.Specs) == 0 && errs == nil {
		errs = multierror.Append(errs, fmt.Errorf("no collections found in %s", dir))
	}
	return result, errs.ErrorOrNil()
}

// CompileAll compiles and validates every collection under the
// "collection" field of v.
func CompileAll(v cue.Value) ([]*Spec, error) {
	var result LoadResult
	errs := compileAll(v, &result)
	return result.Specs, errs.ErrorOrNil()
}

func compileAll(v cue.Value, result *LoadResult) *multierror.Error {
	var errs *multierror.Error

	collections := v.LookupPath(cue.ParsePath("collection"))
	if !collections.Exists() {
		return errs
	}
	iter, err := collections.Fields()
	if err != nil {
		return multierror.Append(errs, formatCUEError(err))
	}

	tables := make(map[string]string)
	for iter.Next() {
		spec, err := Compile(iter.Value())
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("collection.%s: %w", iter.Label(), err))
			continue
		}
		if err := spec.Validate(); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if other, dup := tables[spec.Table]; dup {
			errs = multierror.Append(errs, fmt.Errorf("collection %s: table %s already used by %s", spec.Name, spec.Table, other))
			continue
		}
		tables[spec.Table] = spec.Name
		result.Specs = append(result.Specs, spec)
	}
	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
