package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/sumdb/internal/compiler"
	"github.com/roach88/sumdb/internal/ir"
)

// Error codes for failures that happen before any statement runs.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build or compile failed
)

// LoadResult contains the tables compiled from CUE schema files.
type LoadResult struct {
	Tables    []ir.Table
	FileCount int // Number of CUE files read
}

// LoadError represents an error that occurred during schema loading.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadSchemas compiles the tables declared under "table" in a .cue file or
// in every .cue file of a directory. The files of a directory are unified
// into one value, so a table may be split across files.
func LoadSchemas(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema path not found: %s", path), Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema path: %v", err), Err: err}
	}

	var files []string
	if info.IsDir() {
		files, err = FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	} else {
		files = []string{path}
	}

	// File arguments resolve against Config.Dir.
	for i, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("resolving %s: %v", f, err), Err: err}
		}
		files[i] = abs
	}

	// Explicit file arguments form a single instance regardless of
	// package clauses.
	instances := load.Instances(files, &load.Config{Dir: filepath.Dir(files[0])})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err), Err: inst.Err}
	}

	value := cuecontext.New().BuildInstance(inst)
	tables, err := compileValue(value)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Tables: tables, FileCount: len(files)}, nil
}

func compileValue(value cue.Value) ([]ir.Table, error) {
	tables, err := compiler.CompileSchemas(value)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return nil, &LoadError{Code: ErrCodeBuildFailed, Message: compileErr.Error(), Err: err}
		}
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), Err: err}
	}
	if len(tables) == 0 {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no tables found under \"table\""}
	}
	return tables, nil
}

// FindCUEFiles returns the .cue files directly under dir, sorted. CUE
// loads named files only when they share a directory.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
