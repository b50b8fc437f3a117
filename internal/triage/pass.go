package triage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"certtriage/internal/output"

	"golang.org/x/sync/errgroup"
)

// Pass identifies which directory category is being triaged.
type Pass string

const (
	PassRegular Pass = "regular"
	PassInitial Pass = "initial"
)

// InvalidCertificate is a certificate the authority judged invalid, with
// one reason per failed facet in fixed facet order.
type InvalidCertificate struct {
	File    string
	Reasons []string
}

// UnprocessableFile is a certificate whose verdict could not be determined
// (encoding or oracle failure), or whose post-verdict relocation failed.
type UnprocessableFile struct {
	File  string
	Cause error
}

// PassResult aggregates the failure outcomes of one pass over one
// directory. The collections are unordered: they are populated from
// concurrent workers and consumers must not depend on order. Valid
// certificates are not retained; their file placement is the record.
type PassResult struct {
	// Files is the number of files enumerated (and therefore dispatched)
	// at the start of the pass.
	Files int

	mu            sync.Mutex
	Invalid       []InvalidCertificate
	Unprocessable []UnprocessableFile
}

func (r *PassResult) addInvalid(file string, reasons []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invalid = append(r.Invalid, InvalidCertificate{File: file, Reasons: reasons})
}

func (r *PassResult) addUnprocessable(file string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Unprocessable = append(r.Unprocessable, UnprocessableFile{File: file, Cause: cause})
}

// ValidateDirectory triages every file directly under sourceDir (no
// recursion). The enumerated set is fixed at call time. Files are processed
// concurrently; the call returns only once every dispatched file has an
// outcome. When destOnSuccess is non-empty, valid certificates are moved
// there; otherwise valid certificates are left in place.
//
// Per-file failures are folded into the result; only a failure to enumerate
// sourceDir itself makes ValidateDirectory return an error (*DirectoryError).
func (e *Engine) ValidateDirectory(ctx context.Context, pass Pass, sourceDir, destOnSuccess string) (*PassResult, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, &DirectoryError{Dir: sourceDir, Cause: err}
	}

	res := &PassResult{}
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(sourceDir, name)
		res.Files++
		g.Go(func() error {
			e.triageFile(ctx, pass, name, path, destOnSuccess, res)
			return nil
		})
	}

	// Full join: workers never return errors, so Wait is purely the
	// completion barrier.
	_ = g.Wait()
	return res, nil
}

func (e *Engine) triageFile(ctx context.Context, pass Pass, name, path, destOnSuccess string, res *PassResult) {
	record := func(r output.FileResult) {
		r.File = name
		r.Pass = string(pass)
		_ = e.out.Write(r)
	}

	encoded, err := e.encode(path)
	if err != nil {
		res.addUnprocessable(name, err)
		record(output.FileResult{Status: output.StatusUnprocessable, Cause: err.Error()})
		return
	}

	verdict, err := e.checker.Check(ctx, encoded)
	if err != nil {
		res.addUnprocessable(name, err)
		record(output.FileResult{Status: output.StatusUnprocessable, Cause: err.Error()})
		return
	}

	// The verdict is fully received before any transition begins.
	reasons := failureReasons(verdict)
	if len(reasons) > 0 {
		if !e.keepFailed {
			if err := moveFile(path, e.invalidDir); err != nil {
				res.addUnprocessable(name, err)
				record(output.FileResult{Status: output.StatusUnprocessable, Cause: err.Error()})
				return
			}
		}
		res.addInvalid(name, reasons)
		record(output.FileResult{Status: output.StatusInvalid, Reasons: reasons})
		return
	}

	if destOnSuccess != "" {
		if err := moveFile(path, destOnSuccess); err != nil {
			res.addUnprocessable(name, err)
			record(output.FileResult{Status: output.StatusUnprocessable, Cause: err.Error()})
			return
		}
	}
	record(output.FileResult{Status: output.StatusValid})
}

// moveFile renames src into destDir keeping the base name. A file already
// present at the destination is a deterministic failure: overwriting would
// destroy the durable record of an earlier outcome.
func moveFile(src, destDir string) error {
	dest := filepath.Join(destDir, filepath.Base(src))
	if _, err := os.Lstat(dest); err == nil {
		return &TransitionError{From: src, To: dest, Cause: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &TransitionError{From: src, To: dest, Cause: err}
	}
	if err := os.Rename(src, dest); err != nil {
		return &TransitionError{From: src, To: dest, Cause: err}
	}
	return nil
}
