// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

const prefix = "export: "

// IOError reports a failure to open or write the project
// file. It aborts the whole export.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return prefix + "i/o failure on " + e.Path + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

// MeshConversionError reports an object that could not be
// tessellated. The object is skipped.
type MeshConversionError struct {
	Object string
	Err    error
}

func (e *MeshConversionError) Error() string {
	return prefix + "cannot tessellate " + e.Object + ": " + e.Err.Error()
}

func (e *MeshConversionError) Unwrap() error { return e.Err }

// MeshWriteError reports a failure to write a mesh or
// curve file. The object/particle system's disk export
// is skipped; the export continues.
type MeshWriteError struct {
	Path string
	Err  error
}

func (e *MeshWriteError) Error() string {
	return prefix + "cannot write " + e.Path + ": " + e.Err.Error()
}

func (e *MeshWriteError) Unwrap() error { return e.Err }

// MissingResourceError reports a referenced material,
// texture or slot that is absent. A documented default
// is substituted.
type MissingResourceError struct {
	Resource string
}

func (e *MissingResourceError) Error() string {
	return prefix + "missing resource " + e.Resource
}
