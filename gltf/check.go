// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gltf

import "errors"

func newErr(reason string) error {
	return errors.New("gltf: " + reason)
}

// Check validates the index references the converter
// follows, so conversion can index without bounds checks
// on every access.
func (f *GLTF) Check() error {
	if s := f.Scene; s != nil && (*s < 0 || *s >= int64(len(f.Scenes))) {
		return newErr("invalid GLTF.Scene index")
	}
	for i := range f.Accessors {
		a := &f.Accessors[i]
		if v := a.BufferView; v != nil && (*v < 0 || *v >= int64(len(f.BufferViews))) {
			return newErr("invalid Accessor.BufferView index")
		}
		if a.ByteOffset < 0 {
			return newErr("invalid Accessor.ByteOffset value")
		}
		switch a.ComponentType {
		case BYTE, UNSIGNED_BYTE, SHORT, UNSIGNED_SHORT, UNSIGNED_INT, FLOAT:
		default:
			return newErr("invalid Accessor.ComponentType value")
		}
		if a.Count < 1 {
			return newErr("invalid Accessor.Count value")
		}
		switch a.Type {
		case SCALAR, VEC2, VEC3, VEC4, MAT4:
		default:
			return newErr("invalid Accessor.Type value")
		}
	}
	for i := range f.BufferViews {
		v := &f.BufferViews[i]
		if v.Buffer < 0 || v.Buffer >= int64(len(f.Buffers)) {
			return newErr("invalid BufferView.Buffer index")
		}
		if v.ByteOffset < 0 || v.ByteLength < 1 {
			return newErr("invalid BufferView bounds")
		}
	}
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.Mesh != nil && (*n.Mesh < 0 || *n.Mesh >= int64(len(f.Meshes))) {
			return newErr("invalid Node.Mesh index")
		}
		if n.Camera != nil && (*n.Camera < 0 || *n.Camera >= int64(len(f.Cameras))) {
			return newErr("invalid Node.Camera index")
		}
		for _, c := range n.Children {
			if c < 0 || c >= int64(len(f.Nodes)) {
				return newErr("invalid Node.Children index")
			}
		}
		if l := n.Extensions.Light; l != nil {
			ext := f.Extensions.Lights
			if ext == nil || l.Light < 0 || l.Light >= int64(len(ext.Lights)) {
				return newErr("invalid node light index")
			}
		}
	}
	for i := range f.Meshes {
		for j := range f.Meshes[i].Primitives {
			p := &f.Meshes[i].Primitives[j]
			if p.Material != nil && (*p.Material < 0 || *p.Material >= int64(len(f.Materials))) {
				return newErr("invalid Primitive.Material index")
			}
			for _, a := range p.Attributes {
				if a < 0 || a >= int64(len(f.Accessors)) {
					return newErr("invalid Primitive.Attributes index")
				}
			}
			if p.Indices != nil && (*p.Indices < 0 || *p.Indices >= int64(len(f.Accessors))) {
				return newErr("invalid Primitive.Indices index")
			}
		}
	}
	for i := range f.Scenes {
		for _, n := range f.Scenes[i].Nodes {
			if n < 0 || n >= int64(len(f.Nodes)) {
				return newErr("invalid Scene.Nodes index")
			}
		}
	}
	return nil
}
