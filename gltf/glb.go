// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
)

// GLB header.
type glbHeader [3]uint32

// Indices in glbHeader.
const (
	headerMagic = iota
	headerVersion
	headerLength
)

// GLB chunk header.
type glbChunk [2]uint32

// Indices in glbChunk.
const (
	chunkLength = iota
	chunkType
	// Then payload.
)

const (
	// glbHeader[headerMagic].
	magic = 0x46546c67

	// glbChunk[chunkType].
	typeJSON = 0x4e4f534a
	typeBIN  = 0x004e4942
)

// IsGLB returns whether r refers to a binary glTF
// (version 2). It assumes that r was positioned
// accordingly.
func IsGLB(r io.Reader) bool {
	var h glbHeader
	err := binary.Read(r, binary.LittleEndian, h[:])
	switch {
	case err != nil, h[headerMagic] != magic, h[headerVersion] != 2:
		return false
	default:
		return true
	}
}

// DecodeGLB decodes an unread GLB blob, returning the
// decoded structure and the embedded binary payload,
// which backs the asset's first URI-less buffer. The
// payload may be nil when the blob has no BIN chunk.
func DecodeGLB(r io.Reader) (*GLTF, []byte, error) {
	if !IsGLB(r) {
		return nil, nil, errors.New("gltf: not a GLB blob")
	}
	var c glbChunk
	if err := binary.Read(r, binary.LittleEndian, c[:]); err != nil {
		return nil, nil, err
	}
	if c[chunkLength] == 0 || c[chunkType] != typeJSON {
		return nil, nil, errors.New("gltf: invalid GLB chunk")
	}
	raw := make([]byte, c[chunkLength])
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, nil, err
	}
	var doc GLTF
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}
	// The BIN chunk is optional.
	if err := binary.Read(r, binary.LittleEndian, c[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &doc, nil, nil
		}
		return nil, nil, err
	}
	if c[chunkType] != typeBIN {
		return nil, nil, errors.New("gltf: invalid GLB chunk")
	}
	bin := make([]byte, c[chunkLength])
	if _, err := io.ReadFull(r, bin); err != nil {
		return nil, nil, err
	}
	return &doc, bin, nil
}
