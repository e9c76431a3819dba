// Copyright 2021 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package kv

// SchemaVersion identifies the on-disk layout of the two reserved tables a
// cache maintains. Bump it whenever the metadata record shape changes.
//
// 1.0 - initial layout: data(key,val) + metadata(compression, serializers, dict)
var SchemaVersion = struct{ Major, Minor int }{1, 0}

// Metadata keys. Values are always raw bytes (see EXTERNAL INTERFACES).
const (
	// MetaCompression holds the active compressor factory id as UTF-8 bytes.
	// Absence means "none" (invariant I2).
	MetaCompression = "compression"
	// MetaSerializers holds the JSON-encoded codec id list identifying the
	// codec stack the cache was opened with (invariant I1).
	MetaSerializers = "serializers"
	// MetaDict holds the raw trained-dictionary bytes, or is absent when no
	// dictionary has been trained yet.
	MetaDict = "dict"
)

// KeyTypesDB is the auxiliary sub-database name the memory-mapped backend
// uses to persist per-table key-codec ids (see kv/mdbxkv).
const KeyTypesDB = "keyTypes"

// KeyTypesKeySlot is the only defined slot in the keyTypes sub-database.
const KeyTypesKeySlot = "key"

// RecompressFunction is the name under which the cache registers its
// decompress-with-old/compress-with-new closure during a dictionary swap.
const RecompressFunction = "recompress"
