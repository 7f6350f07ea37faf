// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import "errors"

var (
	// ErrStoreRequired indicates a nil object store was passed.
	ErrStoreRequired = errors.New("object store is required")

	// ErrLedgerRequired indicates a nil ledger was passed.
	ErrLedgerRequired = errors.New("ledger is required")

	// ErrCollectorRequired indicates a nil collector was passed.
	ErrCollectorRequired = errors.New("collector is required")

	// ErrFilterRequired indicates a nil dedupe filter was passed.
	ErrFilterRequired = errors.New("dedupe filter is required")

	// ErrEngineRequired indicates a nil enrichment engine was passed.
	ErrEngineRequired = errors.New("enrichment engine is required")

	// ErrLoaderRequired indicates a nil loader was passed.
	ErrLoaderRequired = errors.New("loader is required")

	// ErrNamespaceRequired indicates an empty namespace was passed.
	ErrNamespaceRequired = errors.New("namespace is required")
)
