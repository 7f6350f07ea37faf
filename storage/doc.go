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


// Package storage provides the persistence abstraction for newswire.
//
// The package defines the NewsRepository interface that decouples the
// pipeline from the storage implementation. Public constructors in the
// backend packages return the interface:
//
//	repo, err := postgres.NewRepository(ctx, dsn)  // returns storage.NewsRepository
//
// This keeps consumers free of backend specifics and lets tests swap in
// the in-memory implementation from storage/memory without modification.
//
// All repository methods accept context.Context for cancellation and
// timeout support, and all implementations must be safe for concurrent
// use from multiple goroutines.
package storage
