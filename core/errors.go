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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidItem indicates a ContentItem failed validation.
	ErrInvalidItem = errors.New("invalid content item")

	// ErrMissingURL indicates the URL identity field is empty.
	ErrMissingURL = errors.New("content item URL cannot be empty")

	// ErrInvalidSentiment indicates an unrecognized sentiment label.
	ErrInvalidSentiment = errors.New("invalid sentiment label")

	// ErrInvalidEmbedding indicates an embedding of the wrong dimension.
	ErrInvalidEmbedding = errors.New("embedding has wrong dimension")
)
