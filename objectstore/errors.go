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


package objectstore

import "errors"

var (
	// ErrObjectNotFound indicates the requested object key does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketRequired indicates the bucket name was not configured.
	ErrBucketRequired = errors.New("bucket name required")

	// ErrEndpointRequired indicates the endpoint URL was not configured.
	ErrEndpointRequired = errors.New("endpoint URL required")

	// ErrCredentialsRequired indicates access credentials were not configured.
	ErrCredentialsRequired = errors.New("object store credentials required")
)
