// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// BaseContext is the default map-backed Context. A workflow run owns its
// context, so it is not safe for concurrent use.
type BaseContext struct {
	data    map[string]interface{}
	errors  map[string]error
	context context.Context
}

// NewBaseContext creates an empty context bound to ctx.
func NewBaseContext(ctx context.Context) Context {
	return &BaseContext{
		data:    make(map[string]interface{}),
		errors:  make(map[string]error),
		context: ctx,
	}
}

func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

// Err joins the recorded errors in key order, each prefixed with its key.
func (c *BaseContext) Err() error {
	if len(c.errors) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.errors))
	for k := range c.errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, fmt.Errorf("%s: %w", k, c.errors[k]))
	}
	return errors.Join(errs...)
}

// GetAs returns the value stored under key if it has type T.
func GetAs[T any](c Context, key string) (T, bool) {
	v, ok := c.Get(key).(T)
	return v, ok
}
