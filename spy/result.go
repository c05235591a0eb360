/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package spy

import (
	"fmt"
	"sync"
)

// Producer computes the outcome of a call from the call itself.
//
// A queued Producer is how failures are injected: return a non nil error (or panic)
// and the caller of Recorder.Call sees exactly that.
type Producer func(call Call) (interface{}, error)

type resultKind int

const (
	absentResult resultKind = iota
	valueResult
	producedResult
)

// Result is one canned answer waiting in a Recorder's queue.
//
// It is exactly one of a plain value, absence, or a Producer.
type Result struct {
	kind     resultKind
	value    interface{}
	producer Producer
}

// Value returns a Result that answers v verbatim.
func Value(v interface{}) Result {
	return Result{kind: valueResult, value: v}
}

// Absent returns a Result that answers with no value.
func Absent() Result {
	return Result{kind: absentResult}
}

// Produce returns a Result that invokes p with the call's arguments.
func Produce(p Producer) Result {
	if p == nil {
		return Absent()
	}
	return Result{kind: producedResult, producer: p}
}

// Fail returns a Result whose call fails with err.
func Fail(err error) Result {
	return Produce(func(Call) (interface{}, error) { return nil, err })
}

// ToResult converts v to a Result.
//
// A Result is used as is, a Producer (or a func with the same signature) is wrapped with
// Produce and nil is Absent. Everything else, including other funcs and bare errors,
// is a plain Value.
func ToResult(v interface{}) Result {
	switch typed := v.(type) {
	case nil:
		return Absent()
	case Result:
		return typed
	case Producer:
		return Produce(typed)
	case func(Call) (interface{}, error):
		return Produce(typed)
	default:
		return Value(typed)
	}
}

// IsAbsent reports whether r answers with no value.
func (r Result) IsAbsent() bool {
	return r.kind == absentResult
}

func (r Result) answer(call Call) (interface{}, error) {
	switch r.kind {
	case valueResult:
		return r.value, nil
	case producedResult:
		return r.producer(call)
	default:
		return nil, nil
	}
}

func (r Result) String() string {
	switch r.kind {
	case valueResult:
		return fmt.Sprintf("%v", r.value)
	case producedResult:
		return "producer"
	default:
		return "absent"
	}
}

// resultQueue is consumed from the end. Recorders built by a CallSpy share one queue.
type resultQueue struct {
	mutex   sync.Mutex
	results []Result
}

func newResultQueue(values []interface{}, reverse bool) *resultQueue {
	results := make([]Result, len(values))
	for i, v := range values {
		results[i] = ToResult(v)
	}
	q := &resultQueue{results: results}
	if reverse {
		q.reverse()
	}
	return q
}

func (q *resultQueue) reverse() {
	for i, j := 0, len(q.results)-1; i < j; i, j = i+1, j-1 {
		q.results[i], q.results[j] = q.results[j], q.results[i]
	}
}

func (q *resultQueue) pop() (Result, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.results) == 0 {
		return Result{}, false
	}
	last := len(q.results) - 1
	r := q.results[last]
	q.results = q.results[:last]
	return r, true
}

func (q *resultQueue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.results)
}
