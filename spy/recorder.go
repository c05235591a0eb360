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

	"github.com/stretchr/testify/assert"
)

// Kwargs are the named arguments of a call.
//
// Pass a Kwargs as the last argument to Recorder.Call and it is recorded separately
// from the positional arguments.
type Kwargs map[string]interface{}

// Call is one recorded invocation
type Call struct {
	Args   []interface{}
	Kwargs Kwargs
}

func newCall(args []interface{}) Call {
	kwargs := Kwargs{}
	if n := len(args); n > 0 {
		if named, isKwargs := args[n-1].(Kwargs); isKwargs {
			for k, v := range named {
				kwargs[k] = v
			}
			args = args[:n-1]
		}
	}
	return Call{Args: append([]interface{}{}, args...), Kwargs: kwargs}
}

func (c Call) String() string {
	if len(c.Kwargs) == 0 {
		return fmt.Sprintf("%v", c.Args)
	}
	return fmt.Sprintf("%v %v", c.Args, map[string]interface{}(c.Kwargs))
}

// RecordedCalls is a set of recorded calls that can be verified
type RecordedCalls interface {
	// Count is the number of calls in this set
	Count() int

	// Calls returns the calls in this set in the order they were made
	Calls() []Call

	/*
		Slice returns the calls from index from up to, but excluding, index to.

		Indexes past the end are clamped to the number of calls, so the last 3 calls are
		r.Slice(r.Count()-3, r.Count()). A negative index or from > to gives the empty set.
	*/
	Slice(from int, to int) RecordedCalls

	// Expect reports an error via t unless the number of calls meets expect
	Expect(t T, expect Expectation)
}

// Option configures a Recorder built with NewRecorder
type Option func(*recorderConfig)

type recorderConfig struct {
	name    string
	reverse bool
	t       T
}

// NoReverse consumes the results from the end of the list, ie last result first.
func NoReverse() Option {
	return func(c *recorderConfig) { c.reverse = false }
}

// Named gives the recorder a name for String() and tracing
func Named(name string) Option {
	return func(c *recorderConfig) { c.name = name }
}

// Traced logs every call via t.Logf
func Traced(t T) Option {
	return func(c *recorderConfig) { c.t = t }
}

/*
Recorder is a function spy. It remembers every call made to it and answers each call with
the next canned Result.

Results

The results passed to NewRecorder are reversed once, then consumed from the end, so calls
see them in the order given. With NoReverse() they are consumed last first.

A Producer result is invoked with the call and its outcome becomes the call's outcome.
This is how failures are injected. When no results remain a call answers (nil, nil).
*/
type Recorder struct {
	name     string
	mutex    sync.Mutex
	results  *resultQueue
	recorded []Call
	t        T
}

// NewRecorder builds a standalone Recorder answering from results.
//
// Each element of results is converted via ToResult. The caller's slice is not modified.
func NewRecorder(results []interface{}, options ...Option) *Recorder {
	config := recorderConfig{name: "func", reverse: true}
	for _, option := range options {
		option(&config)
	}
	return newRecorder(config.name, newResultQueue(results, config.reverse), config.t)
}

func newRecorder(name string, results *resultQueue, t T) *Recorder {
	return &Recorder{name: name, results: results, recorded: []Call{}, t: t}
}

// Call records the invocation and answers with the next result.
func (r *Recorder) Call(args ...interface{}) (interface{}, error) {
	call := newCall(args)

	r.mutex.Lock()
	r.recorded = append(r.recorded, call)
	t := r.t
	r.mutex.Unlock()

	result, available := r.results.pop()
	if !available {
		if t != nil {
			t.Helper()
			t.Logf("Called %s%v => absent (no results left)", r.name, call)
		}
		return nil, nil
	}

	if t != nil {
		t.Helper()
		//A producer can panic but we still want to trace it
		defer func() {
			if e := recover(); e != nil {
				t.Logf("Called %s%v => panic! %v", r.name, call, e)
				panic(e)
			}
		}()
	}

	value, err := result.answer(call)
	if t != nil {
		t.Logf("Called %s%v => %v, %v", r.name, call, value, err)
	}
	return value, err
}

// Name is the slot name (or "func" for standalone recorders)
func (r *Recorder) Name() string {
	return r.name
}

// Called reports whether the recorder has been called at least once
func (r *Recorder) Called() bool {
	return r.Count() > 0
}

// Count is the number of calls received
func (r *Recorder) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.recorded)
}

// Args returns the positional arguments of every call, in call order
func (r *Recorder) Args() [][]interface{} {
	calls := r.Calls()
	args := make([][]interface{}, len(calls))
	for i, c := range calls {
		args[i] = c.Args
	}
	return args
}

// Kwargs returns the named arguments of every call, in call order
func (r *Recorder) Kwargs() []Kwargs {
	calls := r.Calls()
	kwargs := make([]Kwargs, len(calls))
	for i, c := range calls {
		kwargs[i] = c.Kwargs
	}
	return kwargs
}

// Calls returns every recorded call, oldest first
func (r *Recorder) Calls() []Call {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Call{}, r.recorded...)
}

// Remaining is the number of results left in the queue. For recorders built by a CallSpy
// this is the shared pool.
func (r *Recorder) Remaining() int {
	return r.results.len()
}

// CalledWith reports whether any call received arg as one of its positional arguments
func (r *Recorder) CalledWith(arg interface{}) bool {
	for _, c := range r.Calls() {
		for _, a := range c.Args {
			if assert.ObjectsAreEqual(arg, a) {
				return true
			}
		}
	}
	return false
}

// ExpectCalledWith reports an error via t unless some call received arg
func (r *Recorder) ExpectCalledWith(t T, arg interface{}) {
	t.Helper()
	if !r.CalledWith(arg) {
		t.Errorf("`%v` not found in %s call args %v", arg, r.name, r.Args())
	}
}

// Expect reports an error via t unless the number of calls meets expect
func (r *Recorder) Expect(t T, expect Expectation) {
	t.Helper()
	r.all().Expect(t, expect)
}

// Slice returns calls [from:to] for verification, see RecordedCalls
func (r *Recorder) Slice(from int, to int) RecordedCalls {
	return r.all().Slice(from, to)
}

func (r *Recorder) String() string {
	return fmt.Sprintf("all calls to %s", r.name)
}

func (r *Recorder) all() *callSubset {
	return &callSubset{desc: r.String(), calls: r.Calls()}
}

type callSubset struct {
	desc  string
	calls []Call
}

func (s *callSubset) Count() int {
	return len(s.calls)
}

func (s *callSubset) Calls() []Call {
	return append([]Call{}, s.calls...)
}

func (s *callSubset) Slice(from int, to int) RecordedCalls {
	desc := fmt.Sprintf("[%d:%d] of %s", from, to, s.desc)
	l := len(s.calls)
	if from < 0 || to < 0 || from > to || from >= l {
		return &callSubset{desc: desc}
	}
	if to > l {
		to = l
	}
	return &callSubset{desc: desc, calls: s.calls[from:to]}
}

func (s *callSubset) Expect(t T, expect Expectation) {
	t.Helper()
	if count := len(s.calls); !expect.Met(count) {
		t.Errorf("%s expected %v, found %d calls", s.desc, expect, count)
	}
}

func (s *callSubset) String() string {
	return s.desc
}
