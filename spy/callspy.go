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
	"sort"
	"strings"
	"sync"
)

//T is compatible with builtin testing.T
type T interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
}

// ConstructorSlot is the slot that records calls to CallSpy.Construct
const ConstructorSlot = "<new>"

/*
A CallSpy is a double with no fixed set of methods.

Any name passed to Method is a slot, bound on first use to a Recorder that is then
returned for every later use of that name. A double for a Go interface is a thin type that
embeds *CallSpy and forwards each method through Invoke.

 type repoDouble struct {
	*spy.CallSpy
 }

 func (d repoDouble) Find(id int) (*Record, error) {
	r, err := d.Invoke("Find", id)
	record, _ := r.(*Record)
	return record, err
 }

Results

Results given to NewCallSpy form one pool shared by every slot. Calls consume the pool in
the order the results were given, whichever slot is called.

Construction

Construct records a call on ConstructorSlot and returns the spy, so one CallSpy can stand
in for both a constructor function and the value it builds.

Side storage

Set, Get and Keys give an auxiliary key/value store that has nothing to do with slots.
*/
type CallSpy struct {
	mutex   sync.Mutex
	results *resultQueue
	slots   map[string]*Recorder
	order   []string
	items   map[string]interface{}
	keys    []string
	t       T
}

// NewCallSpy builds a CallSpy whose slots answer from results, in order.
func NewCallSpy(results ...interface{}) *CallSpy {
	return NewCallSpyWith(results)
}

// NewCallSpyWith is NewCallSpy with configurators, eg EnableTrace.
func NewCallSpyWith(results []interface{}, configurators ...func(*CallSpy)) *CallSpy {
	s := &CallSpy{
		results: newResultQueue(results, true),
		slots:   make(map[string]*Recorder),
		items:   make(map[string]interface{}),
	}
	for _, c := range configurators {
		c(s)
	}
	// The constructor keeps its own (empty) results, construction never consumes the pool
	s.slots[ConstructorSlot] = newRecorder(ConstructorSlot, newResultQueue(nil, false), s.t)
	return s
}

// EnableTrace returns a configurator that traces every call via t.Logf
func EnableTrace(t T) func(*CallSpy) {
	return func(s *CallSpy) {
		s.t = t
	}
}

// Method returns the Recorder for slot name, creating it on first use.
func (s *CallSpy) Method(name string) *Recorder {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if r, found := s.slots[name]; found {
		return r
	}
	r := newRecorder(name, s.results, s.t)
	s.slots[name] = r
	s.order = append(s.order, name)
	return r
}

// Invoke calls slot name with args
func (s *CallSpy) Invoke(name string, args ...interface{}) (interface{}, error) {
	if s.t != nil {
		s.t.Helper()
	}
	return s.Method(name).Call(args...)
}

// Construct records a call to ConstructorSlot and returns s
func (s *CallSpy) Construct(args ...interface{}) *CallSpy {
	s.mutex.Lock()
	constructor := s.slots[ConstructorSlot]
	if !s.accessed(ConstructorSlot) {
		s.order = append(s.order, ConstructorSlot)
	}
	s.mutex.Unlock()

	_, _ = constructor.Call(args...)
	return s
}

func (s *CallSpy) accessed(name string) bool {
	for _, n := range s.order {
		if n == name {
			return true
		}
	}
	return false
}

// Accessed returns the slot names used so far, in the order they were first used.
func (s *CallSpy) Accessed() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string{}, s.order...)
}

// Remaining is the number of results left in the shared pool
func (s *CallSpy) Remaining() int {
	return s.results.len()
}

// Verify checks the call count of each named slot.
//
// Slots are visited in name order so failures are reported deterministically.
func (s *CallSpy) Verify(t T, expectations map[string]Expectation) {
	t.Helper()
	names := make([]string, 0, len(expectations))
	for name := range expectations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.mutex.Lock()
		r, found := s.slots[name]
		s.mutex.Unlock()
		// verifying must not create slots
		if found {
			r.Expect(t, expectations[name])
		} else {
			(&callSubset{desc: fmt.Sprintf("all calls to %s", name)}).Expect(t, expectations[name])
		}
	}
}

// Set stores value under key in the side storage
func (s *CallSpy) Set(key string, value interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.items[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.items[key] = value
}

// Get returns the value stored under key
func (s *CallSpy) Get(key string) (value interface{}, found bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	value, found = s.items[key]
	return
}

// Keys returns the side storage keys in insertion order
func (s *CallSpy) Keys() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string{}, s.keys...)
}

func (s *CallSpy) String() string {
	return fmt.Sprintf("CallSpy(%s)", strings.Join(s.Accessed(), ","))
}
