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

/*
Package spy provides call recording test doubles.

A Spy replaces a collaborator of the system under test, remembers how it was called and
answers with canned results.

See the canonical sources...

* http://xunitpatterns.com/Test%20Spy.html

* https://martinfowler.com/articles/mocksArentStubs.html


Recorder is a spy for a single function.

 func Test_Recorder(t *testing.T) {
	find := spy.NewRecorder([]interface{}{"first", "second"})

	// Exercise the system under test, passing find.Call where a func is expected
	// ...

	find.Expect(t, spy.Twice())
	find.ExpectCalledWith(t, 42)
 }


CallSpy is a spy with any number of methods, created on first use. Canned results are
shared across all of its methods.

 func Test_CallSpy(t *testing.T) {
	s := spy.NewCallSpy("some data", spy.Fail(errors.New("boom")))

	// Exercise...
	s.Invoke("Query", "some args")  // "some data", nil
	s.Invoke("Update", "some args") // nil, boom

	// Verify
	s.Verify(t, map[string]spy.Expectation{"Query": spy.Once(), "Delete": spy.Never()})
	args := s.Method("Query").Args() // [][]interface{}{{"some args"}}
 }


Failures are injected by queueing a Producer (or Fail). A producer is invoked with the
call and whatever it returns, error or panic, reaches the caller untouched.
*/
package spy
