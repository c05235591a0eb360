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

import "fmt"

// An Expectation decides whether a number of recorded calls is acceptable
type Expectation interface {
	Met(count int) bool
}

type exactly int

func (n exactly) Met(count int) bool { return count == int(n) }

func (n exactly) String() string {
	switch n {
	case 0:
		return "never"
	case 1:
		return "once"
	case 2:
		return "twice"
	}
	return fmt.Sprintf("exactly %d times", int(n))
}

type atLeast int

func (n atLeast) Met(count int) bool { return count >= int(n) }

func (n atLeast) String() string {
	return fmt.Sprintf("at least %d times", int(n))
}

type between struct {
	min, max int
}

func (b between) Met(count int) bool {
	return count >= b.min && count <= b.max
}

func (b between) String() string {
	if b.min <= 0 {
		return fmt.Sprintf("at most %d times", b.max)
	}
	return fmt.Sprintf("between %d and %d times", b.min, b.max)
}

// Exactly expects n calls
func Exactly(n int) Expectation { return exactly(n) }

// Once is Exactly(1)
func Once() Expectation { return exactly(1) }

// Twice is Exactly(2)
func Twice() Expectation { return exactly(2) }

// Never is Exactly(0)
func Never() Expectation { return exactly(0) }

// AtLeast expects n or more calls
func AtLeast(n int) Expectation { return atLeast(n) }

// AtMost expects no more than n calls
func AtMost(n int) Expectation { return between{0, n} }

// Between expects at least min and at most max calls
func Between(min int, max int) Expectation { return between{min, max} }
