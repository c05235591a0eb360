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
	"strings"
)

// tDouble is a T built from a CallSpy, so verification failures can themselves be verified
type tDouble struct {
	*CallSpy
}

func newTDouble() *tDouble {
	return &tDouble{CallSpy: NewCallSpy()}
}

func (t *tDouble) Errorf(format string, args ...interface{}) {
	_, _ = t.Invoke("Errorf", fmt.Sprintf(format, args...))
}

func (t *tDouble) Fatalf(format string, args ...interface{}) {
	_, _ = t.Invoke("Fatalf", fmt.Sprintf(format, args...))
	panic(fmt.Errorf(format, args...))
}

func (t *tDouble) Logf(format string, args ...interface{}) {
	_, _ = t.Invoke("Logf", fmt.Sprintf(format, args...))
}

func (t *tDouble) Helper() {
	_, _ = t.Invoke("Helper")
}

// messages returns the formatted messages sent to slot, eg "Errorf"
func (t *tDouble) messages(slot string) []string {
	var msgs []string
	for _, args := range t.Method(slot).Args() {
		msgs = append(msgs, args[0].(string))
	}
	return msgs
}

func (t *tDouble) anyMessage(slot string, substr string) bool {
	for _, msg := range t.messages(slot) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
