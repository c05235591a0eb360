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

package mqspy

import (
	"fmt"
	"reflect"
)

// Message is the payload exchanged through a Broker
type Message struct {
	Headers map[string]interface{}
	Body    map[string]interface{}
}

// NewMessage is shorthand for &Message{Headers: headers, Body: body}
func NewMessage(headers map[string]interface{}, body map[string]interface{}) *Message {
	return &Message{Headers: headers, Body: body}
}

// Clone returns a structural copy of m. Maps and slices are copied all the way down, so
// changing a container reachable from the clone never changes m.
//
// Every other value is carried over as is. Structs keep their private state and pointers
// still point at the same target.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	return &Message{Headers: cloneMap(m.Headers), Body: cloneMap(m.Body)}
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	return cloneValue(reflect.ValueOf(m)).Interface().(map[string]interface{})
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		c := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return c
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			c.Index(i).Set(cloneValue(v.Index(i)))
		}
		return c
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		c := reflect.New(v.Type()).Elem()
		c.Set(cloneValue(v.Elem()))
		return c
	default:
		return v
	}
}

func (m *Message) String() string {
	if m == nil {
		return "<nil message>"
	}
	return fmt.Sprintf("Message(headers=%v body=%v)", m.Headers, m.Body)
}

type entryKind int

const (
	absentEntry entryKind = iota
	messageEntry
	producerEntry
)

// Entry is one position in a channel.
//
// It is exactly one of a message, absence or a producer. A producer is invoked by the
// Fetch that reaches it, which is how failures are injected.
type Entry struct {
	kind     entryKind
	message  *Message
	producer func() (*Message, error)
}

// Deliver is an entry fetched as a copy of m. A nil m is the same as Empty().
func Deliver(m *Message) Entry {
	if m == nil {
		return Empty()
	}
	return Entry{kind: messageEntry, message: m}
}

// Empty is an entry fetched as no message
func Empty() Entry {
	return Entry{kind: absentEntry}
}

// Produce is an entry whose Fetch returns whatever p returns
func Produce(p func() (*Message, error)) Entry {
	if p == nil {
		return Empty()
	}
	return Entry{kind: producerEntry, producer: p}
}

// Fail is an entry whose Fetch fails with err
func Fail(err error) Entry {
	return Produce(func() (*Message, error) { return nil, err })
}

// Message returns the message held by e, or nil for absence and producer entries.
// The returned message is the stored one, callers must not modify it.
func (e Entry) Message() *Message {
	return e.message
}

// IsProducer reports whether fetching e invokes a producer
func (e Entry) IsProducer() bool {
	return e.kind == producerEntry
}

func (e Entry) deliver() (*Message, error) {
	switch e.kind {
	case producerEntry:
		return e.producer()
	case messageEntry:
		return e.message.Clone(), nil
	default:
		return nil, nil
	}
}

func (e Entry) String() string {
	switch e.kind {
	case producerEntry:
		return "producer"
	case messageEntry:
		return e.message.String()
	default:
		return "empty"
	}
}
