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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Clone(t *testing.T) {
	original := NewMessage(
		map[string]interface{}{"reply-to": "q"},
		map[string]interface{}{"x": 1, "nested": map[string]interface{}{"y": []interface{}{1, 2}}},
	)

	clone := original.Clone()
	require.Equal(t, original, clone)
	require.NotSame(t, original, clone)

	clone.Headers["reply-to"] = "other"
	clone.Body["x"] = 2
	clone.Body["nested"].(map[string]interface{})["y"].([]interface{})[0] = 99

	assert.Equal(t, "q", original.Headers["reply-to"])
	assert.Equal(t, 1, original.Body["x"])
	assert.Equal(t, []interface{}{1, 2}, original.Body["nested"].(map[string]interface{})["y"])
}

type opaque struct {
	secret string
}

func TestMessage_CloneKeepsPrivateState(t *testing.T) {
	shared := &opaque{"y"}
	original := NewMessage(
		map[string]interface{}{"typed": map[string]int{"a": 1}},
		map[string]interface{}{"o": opaque{"x"}, "p": shared, "none": nil, "list": []opaque{{"z"}}},
	)

	clone := original.Clone()
	require.Equal(t, original, clone)
	assert.Equal(t, opaque{"x"}, clone.Body["o"])
	assert.Same(t, shared, clone.Body["p"])
	assert.Contains(t, clone.Body, "none")
	assert.Equal(t, []opaque{{"z"}}, clone.Body["list"])

	clone.Headers["typed"].(map[string]int)["a"] = 2
	clone.Body["list"].([]opaque)[0] = opaque{"changed"}
	assert.Equal(t, map[string]int{"a": 1}, original.Headers["typed"])
	assert.Equal(t, []opaque{{"z"}}, original.Body["list"])
}

func TestBroker_SendFetchKeepsPrivateState(t *testing.T) {
	c := instance(t, NewBroker(nil))
	c.Send("a", NewMessage(nil, map[string]interface{}{"o": opaque{"x"}, "p": &opaque{"y"}}))

	m, err := c.Fetch("a")
	require.NoError(t, err)
	assert.Equal(t, opaque{"x"}, m.Body["o"])
	assert.Equal(t, &opaque{"y"}, m.Body["p"])
}

func TestMessage_CloneKeepsNilMaps(t *testing.T) {
	clone := (&Message{}).Clone()
	assert.Nil(t, clone.Headers)
	assert.Nil(t, clone.Body)

	var nothing *Message
	assert.Nil(t, nothing.Clone())
}

func TestEntry(t *testing.T) {
	m := NewMessage(nil, map[string]interface{}{"id": 1})

	assert.Same(t, m, Deliver(m).Message())
	assert.False(t, Deliver(m).IsProducer())
	assert.Nil(t, Deliver(nil).Message())
	assert.Nil(t, Empty().Message())
	assert.True(t, Fail(errors.New("x")).IsProducer())
	assert.False(t, Produce(nil).IsProducer())

	assert.Equal(t, "empty", Empty().String())
	assert.Equal(t, "producer", Fail(errors.New("x")).String())
	assert.Equal(t, "Message(headers=map[] body=map[id:1])", Deliver(m).String())
}
